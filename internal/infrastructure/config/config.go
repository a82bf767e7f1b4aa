// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	dbPath := cfg.Storage.DatabasePath
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the entire application configuration.
type Config struct {
	Providers     ProvidersConfig     `yaml:"providers"`
	Storage       StorageConfig       `yaml:"storage"`
	API           APIConfig           `yaml:"api"`
	Import        ImportConfig        `yaml:"import"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// StorageConfig holds database configuration.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// APIConfig holds HTTP server configuration.
type APIConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ImportConfig holds defaults for import runs.
type ImportConfig struct {
	LookbackDays int `yaml:"lookback_days"`
	MaxRecords   int `yaml:"max_records"`
}

// ProvidersConfig holds provider-specific configuration.
type ProvidersConfig struct {
	OpenBanking  OpenBankingConfig  `yaml:"openbanking"`
	CSVStatement CSVStatementConfig `yaml:"csvstatement"`
}

// OpenBankingConfig holds settings for the REST aggregator adapter.
type OpenBankingConfig struct {
	Enabled     bool             `yaml:"enabled"`
	BaseURL     string           `yaml:"base_url"`
	AccessToken string           `yaml:"access_token"`
	Accounts    map[string]int64 `yaml:"accounts"` // provider account id -> internal account id
}

// CSVStatementConfig holds settings for the CSV statement adapter.
type CSVStatementConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Dir      string           `yaml:"dir"`
	Accounts map[string]int64 `yaml:"accounts"` // statement file key -> internal account id
}

// ObservabilityConfig holds observability settings.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and parses the config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${OPENBANKING_TOKEN})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only.
func LoadFromEnv() *Config {
	cfg := &Config{
		Storage: StorageConfig{
			DatabasePath: getEnv("PENNYWISE_DB_PATH", "pennywise.db"),
		},
		API: APIConfig{
			Port: getEnvInt("PENNYWISE_PORT", 8080),
		},
		Import: ImportConfig{
			LookbackDays: getEnvInt("PENNYWISE_LOOKBACK_DAYS", 14),
			MaxRecords:   getEnvInt("PENNYWISE_MAX_RECORDS", 0),
		},
		Providers: ProvidersConfig{
			OpenBanking: OpenBankingConfig{
				Enabled:     os.Getenv("OPENBANKING_BASE_URL") != "",
				BaseURL:     os.Getenv("OPENBANKING_BASE_URL"),
				AccessToken: os.Getenv("OPENBANKING_TOKEN"),
			},
			CSVStatement: CSVStatementConfig{
				Enabled: os.Getenv("PENNYWISE_STATEMENT_DIR") != "",
				Dir:     os.Getenv("PENNYWISE_STATEMENT_DIR"),
			},
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables.
func LoadOrEnv() *Config {
	return LoadOrEnvWithPath("config.yaml")
}

// LoadOrEnvWithPath tries to load from the specified path, falls back to
// environment variables.
func LoadOrEnvWithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

// applyDefaults fills zero values that have sensible defaults.
func (c *Config) applyDefaults() {
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if len(c.API.AllowedOrigins) == 0 {
		c.API.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	if c.Import.LookbackDays == 0 {
		c.Import.LookbackDays = 14
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = "pennywise.db"
	}
}

// getEnv retrieves an environment variable with a fallback default.
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default.
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}
