package cli

import (
	"fmt"
	"log/slog"

	"github.com/pennywise-app/pennywise-backend/internal/adapters/providers"
	"github.com/pennywise-app/pennywise-backend/internal/adapters/providers/csvstatement"
	"github.com/pennywise-app/pennywise-backend/internal/adapters/providers/openbanking"
	"github.com/pennywise-app/pennywise-backend/internal/infrastructure/config"
)

// BuildRegistry creates a provider registry with every enabled provider
// from the configuration.
func BuildRegistry(cfg *config.Config, logger *slog.Logger) (*providers.Registry, error) {
	registry := providers.NewRegistry(logger)

	if cfg.Providers.OpenBanking.Enabled {
		provider := openbanking.New(openbanking.Config{
			BaseURL:     cfg.Providers.OpenBanking.BaseURL,
			AccessToken: cfg.Providers.OpenBanking.AccessToken,
			Accounts:    cfg.Providers.OpenBanking.Accounts,
		}, logger)
		if err := registry.Register(provider); err != nil {
			return nil, fmt.Errorf("registering openbanking provider: %w", err)
		}
	}

	if cfg.Providers.CSVStatement.Enabled {
		provider := csvstatement.New(csvstatement.Config{
			Dir:      cfg.Providers.CSVStatement.Dir,
			Accounts: cfg.Providers.CSVStatement.Accounts,
		}, logger)
		if err := registry.Register(provider); err != nil {
			return nil, fmt.Errorf("registering csvstatement provider: %w", err)
		}
	}

	return registry, nil
}
