package cli

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pennywise-app/pennywise-backend/internal/api"
	"github.com/pennywise-app/pennywise-backend/internal/api/handlers"
	"github.com/pennywise-app/pennywise-backend/internal/application/importer"
	"github.com/pennywise-app/pennywise-backend/internal/infrastructure/config"
	"github.com/pennywise-app/pennywise-backend/internal/infrastructure/logging"
	"github.com/pennywise-app/pennywise-backend/internal/infrastructure/storage"
)

// ServeFlags holds the CLI flags for the serve command.
type ServeFlags struct {
	Port    int
	Verbose bool
}

// ParseServeFlags parses command line flags for the serve command.
func ParseServeFlags() *ServeFlags {
	flags := &ServeFlags{}
	flag.IntVar(&flags.Port, "port", 0, "Port to listen on (overrides config)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	flag.Parse()
	return flags
}

// RunServe runs the API server.
func RunServe(cfg *config.Config, flags *ServeFlags) error {
	// Set up logging
	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(loggingCfg, "api")

	// Initialize storage
	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	// Providers and importer, so the API can trigger imports
	registry, err := BuildRegistry(cfg, logger)
	if err != nil {
		return err
	}
	var runner *importer.Orchestrator
	if len(registry.List()) > 0 {
		runner = importer.NewOrchestrator(registry, store, logger)
	}

	port := cfg.API.Port
	if flags.Port != 0 {
		port = flags.Port
	}
	apiCfg := api.Config{
		Port:           port,
		AllowedOrigins: cfg.API.AllowedOrigins,
	}

	// Create and start server
	server := api.NewServer(apiCfg, store, runnerOrNil(runner), logger)

	// Handle graceful shutdown
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("received shutdown signal")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server shutdown error", slog.Any("error", err))
		}
		close(done)
	}()

	// Start server (blocks until shutdown)
	if err := server.Start(); err != nil {
		return err
	}

	<-done
	logger.Info("server stopped")
	return nil
}

// runnerOrNil keeps a nil orchestrator from becoming a non-nil interface.
func runnerOrNil(runner *importer.Orchestrator) handlers.ImportRunner {
	if runner == nil {
		return nil
	}
	return runner
}
