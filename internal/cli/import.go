package cli

import (
	"context"
	"fmt"

	"github.com/pennywise-app/pennywise-backend/internal/application/importer"
	"github.com/pennywise-app/pennywise-backend/internal/infrastructure/config"
	"github.com/pennywise-app/pennywise-backend/internal/infrastructure/logging"
	"github.com/pennywise-app/pennywise-backend/internal/infrastructure/storage"
)

// RunImport runs one import cycle from the command line.
func RunImport(cfg *config.Config, flags ImportFlags) error {
	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(loggingCfg, "import")

	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	registry, err := BuildRegistry(cfg, logger)
	if err != nil {
		return err
	}
	if len(registry.List()) == 0 {
		return fmt.Errorf("no providers enabled in configuration")
	}

	PrintHeader(flags.DryRun)
	PrintConfiguration(flags.Provider, flags.LookbackDays, flags.MaxRecords)

	orchestrator := importer.NewOrchestrator(registry, store, logger)
	result, err := orchestrator.Run(context.Background(), flags.ToImportOptions())
	if err != nil {
		return err
	}

	PrintImportSummary(result, store, flags.DryRun)
	return nil
}
