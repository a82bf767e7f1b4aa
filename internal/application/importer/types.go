// Package importer pulls directional records from the configured providers,
// runs transfer inference over the combined batch, and persists the resulting
// suggestions for review.
package importer

import (
	"log/slog"

	"github.com/pennywise-app/pennywise-backend/internal/adapters/providers"
	"github.com/pennywise-app/pennywise-backend/internal/domain/transfers"
	"github.com/pennywise-app/pennywise-backend/internal/infrastructure/storage"
)

// Options holds import configuration
type Options struct {
	DryRun       bool
	LookbackDays int
	MaxRecords   int
	Provider     string // If set, only fetch from this provider
}

// Result holds import results
type Result struct {
	RunID              int64
	RecordsFetched     int
	RecordsSkipped     int
	SuggestionsCreated int
	TransfersMatched   int
	Errors             []error
}

// Orchestrator runs the import process
type Orchestrator struct {
	registry *providers.Registry
	matcher  *transfers.Matcher
	repo     storage.Repository
	logger   *slog.Logger
}

// NewOrchestrator creates a new import orchestrator
func NewOrchestrator(
	registry *providers.Registry,
	repo storage.Repository,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		matcher:  transfers.NewMatcher(transfers.DefaultConfig()),
		repo:     repo,
		logger:   logger,
	}
}
