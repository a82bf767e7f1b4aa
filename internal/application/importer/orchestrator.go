package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pennywise-app/pennywise-backend/internal/adapters/providers"
	"github.com/pennywise-app/pennywise-backend/internal/domain/transfers"
	"github.com/pennywise-app/pennywise-backend/internal/infrastructure/storage"
)

// Run executes one full import: fetch, dedup, match, persist.
// Provider failures are recorded and do not abort the run; the remaining
// providers' records are still matched.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = 14
	}

	providerNames, err := o.providerNames(opts)
	if err != nil {
		return nil, err
	}

	runID, err := o.repo.StartImportRun(providerNames, opts.LookbackDays, opts.DryRun)
	if err != nil {
		return nil, fmt.Errorf("starting import run: %w", err)
	}

	result := &Result{RunID: runID}

	o.logger.Info("Starting import",
		"run_id", runID,
		"providers", providerNames,
		"lookback_days", opts.LookbackDays,
		"dry_run", opts.DryRun,
	)

	records := o.fetchRecords(ctx, opts, result)
	result.RecordsFetched = len(records)

	if err := transfers.ValidateBatch(records); err != nil {
		result.Errors = append(result.Errors, err)
		o.completeRun(runID, result)
		return result, fmt.Errorf("invalid batch: %w", err)
	}

	fresh, err := o.filterKnown(records, result)
	if err != nil {
		result.Errors = append(result.Errors, err)
		o.completeRun(runID, result)
		return result, err
	}

	suggestions := o.matcher.Match(fresh)
	o.persistSuggestions(suggestions, opts, result)

	o.completeRun(runID, result)

	o.logger.Info("Import complete",
		"run_id", runID,
		"fetched", result.RecordsFetched,
		"skipped", result.RecordsSkipped,
		"suggestions", result.SuggestionsCreated,
		"transfers", result.TransfersMatched,
		"errors", len(result.Errors),
	)

	return result, nil
}

// providerNames resolves which providers this run covers.
func (o *Orchestrator) providerNames(opts Options) ([]string, error) {
	if opts.Provider != "" {
		if _, err := o.registry.Get(opts.Provider); err != nil {
			return nil, err
		}
		return []string{opts.Provider}, nil
	}
	names := o.registry.List()
	if len(names) == 0 {
		return nil, fmt.Errorf("no providers registered")
	}
	return names, nil
}

// fetchRecords pulls records from the selected providers, combining them in
// provider-name order so the matcher sees a deterministic batch.
func (o *Orchestrator) fetchRecords(ctx context.Context, opts Options, result *Result) []transfers.DirectionalRecord {
	endDate := time.Now()
	fetchOpts := providers.FetchOptions{
		StartDate:  endDate.AddDate(0, 0, -opts.LookbackDays),
		EndDate:    endDate,
		MaxRecords: opts.MaxRecords,
	}

	if opts.Provider != "" {
		provider, err := o.registry.Get(opts.Provider)
		if err != nil {
			result.Errors = append(result.Errors, err)
			return nil
		}
		records, err := provider.FetchRecords(ctx, fetchOpts)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("provider %s: %w", opts.Provider, err))
			return nil
		}
		return records
	}

	var combined []transfers.DirectionalRecord
	for _, fetched := range o.registry.FetchAll(ctx, fetchOpts) {
		if fetched.Err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("provider %s: %w", fetched.Provider, fetched.Err))
			continue
		}
		combined = append(combined, fetched.Records...)
	}
	return combined
}

// filterKnown drops records whose external id was already surfaced by an
// earlier run, so a re-fetch of the same statement window is a no-op.
func (o *Orchestrator) filterKnown(records []transfers.DirectionalRecord, result *Result) ([]transfers.DirectionalRecord, error) {
	if len(records) == 0 {
		return nil, nil
	}

	ids := make([]string, len(records))
	for i, record := range records {
		ids[i] = record.ExternalID
	}

	known, err := o.repo.KnownExternalIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("checking known external ids: %w", err)
	}

	fresh := make([]transfers.DirectionalRecord, 0, len(records))
	for _, record := range records {
		if known[record.ExternalID] {
			result.RecordsSkipped++
			continue
		}
		fresh = append(fresh, record)
	}
	return fresh, nil
}

// persistSuggestions saves each matcher output as a pending suggestion.
// Save failures are collected per suggestion; one bad row does not stop
// the rest of the batch.
func (o *Orchestrator) persistSuggestions(suggestions []transfers.Suggestion, opts Options, result *Result) {
	for _, suggestion := range suggestions {
		if suggestion.Kind == transfers.SuggestionTransfer {
			result.TransfersMatched++
		}

		if opts.DryRun {
			result.SuggestionsCreated++
			continue
		}

		stored := toStoredSuggestion(suggestion)
		if err := o.repo.SaveSuggestion(stored); err != nil {
			o.logger.Error("Failed to save suggestion",
				"external_ids", suggestion.ExternalIDs(), "error", err)
			result.Errors = append(result.Errors, err)
			continue
		}
		result.SuggestionsCreated++
	}
}

func (o *Orchestrator) completeRun(runID int64, result *Result) {
	err := o.repo.CompleteImportRun(runID, storage.ImportRunResult{
		RecordsFetched:     result.RecordsFetched,
		RecordsSkipped:     result.RecordsSkipped,
		SuggestionsCreated: result.SuggestionsCreated,
		TransfersMatched:   result.TransfersMatched,
		Errors:             len(result.Errors),
	})
	if err != nil {
		o.logger.Error("Failed to complete import run", "run_id", runID, "error", err)
		result.Errors = append(result.Errors, err)
	}
}

// toStoredSuggestion converts a matcher output item to its persisted shape.
// Transfer suggestions store the withdrawal leg first.
func toStoredSuggestion(suggestion transfers.Suggestion) *storage.Suggestion {
	stored := &storage.Suggestion{
		PublicID: uuid.New().String(),
		Kind:     string(suggestion.Kind),
		Status:   storage.SuggestionPending,
	}

	switch suggestion.Kind {
	case transfers.SuggestionTransfer:
		stored.Records = []storage.SuggestedRecord{
			toStoredRecord(suggestion.Transfer.Withdrawal),
			toStoredRecord(suggestion.Transfer.Deposit),
		}
	case transfers.SuggestionRecord:
		stored.Records = []storage.SuggestedRecord{toStoredRecord(*suggestion.Record)}
	}
	return stored
}

func toStoredRecord(record transfers.DirectionalRecord) storage.SuggestedRecord {
	return storage.SuggestedRecord{
		Kind:        string(record.Kind),
		ExternalID:  record.ExternalID,
		AccountID:   record.AccountID,
		Timestamp:   record.Timestamp,
		AmountCents: record.AmountCents,
		Description: record.Description,
	}
}
