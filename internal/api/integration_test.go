package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pennywise-app/pennywise-backend/internal/adapters/providers"
	"github.com/pennywise-app/pennywise-backend/internal/api"
	"github.com/pennywise-app/pennywise-backend/internal/api/dto"
	"github.com/pennywise-app/pennywise-backend/internal/application/importer"
	"github.com/pennywise-app/pennywise-backend/internal/domain/transfers"
	"github.com/pennywise-app/pennywise-backend/internal/infrastructure/storage"
)

// These tests use a real SQLite database to exercise the full stack:
// HTTP request, router, handlers, importer, storage.

type stubProvider struct {
	records []transfers.DirectionalRecord
}

func (s *stubProvider) Name() string        { return "stub" }
func (s *stubProvider) DisplayName() string { return "Stub Bank" }
func (s *stubProvider) FetchRecords(_ context.Context, _ providers.FetchOptions) ([]transfers.DirectionalRecord, error) {
	return s.records, nil
}
func (s *stubProvider) HealthCheck(_ context.Context) error { return nil }

func createIntegrationServer(t *testing.T, records []transfers.DirectionalRecord) (*httptest.Server, *storage.Storage) {
	t.Helper()

	store, err := storage.NewStorage(filepath.Join(t.TempDir(), "integration.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	registry := providers.NewRegistry(logger)
	require.NoError(t, registry.Register(&stubProvider{records: records}))
	orchestrator := importer.NewOrchestrator(registry, store, logger)

	server := api.NewServer(api.DefaultConfig(), store, orchestrator, logger)

	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)

	return ts, store
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	resp, err := http.Post(url, "application/json", &buf)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func TestIntegration_ImportAcceptFlow(t *testing.T) {
	base := time.Now().Add(-24 * time.Hour).UTC().Truncate(time.Second)
	records := []transfers.DirectionalRecord{
		{Kind: transfers.KindWithdrawal, ExternalID: "w1", AccountID: 1,
			Timestamp: base, AmountCents: 10000, Description: "TRANSFER TO SAVINGS"},
		{Kind: transfers.KindDeposit, ExternalID: "d1", AccountID: 2,
			Timestamp: base.Add(20 * time.Minute), AmountCents: 10000},
		{Kind: transfers.KindWithdrawal, ExternalID: "w2", AccountID: 1,
			Timestamp: base, AmountCents: 4217, Description: "GROCERY STORE"},
	}
	ts, store := createIntegrationServer(t, records)

	// Accounts must exist before accepted transfers can reference them.
	require.NoError(t, store.CreateAccount(&storage.Account{Name: "Checking"}))
	require.NoError(t, store.CreateAccount(&storage.Account{Name: "Savings"}))

	// Run the import.
	resp := postJSON(t, ts.URL+"/api/import", dto.StartImportRequest{LookbackDays: 7})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var run dto.ImportRunResponse
	decodeBody(t, resp, &run)
	assert.Equal(t, 3, run.RecordsFetched)
	assert.Equal(t, 2, run.SuggestionsCreated)
	assert.Equal(t, 1, run.TransfersMatched)
	assert.Equal(t, "completed", run.Status)

	// List pending suggestions.
	listResp, err := http.Get(ts.URL + "/api/suggestions")
	require.NoError(t, err)
	var suggestions dto.SuggestionListResponse
	decodeBody(t, listResp, &suggestions)
	require.Equal(t, 2, suggestions.Count)

	var transferID, recordID string
	for _, s := range suggestions.Suggestions {
		switch s.Kind {
		case "transfer":
			transferID = s.PublicID
		case "record":
			recordID = s.PublicID
		}
	}
	require.NotEmpty(t, transferID)
	require.NotEmpty(t, recordID)

	// Accept the transfer suggestion.
	acceptResp := postJSON(t, fmt.Sprintf("%s/api/suggestions/%s/accept", ts.URL, transferID), nil)
	require.Equal(t, http.StatusOK, acceptResp.StatusCode)

	var accepted dto.AcceptSuggestionResponse
	decodeBody(t, acceptResp, &accepted)
	assert.Equal(t, storage.TxKindTransfer, accepted.Transaction.Kind)
	require.NotNil(t, accepted.Transaction.CounterpartyAccountID)
	assert.Equal(t, int64(2), *accepted.Transaction.CounterpartyAccountID)

	// Accept the standalone withdrawal as a categorized expense.
	acceptResp = postJSON(t, fmt.Sprintf("%s/api/suggestions/%s/accept", ts.URL, recordID),
		dto.AcceptSuggestionRequest{Category: "groceries"})
	require.Equal(t, http.StatusOK, acceptResp.StatusCode)

	// Stats now reflect both confirmed transactions.
	statsResp, err := http.Get(ts.URL + "/api/stats")
	require.NoError(t, err)
	var stats dto.StatsResponse
	decodeBody(t, statsResp, &stats)
	assert.Equal(t, 2, stats.TotalTransactions)
	assert.Equal(t, 1, stats.TransferCount)
	assert.Equal(t, int64(4217), stats.ExpenseCents)
	assert.Equal(t, int64(4217), stats.ByCategory["groceries"])
}

func TestIntegration_ReimportIsNoOp(t *testing.T) {
	base := time.Now().Add(-24 * time.Hour).UTC().Truncate(time.Second)
	records := []transfers.DirectionalRecord{
		{Kind: transfers.KindDeposit, ExternalID: "d1", AccountID: 1,
			Timestamp: base, AmountCents: 500},
	}
	ts, _ := createIntegrationServer(t, records)

	resp := postJSON(t, ts.URL+"/api/import", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var first dto.ImportRunResponse
	decodeBody(t, resp, &first)
	assert.Equal(t, 1, first.SuggestionsCreated)

	// The same record fetched again is skipped, even before any review.
	resp = postJSON(t, ts.URL+"/api/import", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var second dto.ImportRunResponse
	decodeBody(t, resp, &second)
	assert.Equal(t, 1, second.RecordsSkipped)
	assert.Equal(t, 0, second.SuggestionsCreated)
}

func TestIntegration_DryRunLeavesNoSuggestions(t *testing.T) {
	base := time.Now().Add(-24 * time.Hour).UTC().Truncate(time.Second)
	records := []transfers.DirectionalRecord{
		{Kind: transfers.KindDeposit, ExternalID: "d1", AccountID: 1,
			Timestamp: base, AmountCents: 500},
	}
	ts, _ := createIntegrationServer(t, records)

	resp := postJSON(t, ts.URL+"/api/import", dto.StartImportRequest{DryRun: true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var run dto.ImportRunResponse
	decodeBody(t, resp, &run)
	assert.True(t, run.DryRun)
	assert.Equal(t, 1, run.SuggestionsCreated)

	listResp, err := http.Get(ts.URL + "/api/suggestions")
	require.NoError(t, err)
	var suggestions dto.SuggestionListResponse
	decodeBody(t, listResp, &suggestions)
	assert.Equal(t, 0, suggestions.Count)
}
