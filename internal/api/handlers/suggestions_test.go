package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pennywise-app/pennywise-backend/internal/api/dto"
	"github.com/pennywise-app/pennywise-backend/internal/api/handlers"
	"github.com/pennywise-app/pennywise-backend/internal/infrastructure/storage"
)

var suggestionTime = time.Date(2025, 10, 10, 9, 0, 0, 0, time.UTC)

func seedTransferSuggestion(t *testing.T, repo *storage.MockRepository, publicID string) {
	t.Helper()
	err := repo.SaveSuggestion(&storage.Suggestion{
		PublicID: publicID,
		Kind:     "transfer",
		Records: []storage.SuggestedRecord{
			{Kind: "withdrawal", ExternalID: publicID + "-w", AccountID: 1,
				Timestamp: suggestionTime, AmountCents: 10000, Description: "TRANSFER OUT"},
			{Kind: "deposit", ExternalID: publicID + "-d", AccountID: 2,
				Timestamp: suggestionTime.Add(30 * time.Minute), AmountCents: 10000},
		},
	})
	require.NoError(t, err)
}

func seedRecordSuggestion(t *testing.T, repo *storage.MockRepository, publicID, kind string) {
	t.Helper()
	err := repo.SaveSuggestion(&storage.Suggestion{
		PublicID: publicID,
		Kind:     "record",
		Records: []storage.SuggestedRecord{
			{Kind: kind, ExternalID: publicID + "-r", AccountID: 1,
				Timestamp: suggestionTime, AmountCents: 4217, Description: "GROCERY STORE"},
		},
	})
	require.NoError(t, err)
}

func TestSuggestionsHandler_List(t *testing.T) {
	t.Run("returns empty list when no suggestions", func(t *testing.T) {
		repo := storage.NewMockRepository()
		handler := handlers.NewSuggestionsHandler(repo)

		req := httptest.NewRequest(http.MethodGet, "/api/suggestions", nil)
		rec := httptest.NewRecorder()

		handler.List(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var response dto.SuggestionListResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Empty(t, response.Suggestions)
	})

	t.Run("defaults to pending status", func(t *testing.T) {
		repo := storage.NewMockRepository()
		seedTransferSuggestion(t, repo, "sug-1")
		seedRecordSuggestion(t, repo, "sug-2", "deposit")
		require.NoError(t, repo.ResolveSuggestion("sug-2", storage.SuggestionDismissed, nil))

		handler := handlers.NewSuggestionsHandler(repo)

		req := httptest.NewRequest(http.MethodGet, "/api/suggestions", nil)
		rec := httptest.NewRecorder()

		handler.List(rec, req)

		var response dto.SuggestionListResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		require.Len(t, response.Suggestions, 1)
		assert.Equal(t, "sug-1", response.Suggestions[0].PublicID)
	})

	t.Run("status=all returns every suggestion", func(t *testing.T) {
		repo := storage.NewMockRepository()
		seedTransferSuggestion(t, repo, "sug-1")
		seedRecordSuggestion(t, repo, "sug-2", "deposit")
		require.NoError(t, repo.ResolveSuggestion("sug-2", storage.SuggestionDismissed, nil))

		handler := handlers.NewSuggestionsHandler(repo)

		req := httptest.NewRequest(http.MethodGet, "/api/suggestions?status=all", nil)
		rec := httptest.NewRecorder()

		handler.List(rec, req)

		var response dto.SuggestionListResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Len(t, response.Suggestions, 2)
	})
}

func TestSuggestionsHandler_Get(t *testing.T) {
	repo := storage.NewMockRepository()
	seedTransferSuggestion(t, repo, "sug-1")
	handler := handlers.NewSuggestionsHandler(repo)

	t.Run("returns suggestion with both legs", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/suggestions/sug-1", nil)
		req = req.WithContext(setChiURLParam(req.Context(), "id", "sug-1"))
		rec := httptest.NewRecorder()

		handler.Get(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var response dto.SuggestionResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, "transfer", response.Kind)
		require.Len(t, response.Records, 2)
		assert.Equal(t, "withdrawal", response.Records[0].Kind)
		assert.Equal(t, "deposit", response.Records[1].Kind)
	})

	t.Run("returns 404 for unknown id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/suggestions/nope", nil)
		req = req.WithContext(setChiURLParam(req.Context(), "id", "nope"))
		rec := httptest.NewRecorder()

		handler.Get(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSuggestionsHandler_Accept(t *testing.T) {
	t.Run("transfer becomes a transfer transaction", func(t *testing.T) {
		repo := storage.NewMockRepository()
		seedTransferSuggestion(t, repo, "sug-1")
		handler := handlers.NewSuggestionsHandler(repo)

		req := httptest.NewRequest(http.MethodPost, "/api/suggestions/sug-1/accept", nil)
		req = req.WithContext(setChiURLParam(req.Context(), "id", "sug-1"))
		rec := httptest.NewRecorder()

		handler.Accept(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var response dto.AcceptSuggestionResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))

		assert.Equal(t, storage.SuggestionAccepted, response.Suggestion.Status)
		assert.NotEmpty(t, response.Suggestion.ResolvedAt)

		tx := response.Transaction
		assert.Equal(t, storage.TxKindTransfer, tx.Kind)
		assert.Equal(t, int64(1), tx.AccountID)
		require.NotNil(t, tx.CounterpartyAccountID)
		assert.Equal(t, int64(2), *tx.CounterpartyAccountID)
		assert.Equal(t, int64(10000), tx.AmountCents)

		assert.True(t, repo.CreateTransactionCalled)
	})

	t.Run("deposit record defaults to income", func(t *testing.T) {
		repo := storage.NewMockRepository()
		seedRecordSuggestion(t, repo, "sug-1", "deposit")
		handler := handlers.NewSuggestionsHandler(repo)

		req := httptest.NewRequest(http.MethodPost, "/api/suggestions/sug-1/accept", nil)
		req = req.WithContext(setChiURLParam(req.Context(), "id", "sug-1"))
		rec := httptest.NewRecorder()

		handler.Accept(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var response dto.AcceptSuggestionResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, storage.TxKindIncome, response.Transaction.Kind)
	})

	t.Run("withdrawal record accepts category and trip", func(t *testing.T) {
		repo := storage.NewMockRepository()
		seedRecordSuggestion(t, repo, "sug-1", "withdrawal")
		handler := handlers.NewSuggestionsHandler(repo)

		body := strings.NewReader(`{"category":"groceries","trip":"rome"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/suggestions/sug-1/accept", body)
		req = req.WithContext(setChiURLParam(req.Context(), "id", "sug-1"))
		rec := httptest.NewRecorder()

		handler.Accept(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var response dto.AcceptSuggestionResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, storage.TxKindExpense, response.Transaction.Kind)
		assert.Equal(t, "groceries", response.Transaction.Category)
		assert.Equal(t, "rome", response.Transaction.Trip)
	})

	t.Run("rejects invalid kind override", func(t *testing.T) {
		repo := storage.NewMockRepository()
		seedRecordSuggestion(t, repo, "sug-1", "withdrawal")
		handler := handlers.NewSuggestionsHandler(repo)

		body := strings.NewReader(`{"kind":"transfer"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/suggestions/sug-1/accept", body)
		req = req.WithContext(setChiURLParam(req.Context(), "id", "sug-1"))
		rec := httptest.NewRecorder()

		handler.Accept(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("already resolved returns 409", func(t *testing.T) {
		repo := storage.NewMockRepository()
		seedRecordSuggestion(t, repo, "sug-1", "deposit")
		require.NoError(t, repo.ResolveSuggestion("sug-1", storage.SuggestionDismissed, nil))
		handler := handlers.NewSuggestionsHandler(repo)

		req := httptest.NewRequest(http.MethodPost, "/api/suggestions/sug-1/accept", nil)
		req = req.WithContext(setChiURLParam(req.Context(), "id", "sug-1"))
		rec := httptest.NewRecorder()

		handler.Accept(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.False(t, repo.CreateTransactionCalled)
	})

	t.Run("unknown suggestion returns 404", func(t *testing.T) {
		repo := storage.NewMockRepository()
		handler := handlers.NewSuggestionsHandler(repo)

		req := httptest.NewRequest(http.MethodPost, "/api/suggestions/nope/accept", nil)
		req = req.WithContext(setChiURLParam(req.Context(), "id", "nope"))
		rec := httptest.NewRecorder()

		handler.Accept(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSuggestionsHandler_Dismiss(t *testing.T) {
	t.Run("marks suggestion dismissed", func(t *testing.T) {
		repo := storage.NewMockRepository()
		seedTransferSuggestion(t, repo, "sug-1")
		handler := handlers.NewSuggestionsHandler(repo)

		req := httptest.NewRequest(http.MethodPost, "/api/suggestions/sug-1/dismiss", nil)
		req = req.WithContext(setChiURLParam(req.Context(), "id", "sug-1"))
		rec := httptest.NewRecorder()

		handler.Dismiss(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var response dto.SuggestionResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, storage.SuggestionDismissed, response.Status)

		// No transaction was created.
		assert.False(t, repo.CreateTransactionCalled)

		// The record ids stay consumed.
		known, err := repo.KnownExternalIDs([]string{"sug-1-w", "sug-1-d"})
		require.NoError(t, err)
		assert.True(t, known["sug-1-w"])
		assert.True(t, known["sug-1-d"])
	})

	t.Run("dismiss twice returns 409", func(t *testing.T) {
		repo := storage.NewMockRepository()
		seedTransferSuggestion(t, repo, "sug-1")
		handler := handlers.NewSuggestionsHandler(repo)

		for _, want := range []int{http.StatusOK, http.StatusConflict} {
			req := httptest.NewRequest(http.MethodPost, "/api/suggestions/sug-1/dismiss", nil)
			req = req.WithContext(setChiURLParam(req.Context(), "id", "sug-1"))
			rec := httptest.NewRecorder()

			handler.Dismiss(rec, req)

			assert.Equal(t, want, rec.Code)
		}
	})
}
