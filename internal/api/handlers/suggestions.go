package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pennywise-app/pennywise-backend/internal/api/dto"
	"github.com/pennywise-app/pennywise-backend/internal/infrastructure/storage"
)

// SuggestionsHandler handles suggestion review HTTP requests.
type SuggestionsHandler struct {
	*Base
}

// NewSuggestionsHandler creates a new suggestions handler.
func NewSuggestionsHandler(repo storage.Repository) *SuggestionsHandler {
	return &SuggestionsHandler{
		Base: NewBase(repo),
	}
}

// List handles GET /api/suggestions - returns suggestions awaiting review.
// The status query parameter defaults to "pending"; "all" lists every status.
func (h *SuggestionsHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = storage.SuggestionPending
	} else if status == "all" {
		status = ""
	}
	limit := ParseIntParam(r, "limit", 50)

	suggestions, err := h.repo.ListSuggestions(status, limit)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.SuggestionListResponse{
		Suggestions: make([]dto.SuggestionResponse, 0, len(suggestions)),
		Count:       len(suggestions),
	}
	for _, suggestion := range suggestions {
		response.Suggestions = append(response.Suggestions, toSuggestionResponse(suggestion))
	}

	h.WriteJSON(w, http.StatusOK, response)
}

// Get handles GET /api/suggestions/{id} - returns one suggestion by public id.
func (h *SuggestionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	suggestion, err := h.repo.GetSuggestion(chi.URLParam(r, "id"))
	if err != nil {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("suggestion"))
		return
	}

	h.WriteJSON(w, http.StatusOK, toSuggestionResponse(suggestion))
}

// Accept handles POST /api/suggestions/{id}/accept - turns a pending
// suggestion into a confirmed transaction and resolves it.
func (h *SuggestionsHandler) Accept(w http.ResponseWriter, r *http.Request) {
	publicID := chi.URLParam(r, "id")

	suggestion, err := h.repo.GetSuggestion(publicID)
	if err != nil {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("suggestion"))
		return
	}
	if suggestion.Status != storage.SuggestionPending {
		h.WriteError(w, http.StatusConflict, dto.ConflictError("suggestion already resolved"))
		return
	}

	var req dto.AcceptSuggestionRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid request body"))
			return
		}
	}

	tx, apiErr := buildTransaction(suggestion, req)
	if apiErr != nil {
		h.WriteError(w, http.StatusBadRequest, *apiErr)
		return
	}

	if err := h.repo.CreateTransaction(tx); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}
	if err := h.repo.ResolveSuggestion(publicID, storage.SuggestionAccepted, &tx.ID); err != nil {
		h.WriteError(w, http.StatusConflict, dto.ConflictError(err.Error()))
		return
	}

	resolved, err := h.repo.GetSuggestion(publicID)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.AcceptSuggestionResponse{
		Suggestion:  toSuggestionResponse(resolved),
		Transaction: toTransactionResponse(tx),
	})
}

// Dismiss handles POST /api/suggestions/{id}/dismiss - marks a pending
// suggestion dismissed without creating a transaction. Its record ids stay
// consumed, so later imports do not surface the same records again.
func (h *SuggestionsHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	publicID := chi.URLParam(r, "id")

	if _, err := h.repo.GetSuggestion(publicID); err != nil {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("suggestion"))
		return
	}

	if err := h.repo.ResolveSuggestion(publicID, storage.SuggestionDismissed, nil); err != nil {
		h.WriteError(w, http.StatusConflict, dto.ConflictError(err.Error()))
		return
	}

	resolved, err := h.repo.GetSuggestion(publicID)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(w, http.StatusOK, toSuggestionResponse(resolved))
}

// buildTransaction derives the confirmed transaction an accepted suggestion
// produces. Transfer suggestions become a transfer between the two leg
// accounts, dated by the withdrawal leg. Record suggestions become an
// expense or income; when the request does not pick a kind, the record's
// direction decides.
func buildTransaction(suggestion *storage.Suggestion, req dto.AcceptSuggestionRequest) (*storage.Transaction, *dto.APIError) {
	switch suggestion.Kind {
	case "transfer":
		if len(suggestion.Records) != 2 {
			err := dto.InternalError()
			return nil, &err
		}
		withdrawal, deposit := suggestion.Records[0], suggestion.Records[1]
		counterparty := deposit.AccountID
		return &storage.Transaction{
			Kind:                  storage.TxKindTransfer,
			AccountID:             withdrawal.AccountID,
			CounterpartyAccountID: &counterparty,
			AmountCents:           withdrawal.AmountCents,
			OccurredAt:            withdrawal.Timestamp,
			Description:           withdrawal.Description,
			Trip:                  req.Trip,
		}, nil

	case "record":
		if len(suggestion.Records) != 1 {
			err := dto.InternalError()
			return nil, &err
		}
		record := suggestion.Records[0]

		kind := req.Kind
		if kind == "" {
			kind = storage.TxKindExpense
			if record.Kind == "deposit" {
				kind = storage.TxKindIncome
			}
		}
		if kind != storage.TxKindExpense && kind != storage.TxKindIncome {
			err := dto.ValidationError("kind must be expense or income")
			return nil, &err
		}

		return &storage.Transaction{
			Kind:        kind,
			AccountID:   record.AccountID,
			AmountCents: record.AmountCents,
			OccurredAt:  record.Timestamp,
			Description: record.Description,
			Category:    req.Category,
			Trip:        req.Trip,
		}, nil
	}

	err := dto.InternalError()
	return nil, &err
}

// toSuggestionResponse converts a storage Suggestion to an API response.
func toSuggestionResponse(suggestion *storage.Suggestion) dto.SuggestionResponse {
	response := dto.SuggestionResponse{
		PublicID:  suggestion.PublicID,
		Kind:      suggestion.Kind,
		Status:    suggestion.Status,
		CreatedAt: formatTime(suggestion.CreatedAt),
		Records:   make([]dto.SuggestedRecordResponse, 0, len(suggestion.Records)),
	}
	if suggestion.ResolvedAt != nil {
		response.ResolvedAt = formatTime(*suggestion.ResolvedAt)
	}
	for _, record := range suggestion.Records {
		response.Records = append(response.Records, dto.SuggestedRecordResponse{
			Kind:        record.Kind,
			ExternalID:  record.ExternalID,
			AccountID:   record.AccountID,
			Timestamp:   formatTime(record.Timestamp),
			AmountCents: record.AmountCents,
			Description: record.Description,
		})
	}
	return response
}
