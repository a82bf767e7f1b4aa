package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pennywise-app/pennywise-backend/internal/api/dto"
	"github.com/pennywise-app/pennywise-backend/internal/infrastructure/storage"
)

// TransactionsHandler handles transaction-related HTTP requests.
type TransactionsHandler struct {
	*Base
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(repo storage.Repository) *TransactionsHandler {
	return &TransactionsHandler{
		Base: NewBase(repo),
	}
}

// List handles GET /api/transactions - returns transactions, newest first.
// Supports account_id, kind, category, trip, days_back, limit and offset
// query parameters.
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := storage.TransactionFilters{
		AccountID: ParseInt64Param(r, "account_id", 0),
		Kind:      r.URL.Query().Get("kind"),
		Category:  r.URL.Query().Get("category"),
		Trip:      r.URL.Query().Get("trip"),
		DaysBack:  ParseIntParam(r, "days_back", 0),
		Limit:     ParseIntParam(r, "limit", 50),
		Offset:    ParseIntParam(r, "offset", 0),
	}

	transactions, err := h.repo.ListTransactions(filters)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.TransactionListResponse{
		Transactions: make([]dto.TransactionResponse, 0, len(transactions)),
		Count:        len(transactions),
		Limit:        filters.Limit,
		Offset:       filters.Offset,
	}
	for _, tx := range transactions {
		response.Transactions = append(response.Transactions, toTransactionResponse(tx))
	}

	h.WriteJSON(w, http.StatusOK, response)
}

// Get handles GET /api/transactions/{id} - returns a single transaction.
func (h *TransactionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid transaction ID"))
		return
	}

	tx, err := h.repo.GetTransaction(id)
	if err != nil {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("transaction"))
		return
	}

	h.WriteJSON(w, http.StatusOK, toTransactionResponse(tx))
}

// Create handles POST /api/transactions - records a manually entered
// transaction.
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}

	occurredAt, err := time.Parse(time.RFC3339, req.OccurredAt)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError("occurred_at must be RFC 3339"))
		return
	}

	tx := &storage.Transaction{
		Kind:                  req.Kind,
		AccountID:             req.AccountID,
		CounterpartyAccountID: req.CounterpartyAccountID,
		AmountCents:           req.AmountCents,
		OccurredAt:            occurredAt,
		Description:           req.Description,
		Category:              req.Category,
		Trip:                  req.Trip,
	}
	if err := h.repo.CreateTransaction(tx); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}

	h.WriteJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

// toTransactionResponse converts a storage Transaction to an API response.
func toTransactionResponse(tx *storage.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:                    tx.ID,
		Kind:                  tx.Kind,
		AccountID:             tx.AccountID,
		CounterpartyAccountID: tx.CounterpartyAccountID,
		AmountCents:           tx.AmountCents,
		OccurredAt:            formatTime(tx.OccurredAt),
		Description:           tx.Description,
		Category:              tx.Category,
		Trip:                  tx.Trip,
		CreatedAt:             formatTime(tx.CreatedAt),
	}
}
