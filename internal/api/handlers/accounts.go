package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pennywise-app/pennywise-backend/internal/api/dto"
	"github.com/pennywise-app/pennywise-backend/internal/infrastructure/storage"
)

// AccountsHandler handles account-related HTTP requests.
type AccountsHandler struct {
	*Base
}

// NewAccountsHandler creates a new accounts handler.
func NewAccountsHandler(repo storage.Repository) *AccountsHandler {
	return &AccountsHandler{
		Base: NewBase(repo),
	}
}

// List handles GET /api/accounts - returns all accounts.
func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.repo.ListAccounts()
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.AccountListResponse{
		Accounts: make([]dto.AccountResponse, 0, len(accounts)),
		Count:    len(accounts),
	}
	for _, account := range accounts {
		response.Accounts = append(response.Accounts, toAccountResponse(account))
	}

	h.WriteJSON(w, http.StatusOK, response)
}

// Get handles GET /api/accounts/{id} - returns a single account by ID.
func (h *AccountsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid account ID"))
		return
	}

	account, err := h.repo.GetAccount(id)
	if err != nil {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("account"))
		return
	}

	h.WriteJSON(w, http.StatusOK, toAccountResponse(account))
}

// Create handles POST /api/accounts - registers a new account.
func (h *AccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}
	if req.Name == "" {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError("name is required"))
		return
	}

	account := &storage.Account{
		Name:     req.Name,
		Kind:     req.Kind,
		Currency: req.Currency,
	}
	if err := h.repo.CreateAccount(account); err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(w, http.StatusCreated, toAccountResponse(account))
}

// toAccountResponse converts a storage Account to an API response.
func toAccountResponse(account *storage.Account) dto.AccountResponse {
	return dto.AccountResponse{
		ID:        account.ID,
		Name:      account.Name,
		Kind:      account.Kind,
		Currency:  account.Currency,
		CreatedAt: formatTime(account.CreatedAt),
	}
}
