package dto

// CreateAccountRequest is the body of POST /api/accounts.
type CreateAccountRequest struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Currency string `json:"currency"`
}

// CreateTransactionRequest is the body of POST /api/transactions for
// manually entered transactions.
type CreateTransactionRequest struct {
	Kind                  string `json:"kind"`
	AccountID             int64  `json:"account_id"`
	CounterpartyAccountID *int64 `json:"counterparty_account_id,omitempty"`
	AmountCents           int64  `json:"amount_cents"`
	OccurredAt            string `json:"occurred_at"` // RFC 3339
	Description           string `json:"description"`
	Category              string `json:"category"`
	Trip                  string `json:"trip"`
}

// AcceptSuggestionRequest is the body of POST /api/suggestions/{id}/accept.
// For record suggestions Kind picks expense or income; when empty, the
// record's direction decides. Transfer suggestions ignore Kind.
type AcceptSuggestionRequest struct {
	Kind     string `json:"kind,omitempty"`
	Category string `json:"category,omitempty"`
	Trip     string `json:"trip,omitempty"`
}

// StartImportRequest is the body of POST /api/import.
type StartImportRequest struct {
	Provider     string `json:"provider,omitempty"`
	LookbackDays int    `json:"lookback_days,omitempty"`
	DryRun       bool   `json:"dry_run,omitempty"`
}
