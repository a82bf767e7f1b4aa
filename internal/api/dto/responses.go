package dto

import "time"

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// NewHealthResponse creates a health response with current timestamp.
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Currency  string `json:"currency"`
	CreatedAt string `json:"created_at"`
}

// AccountListResponse is returned when listing accounts.
type AccountListResponse struct {
	Accounts []AccountResponse `json:"accounts"`
	Count    int               `json:"count"`
}

// TransactionResponse represents a confirmed transaction in API responses.
// Transfers carry both account ids; expenses and income only the first.
type TransactionResponse struct {
	ID                    int64  `json:"id"`
	Kind                  string `json:"kind"`
	AccountID             int64  `json:"account_id"`
	CounterpartyAccountID *int64 `json:"counterparty_account_id,omitempty"`
	AmountCents           int64  `json:"amount_cents"`
	OccurredAt            string `json:"occurred_at"`
	Description           string `json:"description,omitempty"`
	Category              string `json:"category,omitempty"`
	Trip                  string `json:"trip,omitempty"`
	CreatedAt             string `json:"created_at"`
}

// TransactionListResponse is returned when listing transactions.
type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Count        int                   `json:"count"`
	Limit        int                   `json:"limit"`
	Offset       int                   `json:"offset"`
}

// SuggestedRecordResponse is one directional record inside a suggestion.
type SuggestedRecordResponse struct {
	Kind        string `json:"kind"`
	ExternalID  string `json:"external_id"`
	AccountID   int64  `json:"account_id"`
	Timestamp   string `json:"timestamp"`
	AmountCents int64  `json:"amount_cents"`
	Description string `json:"description,omitempty"`
}

// SuggestionResponse represents a matcher suggestion awaiting review.
// Kind "transfer" carries the withdrawal leg first, then the deposit leg.
type SuggestionResponse struct {
	PublicID   string                    `json:"public_id"`
	Kind       string                    `json:"kind"`
	Status     string                    `json:"status"`
	CreatedAt  string                    `json:"created_at"`
	ResolvedAt string                    `json:"resolved_at,omitempty"`
	Records    []SuggestedRecordResponse `json:"records"`
}

// SuggestionListResponse is returned when listing suggestions.
type SuggestionListResponse struct {
	Suggestions []SuggestionResponse `json:"suggestions"`
	Count       int                  `json:"count"`
}

// AcceptSuggestionResponse is returned after accepting a suggestion.
type AcceptSuggestionResponse struct {
	Suggestion  SuggestionResponse  `json:"suggestion"`
	Transaction TransactionResponse `json:"transaction"`
}

// ImportRunResponse represents an import run in API responses.
type ImportRunResponse struct {
	ID                 int64  `json:"id"`
	Providers          string `json:"providers"`
	StartedAt          string `json:"started_at"`
	CompletedAt        string `json:"completed_at,omitempty"`
	LookbackDays       int    `json:"lookback_days"`
	DryRun             bool   `json:"dry_run"`
	RecordsFetched     int    `json:"records_fetched"`
	RecordsSkipped     int    `json:"records_skipped"`
	SuggestionsCreated int    `json:"suggestions_created"`
	TransfersMatched   int    `json:"transfers_matched"`
	Errors             int    `json:"errors"`
	Status             string `json:"status"`
}

// ImportRunListResponse is returned when listing import runs.
type ImportRunListResponse struct {
	Runs  []ImportRunResponse `json:"runs"`
	Count int                 `json:"count"`
}

// AccountBalanceResponse is one account's computed balance.
type AccountBalanceResponse struct {
	AccountID    int64  `json:"account_id"`
	Name         string `json:"name"`
	Currency     string `json:"currency"`
	BalanceCents int64  `json:"balance_cents"`
}

// StatsResponse is returned by the stats endpoint.
type StatsResponse struct {
	TotalTransactions int                      `json:"total_transactions"`
	ExpenseCents      int64                    `json:"expense_cents"`
	IncomeCents       int64                    `json:"income_cents"`
	TransferCount     int                      `json:"transfer_count"`
	ByCategory        map[string]int64         `json:"by_category"`
	Balances          []AccountBalanceResponse `json:"balances"`
}

// TripStatsResponse is one trip's spending aggregate.
type TripStatsResponse struct {
	Trip         string `json:"trip"`
	Transactions int    `json:"transactions"`
	TotalCents   int64  `json:"total_cents"`
}

// TripStatsListResponse is returned by the trip stats endpoint.
type TripStatsListResponse struct {
	Trips []TripStatsResponse `json:"trips"`
}
