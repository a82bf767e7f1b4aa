package storage

import (
	"encoding/json"
	"time"
)

// Account is a tracked account: a bank account, brokerage position, or cash.
type Account struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`     // "checking", "savings", "brokerage", "cash"
	Currency  string    `json:"currency"` // ISO currency code or stock ticker
	CreatedAt time.Time `json:"created_at"`
}

// Transaction kinds.
const (
	TxKindExpense  = "expense"
	TxKindIncome   = "income"
	TxKindTransfer = "transfer"
)

// Transaction is a confirmed, persisted transaction. For transfers,
// AccountID is the source account and CounterpartyAccountID the destination.
type Transaction struct {
	ID                    int64     `json:"id"`
	Kind                  string    `json:"kind"`
	AccountID             int64     `json:"account_id"`
	CounterpartyAccountID *int64    `json:"counterparty_account_id,omitempty"`
	AmountCents           int64     `json:"amount_cents"`
	OccurredAt            time.Time `json:"occurred_at"`
	Description           string    `json:"description"`
	Category              string    `json:"category,omitempty"`
	Trip                  string    `json:"trip,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
}

// Suggestion statuses.
const (
	SuggestionPending   = "pending"
	SuggestionAccepted  = "accepted"
	SuggestionDismissed = "dismissed"
)

// SuggestedRecord is the JSON shape of one directional record stored inside
// a suggestion.
type SuggestedRecord struct {
	Kind        string    `json:"kind"`
	ExternalID  string    `json:"external_id"`
	AccountID   int64     `json:"account_id"`
	Timestamp   time.Time `json:"timestamp"`
	AmountCents int64     `json:"amount_cents"`
	Description string    `json:"description"`
}

// Suggestion is a pending output item of the matcher awaiting user action.
// Kind "record" holds one record; kind "transfer" holds the withdrawal leg
// first, then the deposit leg.
type Suggestion struct {
	ID         int64      `json:"id"`
	PublicID   string     `json:"public_id"`
	Kind       string     `json:"kind"` // "record" | "transfer"
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`

	Records     []SuggestedRecord `json:"records"`
	RecordsJSON string            `json:"-"` // for DB storage
}

// MarshalRecords serializes Records into RecordsJSON for storage.
func (s *Suggestion) MarshalRecords() error {
	data, err := json.Marshal(s.Records)
	if err != nil {
		return err
	}
	s.RecordsJSON = string(data)
	return nil
}

// UnmarshalRecords fills Records from RecordsJSON.
func (s *Suggestion) UnmarshalRecords() error {
	if s.RecordsJSON == "" {
		s.Records = nil
		return nil
	}
	return json.Unmarshal([]byte(s.RecordsJSON), &s.Records)
}

// ExternalIDs returns the source record ids this suggestion consumes.
func (s *Suggestion) ExternalIDs() []string {
	ids := make([]string, 0, len(s.Records))
	for _, r := range s.Records {
		ids = append(ids, r.ExternalID)
	}
	return ids
}

// ImportRun is the audit record of one import execution.
type ImportRun struct {
	ID                 int64  `json:"id"`
	Providers          string `json:"providers"` // comma-separated provider names
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

// Stats contains aggregate reporting over confirmed transactions.
type Stats struct {
	TotalTransactions int              `json:"total_transactions"`
	ExpenseCents      int64            `json:"expense_cents"`
	IncomeCents       int64            `json:"income_cents"`
	TransferCount     int              `json:"transfer_count"`
	ByCategory        map[string]int64 `json:"by_category"` // expense cents per category
	Balances          []AccountBalance `json:"balances"`
}

// AccountBalance is the computed balance of one account in minor units.
type AccountBalance struct {
	AccountID    int64  `json:"account_id"`
	Name         string `json:"name"`
	Currency     string `json:"currency"`
	BalanceCents int64  `json:"balance_cents"`
}

// TripStats aggregates spending for one trip tag.
type TripStats struct {
	Trip         string `json:"trip"`
	Transactions int    `json:"transactions"`
	TotalCents   int64  `json:"total_cents"`
}
