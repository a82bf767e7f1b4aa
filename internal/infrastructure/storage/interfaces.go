package storage

// Repository defines the complete storage interface.
// This interface allows swapping implementations (SQLite, PostgreSQL, etc.)
// and makes testing with mocks straightforward.
type Repository interface {
	AccountRepository
	TransactionRepository
	SuggestionRepository
	ImportRunRepository
	Close() error
}

// AccountRepository handles tracked accounts.
type AccountRepository interface {
	// CreateAccount inserts a new account and fills its ID.
	CreateAccount(account *Account) error

	// GetAccount retrieves an account by id.
	GetAccount(id int64) (*Account, error)

	// ListAccounts returns all accounts ordered by name.
	ListAccounts() ([]*Account, error)
}

// TransactionFilters defines filters for listing transactions.
type TransactionFilters struct {
	AccountID int64  // 0 = all accounts
	Kind      string // empty = all kinds
	Category  string // empty = all categories
	Trip      string // empty = all trips
	DaysBack  int    // 0 = all time
	Limit     int    // 0 = default 50
	Offset    int
}

// TransactionRepository handles confirmed transactions and reporting.
type TransactionRepository interface {
	// CreateTransaction inserts a transaction and fills its ID.
	CreateTransaction(tx *Transaction) error

	// GetTransaction retrieves a transaction by id.
	GetTransaction(id int64) (*Transaction, error)

	// ListTransactions returns transactions matching the filters, newest first.
	ListTransactions(filters TransactionFilters) ([]*Transaction, error)

	// GetStats returns aggregate statistics over confirmed transactions.
	GetStats() (*Stats, error)

	// GetTripStats returns per-trip spending aggregates.
	GetTripStats() ([]TripStats, error)
}

// SuggestionRepository handles pending matcher output and the
// dedup-by-external-id store that keeps re-fetched records from surfacing
// again.
type SuggestionRepository interface {
	// SaveSuggestion persists a suggestion and links its external ids.
	SaveSuggestion(suggestion *Suggestion) error

	// GetSuggestion retrieves a suggestion by public id.
	GetSuggestion(publicID string) (*Suggestion, error)

	// ListSuggestions returns suggestions with the given status
	// (empty = all), newest first.
	ListSuggestions(status string, limit int) ([]*Suggestion, error)

	// ResolveSuggestion marks a suggestion accepted or dismissed. When a
	// transaction was created from it, transactionID links the consumed
	// external ids to it.
	ResolveSuggestion(publicID, status string, transactionID *int64) error

	// KnownExternalIDs reports which of the given ids are already linked to
	// a suggestion or transaction.
	KnownExternalIDs(ids []string) (map[string]bool, error)
}

// ImportRunRepository handles import run tracking.
type ImportRunRepository interface {
	// StartImportRun records the start of an import run and returns the run ID.
	StartImportRun(providers []string, lookbackDays int, dryRun bool) (int64, error)

	// CompleteImportRun records the completion of an import run.
	CompleteImportRun(runID int64, result ImportRunResult) error

	// ListImportRuns returns recent import runs.
	ListImportRuns(limit int) ([]ImportRun, error)

	// GetImportRun retrieves an import run by ID.
	GetImportRun(runID int64) (*ImportRun, error)
}

// ImportRunResult holds the counters written when an import run completes.
type ImportRunResult struct {
	RecordsFetched     int
	RecordsSkipped     int
	SuggestionsCreated int
	TransfersMatched   int
	Errors             int
}
