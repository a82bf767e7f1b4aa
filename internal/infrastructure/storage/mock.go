package storage

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// MockRepository is an in-memory implementation of Repository for testing.
// It stores all data in maps and slices, making tests fast and isolated.
type MockRepository struct {
	accounts     map[int64]*Account
	transactions map[int64]*Transaction
	suggestions  map[string]*Suggestion // keyed by public id
	links        map[string]int64       // external id -> suggestion id
	runs         map[int64]*ImportRun

	nextAccountID     int64
	nextTransactionID int64
	nextSuggestionID  int64
	nextRunID         int64

	// Hooks for test assertions
	SaveSuggestionCalled    bool
	LastSavedSuggestion     *Suggestion
	CreateTransactionCalled bool
	StartImportRunCalled    bool

	// Error injection for testing error paths
	SaveSuggestionErr    error
	CreateTransactionErr error
	KnownExternalIDsErr  error
	StartImportRunErr    error
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// NewMockRepository creates a new mock repository for testing.
func NewMockRepository() *MockRepository {
	return &MockRepository{
		accounts:          make(map[int64]*Account),
		transactions:      make(map[int64]*Transaction),
		suggestions:       make(map[string]*Suggestion),
		links:             make(map[string]int64),
		runs:              make(map[int64]*ImportRun),
		nextAccountID:     1,
		nextTransactionID: 1,
		nextSuggestionID:  1,
		nextRunID:         1,
	}
}

// Close is a no-op.
func (m *MockRepository) Close() error { return nil }

// CreateAccount inserts a new account and fills its ID.
func (m *MockRepository) CreateAccount(account *Account) error {
	account.ID = m.nextAccountID
	m.nextAccountID++
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}
	copied := *account
	m.accounts[account.ID] = &copied
	return nil
}

// GetAccount retrieves an account by id.
func (m *MockRepository) GetAccount(id int64) (*Account, error) {
	account, ok := m.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account %d not found", id)
	}
	copied := *account
	return &copied, nil
}

// ListAccounts returns all accounts ordered by name.
func (m *MockRepository) ListAccounts() ([]*Account, error) {
	accounts := make([]*Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		copied := *a
		accounts = append(accounts, &copied)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Name < accounts[j].Name })
	return accounts, nil
}

// CreateTransaction inserts a transaction and fills its ID.
func (m *MockRepository) CreateTransaction(tx *Transaction) error {
	m.CreateTransactionCalled = true
	if m.CreateTransactionErr != nil {
		return m.CreateTransactionErr
	}
	tx.ID = m.nextTransactionID
	m.nextTransactionID++
	copied := *tx
	m.transactions[tx.ID] = &copied
	return nil
}

// GetTransaction retrieves a transaction by id.
func (m *MockRepository) GetTransaction(id int64) (*Transaction, error) {
	tx, ok := m.transactions[id]
	if !ok {
		return nil, fmt.Errorf("transaction %d not found", id)
	}
	copied := *tx
	return &copied, nil
}

// ListTransactions returns transactions matching the filters, newest first.
func (m *MockRepository) ListTransactions(filters TransactionFilters) ([]*Transaction, error) {
	var txs []*Transaction
	for _, tx := range m.transactions {
		if filters.AccountID != 0 && tx.AccountID != filters.AccountID &&
			(tx.CounterpartyAccountID == nil || *tx.CounterpartyAccountID != filters.AccountID) {
			continue
		}
		if filters.Kind != "" && tx.Kind != filters.Kind {
			continue
		}
		if filters.Category != "" && tx.Category != filters.Category {
			continue
		}
		if filters.Trip != "" && tx.Trip != filters.Trip {
			continue
		}
		copied := *tx
		txs = append(txs, &copied)
	}
	sort.Slice(txs, func(i, j int) bool { return txs[i].OccurredAt.After(txs[j].OccurredAt) })

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}
	if filters.Offset < len(txs) {
		txs = txs[filters.Offset:]
	} else {
		txs = nil
	}
	if len(txs) > limit {
		txs = txs[:limit]
	}
	return txs, nil
}

// GetStats returns aggregate statistics over confirmed transactions.
func (m *MockRepository) GetStats() (*Stats, error) {
	stats := &Stats{ByCategory: make(map[string]int64)}
	for _, tx := range m.transactions {
		stats.TotalTransactions++
		switch tx.Kind {
		case TxKindExpense:
			stats.ExpenseCents += tx.AmountCents
			if tx.Category != "" {
				stats.ByCategory[tx.Category] += tx.AmountCents
			}
		case TxKindIncome:
			stats.IncomeCents += tx.AmountCents
		case TxKindTransfer:
			stats.TransferCount++
		}
	}
	return stats, nil
}

// GetTripStats returns per-trip spending aggregates.
func (m *MockRepository) GetTripStats() ([]TripStats, error) {
	byTrip := make(map[string]*TripStats)
	for _, tx := range m.transactions {
		if tx.Kind != TxKindExpense || tx.Trip == "" {
			continue
		}
		entry, ok := byTrip[tx.Trip]
		if !ok {
			entry = &TripStats{Trip: tx.Trip}
			byTrip[tx.Trip] = entry
		}
		entry.Transactions++
		entry.TotalCents += tx.AmountCents
	}

	trips := make([]TripStats, 0, len(byTrip))
	for _, entry := range byTrip {
		trips = append(trips, *entry)
	}
	sort.Slice(trips, func(i, j int) bool { return trips[i].Trip < trips[j].Trip })
	return trips, nil
}

// SaveSuggestion persists a suggestion and links its external ids.
func (m *MockRepository) SaveSuggestion(suggestion *Suggestion) error {
	m.SaveSuggestionCalled = true
	if m.SaveSuggestionErr != nil {
		return m.SaveSuggestionErr
	}

	suggestion.ID = m.nextSuggestionID
	m.nextSuggestionID++
	if suggestion.Status == "" {
		suggestion.Status = SuggestionPending
	}
	if suggestion.CreatedAt.IsZero() {
		suggestion.CreatedAt = time.Now().UTC()
	}

	for _, externalID := range suggestion.ExternalIDs() {
		if _, exists := m.links[externalID]; exists {
			return fmt.Errorf("external id %s already linked", externalID)
		}
	}
	for _, externalID := range suggestion.ExternalIDs() {
		m.links[externalID] = suggestion.ID
	}

	copied := *suggestion
	copied.Records = append([]SuggestedRecord(nil), suggestion.Records...)
	m.suggestions[suggestion.PublicID] = &copied
	m.LastSavedSuggestion = &copied
	return nil
}

// GetSuggestion retrieves a suggestion by public id.
func (m *MockRepository) GetSuggestion(publicID string) (*Suggestion, error) {
	suggestion, ok := m.suggestions[publicID]
	if !ok {
		return nil, fmt.Errorf("suggestion %s not found", publicID)
	}
	copied := *suggestion
	return &copied, nil
}

// ListSuggestions returns suggestions with the given status, newest first.
func (m *MockRepository) ListSuggestions(status string, limit int) ([]*Suggestion, error) {
	if limit <= 0 {
		limit = 50
	}
	var suggestions []*Suggestion
	for _, s := range m.suggestions {
		if status != "" && s.Status != status {
			continue
		}
		copied := *s
		suggestions = append(suggestions, &copied)
	}
	sort.Slice(suggestions, func(i, j int) bool { return suggestions[i].ID > suggestions[j].ID })
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions, nil
}

// ResolveSuggestion marks a suggestion accepted or dismissed.
func (m *MockRepository) ResolveSuggestion(publicID, status string, transactionID *int64) error {
	suggestion, ok := m.suggestions[publicID]
	if !ok {
		return fmt.Errorf("suggestion %s not found", publicID)
	}
	if suggestion.Status != SuggestionPending {
		return fmt.Errorf("suggestion %s already resolved", publicID)
	}
	suggestion.Status = status
	now := time.Now().UTC()
	suggestion.ResolvedAt = &now
	return nil
}

// KnownExternalIDs reports which of the given ids are already linked.
func (m *MockRepository) KnownExternalIDs(ids []string) (map[string]bool, error) {
	if m.KnownExternalIDsErr != nil {
		return nil, m.KnownExternalIDsErr
	}
	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := m.links[id]; ok {
			known[id] = true
		}
	}
	return known, nil
}

// AddKnownExternalID pre-populates the dedup store for tests.
func (m *MockRepository) AddKnownExternalID(externalID string) {
	m.links[externalID] = 0
}

// StartImportRun records the start of an import run.
func (m *MockRepository) StartImportRun(providers []string, lookbackDays int, dryRun bool) (int64, error) {
	m.StartImportRunCalled = true
	if m.StartImportRunErr != nil {
		return 0, m.StartImportRunErr
	}
	id := m.nextRunID
	m.nextRunID++
	m.runs[id] = &ImportRun{
		ID:           id,
		Providers:    strings.Join(providers, ","),
		StartedAt:    time.Now().UTC().Format(time.RFC3339),
		LookbackDays: lookbackDays,
		DryRun:       dryRun,
		Status:       "running",
	}
	return id, nil
}

// CompleteImportRun records the completion of an import run.
func (m *MockRepository) CompleteImportRun(runID int64, result ImportRunResult) error {
	run, ok := m.runs[runID]
	if !ok {
		return fmt.Errorf("import run %d not found", runID)
	}
	run.CompletedAt = time.Now().UTC().Format(time.RFC3339)
	run.RecordsFetched = result.RecordsFetched
	run.RecordsSkipped = result.RecordsSkipped
	run.SuggestionsCreated = result.SuggestionsCreated
	run.TransfersMatched = result.TransfersMatched
	run.Errors = result.Errors
	run.Status = "completed"
	if result.Errors > 0 {
		run.Status = "completed_with_errors"
	}
	return nil
}

// ListImportRuns returns recent import runs.
func (m *MockRepository) ListImportRuns(limit int) ([]ImportRun, error) {
	if limit <= 0 {
		limit = 20
	}
	runs := make([]ImportRun, 0, len(m.runs))
	for _, run := range m.runs {
		runs = append(runs, *run)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].ID > runs[j].ID })
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// GetImportRun retrieves an import run by ID.
func (m *MockRepository) GetImportRun(runID int64) (*ImportRun, error) {
	run, ok := m.runs[runID]
	if !ok {
		return nil, fmt.Errorf("import run %d not found", runID)
	}
	copied := *run
	return &copied, nil
}
