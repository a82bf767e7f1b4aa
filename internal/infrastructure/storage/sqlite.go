package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Storage provides SQLite database access.
// It implements the Repository interface.
type Storage struct {
	db *sql.DB
}

// Compile-time check that Storage implements Repository
var _ Repository = (*Storage)(nil)

// NewStorage creates a new storage instance with SQLite database
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints (SQLite-specific)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Storage{db: db}

	// Run all pending migrations
	if err := s.runMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// ----------------------------------------------------------------
// Accounts
// ----------------------------------------------------------------

// CreateAccount inserts a new account and fills its ID.
func (s *Storage) CreateAccount(account *Account) error {
	if account.Kind == "" {
		account.Kind = "checking"
	}
	if account.Currency == "" {
		account.Currency = "USD"
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.Exec(`
		INSERT INTO accounts (name, kind, currency, created_at)
		VALUES (?, ?, ?, ?)
	`, account.Name, account.Kind, account.Currency, account.CreatedAt)
	if err != nil {
		return err
	}

	account.ID, err = res.LastInsertId()
	return err
}

// GetAccount retrieves an account by id.
func (s *Storage) GetAccount(id int64) (*Account, error) {
	account := &Account{}
	err := s.db.QueryRow(`
		SELECT id, name, kind, currency, created_at
		FROM accounts WHERE id = ?
	`, id).Scan(&account.ID, &account.Name, &account.Kind, &account.Currency, &account.CreatedAt)
	if err != nil {
		return nil, err
	}
	return account, nil
}

// ListAccounts returns all accounts ordered by name.
func (s *Storage) ListAccounts() ([]*Account, error) {
	rows, err := s.db.Query(`
		SELECT id, name, kind, currency, created_at
		FROM accounts ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var accounts []*Account
	for rows.Next() {
		account := &Account{}
		if err := rows.Scan(&account.ID, &account.Name, &account.Kind, &account.Currency, &account.CreatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// ----------------------------------------------------------------
// Transactions
// ----------------------------------------------------------------

// CreateTransaction inserts a transaction and fills its ID.
func (s *Storage) CreateTransaction(tx *Transaction) error {
	if tx.AmountCents < 0 {
		return fmt.Errorf("amount must be non-negative, got %d", tx.AmountCents)
	}
	switch tx.Kind {
	case TxKindExpense, TxKindIncome:
		if tx.CounterpartyAccountID != nil {
			return fmt.Errorf("%s transaction cannot have a counterparty account", tx.Kind)
		}
	case TxKindTransfer:
		if tx.CounterpartyAccountID == nil {
			return fmt.Errorf("transfer requires a counterparty account")
		}
		if *tx.CounterpartyAccountID == tx.AccountID {
			return fmt.Errorf("transfer must cross two distinct accounts")
		}
	default:
		return fmt.Errorf("unknown transaction kind %q", tx.Kind)
	}

	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}

	var counterparty sql.NullInt64
	if tx.CounterpartyAccountID != nil {
		counterparty = sql.NullInt64{Int64: *tx.CounterpartyAccountID, Valid: true}
	}

	res, err := s.db.Exec(`
		INSERT INTO transactions
		(kind, account_id, counterparty_account_id, amount_cents, occurred_at,
		 description, category, trip, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, tx.Kind, tx.AccountID, counterparty, tx.AmountCents, tx.OccurredAt,
		tx.Description, tx.Category, tx.Trip, tx.CreatedAt)
	if err != nil {
		return err
	}

	tx.ID, err = res.LastInsertId()
	return err
}

const transactionColumns = `id, kind, account_id, counterparty_account_id,
	amount_cents, occurred_at, description, category, trip, created_at`

func scanTransaction(scan func(dest ...any) error) (*Transaction, error) {
	tx := &Transaction{}
	var counterparty sql.NullInt64
	err := scan(&tx.ID, &tx.Kind, &tx.AccountID, &counterparty, &tx.AmountCents,
		&tx.OccurredAt, &tx.Description, &tx.Category, &tx.Trip, &tx.CreatedAt)
	if err != nil {
		return nil, err
	}
	if counterparty.Valid {
		tx.CounterpartyAccountID = &counterparty.Int64
	}
	return tx, nil
}

// GetTransaction retrieves a transaction by id.
func (s *Storage) GetTransaction(id int64) (*Transaction, error) {
	row := s.db.QueryRow(`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	return scanTransaction(row.Scan)
}

// ListTransactions returns transactions matching the filters, newest first.
func (s *Storage) ListTransactions(filters TransactionFilters) ([]*Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE 1=1`
	var args []any

	if filters.AccountID != 0 {
		query += ` AND (account_id = ? OR counterparty_account_id = ?)`
		args = append(args, filters.AccountID, filters.AccountID)
	}
	if filters.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, filters.Kind)
	}
	if filters.Category != "" {
		query += ` AND category = ?`
		args = append(args, filters.Category)
	}
	if filters.Trip != "" {
		query += ` AND trip = ?`
		args = append(args, filters.Trip)
	}
	if filters.DaysBack > 0 {
		query += ` AND occurred_at > datetime('now', ?)`
		args = append(args, fmt.Sprintf("-%d days", filters.DaysBack))
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}
	query += ` ORDER BY occurred_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, filters.Offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var txs []*Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// GetStats returns aggregate statistics over confirmed transactions.
func (s *Storage) GetStats() (*Stats, error) {
	stats := &Stats{ByCategory: make(map[string]int64)}

	err := s.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN kind = 'expense' THEN amount_cents END), 0),
			COALESCE(SUM(CASE WHEN kind = 'income' THEN amount_cents END), 0),
			COUNT(CASE WHEN kind = 'transfer' THEN 1 END)
		FROM transactions
	`).Scan(&stats.TotalTransactions, &stats.ExpenseCents, &stats.IncomeCents, &stats.TransferCount)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT category, COALESCE(SUM(amount_cents), 0)
		FROM transactions
		WHERE kind = 'expense' AND category != ''
		GROUP BY category
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var category string
		var cents int64
		if err := rows.Scan(&category, &cents); err != nil {
			return nil, err
		}
		stats.ByCategory[category] = cents
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	balances, err := s.accountBalances()
	if err != nil {
		return nil, err
	}
	stats.Balances = balances

	return stats, nil
}

// accountBalances computes per-account balances from confirmed transactions:
// income adds, expenses subtract, transfers move between the two legs.
func (s *Storage) accountBalances() ([]AccountBalance, error) {
	rows, err := s.db.Query(`
		SELECT a.id, a.name, a.currency,
			COALESCE((SELECT SUM(CASE
				WHEN t.kind = 'income' THEN t.amount_cents
				WHEN t.kind = 'expense' THEN -t.amount_cents
				WHEN t.kind = 'transfer' THEN -t.amount_cents
			END) FROM transactions t WHERE t.account_id = a.id), 0)
			+
			COALESCE((SELECT SUM(t.amount_cents) FROM transactions t
				WHERE t.kind = 'transfer' AND t.counterparty_account_id = a.id), 0)
		FROM accounts a
		ORDER BY a.name
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var balances []AccountBalance
	for rows.Next() {
		var b AccountBalance
		if err := rows.Scan(&b.AccountID, &b.Name, &b.Currency, &b.BalanceCents); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

// GetTripStats returns per-trip spending aggregates.
func (s *Storage) GetTripStats() ([]TripStats, error) {
	rows, err := s.db.Query(`
		SELECT trip, COUNT(*), COALESCE(SUM(amount_cents), 0)
		FROM transactions
		WHERE kind = 'expense' AND trip != ''
		GROUP BY trip
		ORDER BY trip
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var trips []TripStats
	for rows.Next() {
		var t TripStats
		if err := rows.Scan(&t.Trip, &t.Transactions, &t.TotalCents); err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

// ----------------------------------------------------------------
// Suggestions
// ----------------------------------------------------------------

// SaveSuggestion persists a suggestion and links its external ids in one
// transaction, so a batch can never be half-recorded.
func (s *Storage) SaveSuggestion(suggestion *Suggestion) error {
	if err := suggestion.MarshalRecords(); err != nil {
		return fmt.Errorf("serializing records: %w", err)
	}
	if suggestion.Status == "" {
		suggestion.Status = SuggestionPending
	}
	if suggestion.CreatedAt.IsZero() {
		suggestion.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	res, err := tx.Exec(`
		INSERT INTO suggestions (public_id, kind, status, records_json, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, suggestion.PublicID, suggestion.Kind, suggestion.Status, suggestion.RecordsJSON, suggestion.CreatedAt)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	suggestion.ID, err = res.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	for _, externalID := range suggestion.ExternalIDs() {
		if _, err := tx.Exec(`
			INSERT INTO record_links (external_id, suggestion_id)
			VALUES (?, ?)
		`, externalID, suggestion.ID); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("linking external id %s: %w", externalID, err)
		}
	}

	return tx.Commit()
}

const suggestionColumns = `id, public_id, kind, status, records_json, created_at, resolved_at`

func scanSuggestion(scan func(dest ...any) error) (*Suggestion, error) {
	suggestion := &Suggestion{}
	var resolvedAt sql.NullTime
	err := scan(&suggestion.ID, &suggestion.PublicID, &suggestion.Kind, &suggestion.Status,
		&suggestion.RecordsJSON, &suggestion.CreatedAt, &resolvedAt)
	if err != nil {
		return nil, err
	}
	if resolvedAt.Valid {
		suggestion.ResolvedAt = &resolvedAt.Time
	}
	if err := suggestion.UnmarshalRecords(); err != nil {
		return nil, fmt.Errorf("deserializing records: %w", err)
	}
	return suggestion, nil
}

// GetSuggestion retrieves a suggestion by public id.
func (s *Storage) GetSuggestion(publicID string) (*Suggestion, error) {
	row := s.db.QueryRow(`SELECT `+suggestionColumns+` FROM suggestions WHERE public_id = ?`, publicID)
	return scanSuggestion(row.Scan)
}

// ListSuggestions returns suggestions with the given status, newest first.
func (s *Storage) ListSuggestions(status string, limit int) ([]*Suggestion, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT ` + suggestionColumns + ` FROM suggestions`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var suggestions []*Suggestion
	for rows.Next() {
		suggestion, err := scanSuggestion(rows.Scan)
		if err != nil {
			return nil, err
		}
		suggestions = append(suggestions, suggestion)
	}
	return suggestions, rows.Err()
}

// ResolveSuggestion marks a suggestion accepted or dismissed and, when a
// transaction was created from it, links its external ids to it.
func (s *Storage) ResolveSuggestion(publicID, status string, transactionID *int64) error {
	if status != SuggestionAccepted && status != SuggestionDismissed {
		return fmt.Errorf("invalid resolution status %q", status)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	res, err := tx.Exec(`
		UPDATE suggestions SET status = ?, resolved_at = ?
		WHERE public_id = ? AND status = ?
	`, status, time.Now().UTC(), publicID, SuggestionPending)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if affected == 0 {
		_ = tx.Rollback()
		return fmt.Errorf("suggestion %s not found or already resolved", publicID)
	}

	if transactionID != nil {
		if _, err := tx.Exec(`
			UPDATE record_links SET transaction_id = ?
			WHERE suggestion_id = (SELECT id FROM suggestions WHERE public_id = ?)
		`, *transactionID, publicID); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// KnownExternalIDs reports which of the given ids are already linked to a
// suggestion or transaction.
func (s *Storage) KnownExternalIDs(ids []string) (map[string]bool, error) {
	known := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return known, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.Query(`
		SELECT external_id FROM record_links WHERE external_id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		known[id] = true
	}
	return known, rows.Err()
}

// ----------------------------------------------------------------
// Import runs
// ----------------------------------------------------------------

// StartImportRun records the start of an import run and returns the run ID.
func (s *Storage) StartImportRun(providers []string, lookbackDays int, dryRun bool) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO import_runs (providers, started_at, lookback_days, dry_run, status)
		VALUES (?, ?, ?, ?, 'running')
	`, strings.Join(providers, ","), time.Now().UTC(), lookbackDays, dryRun)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// CompleteImportRun records the completion of an import run.
func (s *Storage) CompleteImportRun(runID int64, result ImportRunResult) error {
	status := "completed"
	if result.Errors > 0 {
		status = "completed_with_errors"
	}

	_, err := s.db.Exec(`
		UPDATE import_runs
		SET completed_at = ?, records_fetched = ?, records_skipped = ?,
		    suggestions_created = ?, transfers_matched = ?, errors = ?, status = ?
		WHERE id = ?
	`, time.Now().UTC(), result.RecordsFetched, result.RecordsSkipped,
		result.SuggestionsCreated, result.TransfersMatched, result.Errors, status, runID)
	return err
}

const importRunColumns = `id, providers, started_at, COALESCE(completed_at, ''),
	lookback_days, dry_run, records_fetched, records_skipped,
	suggestions_created, transfers_matched, errors, status`

func scanImportRun(scan func(dest ...any) error) (*ImportRun, error) {
	run := &ImportRun{}
	err := scan(&run.ID, &run.Providers, &run.StartedAt, &run.CompletedAt,
		&run.LookbackDays, &run.DryRun, &run.RecordsFetched, &run.RecordsSkipped,
		&run.SuggestionsCreated, &run.TransfersMatched, &run.Errors, &run.Status)
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListImportRuns returns recent import runs.
func (s *Storage) ListImportRuns(limit int) ([]ImportRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT `+importRunColumns+` FROM import_runs
		ORDER BY started_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []ImportRun
	for rows.Next() {
		run, err := scanImportRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetImportRun retrieves an import run by ID.
func (s *Storage) GetImportRun(runID int64) (*ImportRun, error) {
	row := s.db.QueryRow(`SELECT `+importRunColumns+` FROM import_runs WHERE id = ?`, runID)
	return scanImportRun(row.Scan)
}
