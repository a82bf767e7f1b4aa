// Package openbanking adapts a REST bank-data aggregator into the provider
// boundary. The aggregator exposes per-account transaction listings; this
// adapter resolves its decimal amount strings and transaction ids into
// normalized directional records.
package openbanking

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise-backend/internal/adapters/providers"
	"github.com/pennywise-app/pennywise-backend/internal/domain/transfers"
)

const defaultTimeout = 30 * time.Second

// Config holds the adapter settings.
type Config struct {
	BaseURL     string
	AccessToken string
	// Accounts maps provider account ids to internal account ids.
	Accounts providers.AccountMapping
}

// Provider fetches transactions from the aggregator API.
type Provider struct {
	config Config
	client *http.Client
	logger *slog.Logger
}

// Compile-time check that Provider implements the boundary interface.
var _ providers.Provider = (*Provider)(nil)

// New creates an openbanking provider.
func New(config Config, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		config: config,
		client: &http.Client{Timeout: defaultTimeout},
		logger: logger,
	}
}

// Name returns the stable provider identifier.
func (p *Provider) Name() string { return "openbanking" }

// DisplayName returns the human-readable provider name.
func (p *Provider) DisplayName() string { return "Open Banking" }

// apiTransaction is the aggregator's wire shape for one transaction.
type apiTransaction struct {
	ID          string `json:"id"`
	Amount      string `json:"amount"` // signed decimal string, e.g. "-12.34"
	Currency    string `json:"currency"`
	BookedAt    string `json:"booked_at"` // RFC3339 with millisecond precision
	Description string `json:"description"`
}

type transactionsResponse struct {
	Transactions []apiTransaction `json:"transactions"`
}

// FetchRecords pulls transactions for every mapped account and normalizes
// them. ExternalIDs are prefixed with the provider and account id so they
// stay globally unique.
func (p *Provider) FetchRecords(ctx context.Context, opts providers.FetchOptions) ([]transfers.DirectionalRecord, error) {
	var records []transfers.DirectionalRecord

	for _, providerAccountID := range sortedKeys(p.config.Accounts) {
		internalID := p.config.Accounts[providerAccountID]

		txs, err := p.fetchAccount(ctx, providerAccountID, opts)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", providerAccountID, err)
		}

		for _, tx := range txs {
			record, err := p.normalize(tx, providerAccountID, internalID)
			if err != nil {
				return nil, fmt.Errorf("account %s transaction %s: %w", providerAccountID, tx.ID, err)
			}
			records = append(records, record)

			if opts.MaxRecords > 0 && len(records) >= opts.MaxRecords {
				return records, nil
			}
		}
	}

	p.logger.Debug("fetched openbanking records", "count", len(records))
	return records, nil
}

// fetchAccount retrieves raw transactions for one provider account.
func (p *Provider) fetchAccount(ctx context.Context, providerAccountID string, opts providers.FetchOptions) ([]apiTransaction, error) {
	endpoint := fmt.Sprintf("%s/accounts/%s/transactions", p.config.BaseURL, url.PathEscape(providerAccountID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.config.AccessToken)

	q := req.URL.Query()
	if !opts.StartDate.IsZero() {
		q.Set("from", opts.StartDate.UTC().Format(time.RFC3339))
	}
	if !opts.EndDate.IsZero() {
		q.Set("to", opts.EndDate.UTC().Format(time.RFC3339))
	}
	req.URL.RawQuery = q.Encode()

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching transactions: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("aggregator returned status %d", resp.StatusCode)
	}

	var body transactionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return body.Transactions, nil
}

// normalize converts one wire transaction into a directional record.
func (p *Provider) normalize(tx apiTransaction, providerAccountID string, internalID int64) (transfers.DirectionalRecord, error) {
	amount, err := decimal.NewFromString(tx.Amount)
	if err != nil {
		return transfers.DirectionalRecord{}, fmt.Errorf("parsing amount %q: %w", tx.Amount, err)
	}

	kind := transfers.KindDeposit
	if amount.IsNegative() {
		kind = transfers.KindWithdrawal
		amount = amount.Neg()
	}
	cents := amount.Shift(2).IntPart()

	bookedAt, err := time.Parse(time.RFC3339, tx.BookedAt)
	if err != nil {
		return transfers.DirectionalRecord{}, fmt.Errorf("parsing booked_at %q: %w", tx.BookedAt, err)
	}

	return transfers.DirectionalRecord{
		Kind:        kind,
		ExternalID:  fmt.Sprintf("openbanking:%s:%s", providerAccountID, tx.ID),
		AccountID:   internalID,
		Timestamp:   bookedAt,
		AmountCents: cents,
		Description: tx.Description,
	}, nil
}

// HealthCheck verifies the credential against the accounts endpoint.
func (p *Provider) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.BaseURL+"/accounts", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.config.AccessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("aggregator health check returned status %d", resp.StatusCode)
	}
	return nil
}

func sortedKeys(m providers.AccountMapping) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Deterministic fetch order keeps the combined batch stable across runs.
	sort.Strings(keys)
	return keys
}
