// Package csvstatement adapts bank CSV statement exports dropped into a
// local directory. Each mapped account owns one file named <key>.csv with
// the columns: booked_at, description, amount, reference.
package csvstatement

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise-backend/internal/adapters/providers"
	"github.com/pennywise-app/pennywise-backend/internal/domain/transfers"
)

const (
	numFields    = 4
	colBookedAt  = 0
	colDesc      = 1
	colAmount    = 2
	colReference = 3
)

// Config holds the adapter settings.
type Config struct {
	Dir string
	// Accounts maps statement file keys (the filename without .csv) to
	// internal account ids.
	Accounts providers.AccountMapping
}

// Provider reads statement CSVs from the configured directory.
type Provider struct {
	config Config
	logger *slog.Logger
}

var _ providers.Provider = (*Provider)(nil)

// New creates a csvstatement provider.
func New(config Config, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{config: config, logger: logger}
}

// Name returns the stable provider identifier.
func (p *Provider) Name() string { return "csvstatement" }

// DisplayName returns the human-readable provider name.
func (p *Provider) DisplayName() string { return "CSV Statements" }

// FetchRecords parses every mapped statement file. A missing file is not an
// error; the account simply contributes no records this run.
func (p *Provider) FetchRecords(ctx context.Context, opts providers.FetchOptions) ([]transfers.DirectionalRecord, error) {
	var records []transfers.DirectionalRecord

	keys := make([]string, 0, len(p.config.Accounts))
	for k := range p.config.Accounts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(p.config.Dir, key+".csv")
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				p.logger.Debug("no statement file", "account", key)
				continue
			}
			return nil, fmt.Errorf("opening statement %s: %w", path, err)
		}

		parsed, err := p.parse(f, key, p.config.Accounts[key], opts)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("statement %s: %w", path, err)
		}
		records = append(records, parsed...)

		if opts.MaxRecords > 0 && len(records) >= opts.MaxRecords {
			return records[:opts.MaxRecords], nil
		}
	}

	return records, nil
}

// parse reads one statement file and returns its records.
func (p *Provider) parse(r io.Reader, key string, internalID int64, opts providers.FetchOptions) ([]transfers.DirectionalRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}

	if len(rows) <= 1 {
		return nil, nil
	}

	var records []transfers.DirectionalRecord
	for i, row := range rows[1:] {
		record, err := parseRow(row, key, internalID)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if !opts.StartDate.IsZero() && record.Timestamp.Before(opts.StartDate) {
			continue
		}
		if !opts.EndDate.IsZero() && record.Timestamp.After(opts.EndDate) {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func parseRow(row []string, key string, internalID int64) (transfers.DirectionalRecord, error) {
	bookedAt, err := time.Parse(time.RFC3339, row[colBookedAt])
	if err != nil {
		return transfers.DirectionalRecord{}, fmt.Errorf("parsing booked_at %q: %w", row[colBookedAt], err)
	}

	amount, err := decimal.NewFromString(row[colAmount])
	if err != nil {
		return transfers.DirectionalRecord{}, fmt.Errorf("parsing amount %q: %w", row[colAmount], err)
	}

	reference := row[colReference]
	if reference == "" {
		return transfers.DirectionalRecord{}, fmt.Errorf("empty reference")
	}

	kind := transfers.KindDeposit
	if amount.IsNegative() {
		kind = transfers.KindWithdrawal
		amount = amount.Neg()
	}

	return transfers.DirectionalRecord{
		Kind:        kind,
		ExternalID:  fmt.Sprintf("csvstatement:%s:%s", key, reference),
		AccountID:   internalID,
		Timestamp:   bookedAt,
		AmountCents: amount.Shift(2).IntPart(),
		Description: row[colDesc],
	}, nil
}

// HealthCheck verifies the statement directory is readable.
func (p *Provider) HealthCheck(ctx context.Context) error {
	info, err := os.Stat(p.config.Dir)
	if err != nil {
		return fmt.Errorf("statement dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("statement dir %s is not a directory", p.config.Dir)
	}
	return nil
}
