package csvstatement

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pennywise-app/pennywise-backend/internal/adapters/providers"
	"github.com/pennywise-app/pennywise-backend/internal/domain/transfers"
)

const checkingCSV = `booked_at,description,amount,reference
2025-10-10T09:00:00Z,grocery store,-42.17,ref-001
2025-10-10T11:30:00Z,salary,2500.00,ref-002
`

func writeStatement(t *testing.T, dir, key, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, key+".csv"), []byte(content), 0o644))
}

func TestProvider_FetchRecords(t *testing.T) {
	dir := t.TempDir()
	writeStatement(t, dir, "checking", checkingCSV)

	provider := New(Config{
		Dir:      dir,
		Accounts: providers.AccountMapping{"checking": 7},
	}, nil)

	records, err := provider.FetchRecords(context.Background(), providers.FetchOptions{})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, transfers.KindWithdrawal, records[0].Kind)
	assert.Equal(t, "csvstatement:checking:ref-001", records[0].ExternalID)
	assert.Equal(t, int64(7), records[0].AccountID)
	assert.Equal(t, int64(4217), records[0].AmountCents)
	assert.Equal(t, "grocery store", records[0].Description)

	assert.Equal(t, transfers.KindDeposit, records[1].Kind)
	assert.Equal(t, int64(250000), records[1].AmountCents)
}

func TestProvider_FetchRecords_MissingFileSkipped(t *testing.T) {
	dir := t.TempDir()
	writeStatement(t, dir, "checking", checkingCSV)

	provider := New(Config{
		Dir: dir,
		Accounts: providers.AccountMapping{
			"checking": 7,
			"savings":  8, // no savings.csv present
		},
	}, nil)

	records, err := provider.FetchRecords(context.Background(), providers.FetchOptions{})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestProvider_FetchRecords_DateFilter(t *testing.T) {
	dir := t.TempDir()
	writeStatement(t, dir, "checking", checkingCSV)

	provider := New(Config{
		Dir:      dir,
		Accounts: providers.AccountMapping{"checking": 7},
	}, nil)

	records, err := provider.FetchRecords(context.Background(), providers.FetchOptions{
		StartDate: time.Date(2025, 10, 10, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "csvstatement:checking:ref-002", records[0].ExternalID)
}

func TestProvider_FetchRecords_BadRow(t *testing.T) {
	dir := t.TempDir()
	writeStatement(t, dir, "checking", "booked_at,description,amount,reference\nnot-a-date,x,1.00,ref-1\n")

	provider := New(Config{
		Dir:      dir,
		Accounts: providers.AccountMapping{"checking": 7},
	}, nil)

	_, err := provider.FetchRecords(context.Background(), providers.FetchOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestProvider_HealthCheck(t *testing.T) {
	dir := t.TempDir()

	assert.NoError(t, New(Config{Dir: dir}, nil).HealthCheck(context.Background()))
	assert.Error(t, New(Config{Dir: filepath.Join(dir, "missing")}, nil).HealthCheck(context.Background()))
}
