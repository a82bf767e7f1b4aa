package transfers

import "time"

// RecordKind identifies the direction of an imported bank record.
type RecordKind string

const (
	KindWithdrawal RecordKind = "withdrawal"
	KindDeposit    RecordKind = "deposit"
)

// DirectionalRecord is a single bank record pulled from a provider and
// normalized by its adapter, not yet turned into a persisted transaction.
type DirectionalRecord struct {
	Kind        RecordKind
	ExternalID  string // provider-assigned id, unique within one batch
	AccountID   int64  // internal account the record belongs to
	Timestamp   time.Time
	AmountCents int64 // absolute amount in minor units; sign implied by Kind
	Description string
}

// MatchedTransfer holds the two legs of an inferred internal transfer.
// The legs always carry equal amounts and belong to two distinct accounts.
type MatchedTransfer struct {
	Withdrawal DirectionalRecord
	Deposit    DirectionalRecord
}

// SuggestionKind discriminates the two output shapes of the matcher.
type SuggestionKind string

const (
	SuggestionRecord   SuggestionKind = "record"
	SuggestionTransfer SuggestionKind = "transfer"
)

// Suggestion is one output item of the matcher: either a record passed
// through untouched, or two opposite-direction records merged into a
// transfer. Exactly one of Record/Transfer is set, per Kind.
type Suggestion struct {
	Kind     SuggestionKind
	Record   *DirectionalRecord
	Transfer *MatchedTransfer
}

// ExternalIDs returns the source record ids consumed by this suggestion.
func (s Suggestion) ExternalIDs() []string {
	switch s.Kind {
	case SuggestionTransfer:
		return []string{s.Transfer.Withdrawal.ExternalID, s.Transfer.Deposit.ExternalID}
	case SuggestionRecord:
		return []string{s.Record.ExternalID}
	}
	return nil
}

// Config holds the matcher time windows.
type Config struct {
	// SettlementWindow is the accepted distance when the withdrawal occurs
	// at or before the deposit. Absorbs interbank settlement delay.
	SettlementWindow time.Duration

	// SkewTolerance is the accepted distance when the deposit is reported
	// before the withdrawal, which only happens because the clocks of two
	// providers are not synchronized.
	SkewTolerance time.Duration
}

// DefaultConfig returns the standard windows.
func DefaultConfig() Config {
	return Config{
		SettlementWindow: 2 * time.Hour,
		SkewTolerance:    1 * time.Minute,
	}
}

// candidate pairs a deposit with the single best withdrawal it selected.
// Indices point into the matcher's input slice.
type candidate struct {
	withdrawal int
	deposit    int
	distance   time.Duration
}
