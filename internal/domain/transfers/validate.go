package transfers

import "fmt"

// ValidateBatch rejects input the matcher's contract leaves undefined:
// duplicate or empty external ids, negative amounts, unknown kinds.
// Callers run it on the combined batch before calling Match.
func ValidateBatch(records []DirectionalRecord) error {
	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		if r.ExternalID == "" {
			return fmt.Errorf("record %d: empty external id", i)
		}
		if _, dup := seen[r.ExternalID]; dup {
			return fmt.Errorf("duplicate external id %q in batch", r.ExternalID)
		}
		seen[r.ExternalID] = struct{}{}

		if r.AmountCents < 0 {
			return fmt.Errorf("record %q: negative amount %d", r.ExternalID, r.AmountCents)
		}
		switch r.Kind {
		case KindWithdrawal, KindDeposit:
		default:
			return fmt.Errorf("record %q: unknown kind %q", r.ExternalID, r.Kind)
		}
	}
	return nil
}
