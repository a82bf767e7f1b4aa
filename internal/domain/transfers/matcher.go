// Package transfers infers which pairs of opposite-direction imported
// records are really the two legs of a single transfer between two tracked
// accounts, without any explicit signal from the source data.
//
// The matcher is pure and deterministic: it never mutates its input, holds
// no state between calls, and every external id present in the input
// appears in exactly one output suggestion.
//
// Example usage:
//
//	m := transfers.NewMatcher(transfers.DefaultConfig())
//	suggestions := m.Match(records)
package transfers

import (
	"sort"
	"time"
)

// Matcher pairs withdrawals with deposits using the configured time windows.
type Matcher struct {
	config Config
}

// NewMatcher creates a new matcher with the given config.
func NewMatcher(config Config) *Matcher {
	return &Matcher{config: config}
}

// Match partitions records into inferred transfers and untouched leftovers.
// Output preserves input order; a transfer is emitted at the position of its
// earliest-appearing leg.
func (m *Matcher) Match(records []DirectionalRecord) []Suggestion {
	candidates := m.collectCandidates(records)

	// Tightest pairing first, globally across all deposits. The sort must be
	// stable so that equal distances keep candidate generation order, which
	// is itself input order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	used := make(map[string]bool, len(records))
	emitAt := make(map[int]MatchedTransfer)
	otherLeg := make(map[int]bool)

	for _, c := range candidates {
		w, d := records[c.withdrawal], records[c.deposit]
		if used[w.ExternalID] || used[d.ExternalID] {
			// A tighter pairing already claimed a leg. The losing deposit
			// does not retry against a second-best withdrawal; none was
			// ever computed.
			continue
		}
		used[w.ExternalID] = true
		used[d.ExternalID] = true

		first, second := c.withdrawal, c.deposit
		if second < first {
			first, second = second, first
		}
		emitAt[first] = MatchedTransfer{Withdrawal: w, Deposit: d}
		otherLeg[second] = true
	}

	out := make([]Suggestion, 0, len(records))
	for i := range records {
		if t, ok := emitAt[i]; ok {
			transfer := t
			out = append(out, Suggestion{Kind: SuggestionTransfer, Transfer: &transfer})
			continue
		}
		if otherLeg[i] {
			continue
		}
		record := records[i]
		out = append(out, Suggestion{Kind: SuggestionRecord, Record: &record})
	}
	return out
}

// collectCandidates runs the per-deposit scan. Each deposit commits to at
// most one withdrawal here: the eligible one with the smallest absolute
// time distance, first-seen winning exact ties.
func (m *Matcher) collectCandidates(records []DirectionalRecord) []candidate {
	var candidates []candidate
	for di := range records {
		if records[di].Kind != KindDeposit {
			continue
		}

		best := -1
		var bestDistance time.Duration
		for wi := range records {
			if records[wi].Kind != KindWithdrawal {
				continue
			}
			distance, ok := m.eligible(records[wi], records[di])
			if !ok {
				continue
			}
			if best == -1 || distance < bestDistance {
				best = wi
				bestDistance = distance
			}
		}

		if best >= 0 {
			candidates = append(candidates, candidate{
				withdrawal: best,
				deposit:    di,
				distance:   bestDistance,
			})
		}
	}
	return candidates
}

// eligible reports whether a withdrawal may pair with a deposit and, if so,
// the absolute time distance between them. The window is asymmetric: money
// normally leaves the source account before it lands, so a withdrawal that
// precedes the deposit gets the generous settlement window, while the
// reverse ordering only tolerates clock skew.
func (m *Matcher) eligible(w, d DirectionalRecord) (distance time.Duration, ok bool) {
	if w.AmountCents != d.AmountCents {
		return 0, false
	}
	if w.AccountID == d.AccountID {
		return 0, false
	}

	if !w.Timestamp.After(d.Timestamp) {
		distance = d.Timestamp.Sub(w.Timestamp)
		return distance, distance < m.config.SettlementWindow
	}
	distance = w.Timestamp.Sub(d.Timestamp)
	return distance, distance < m.config.SkewTolerance
}
