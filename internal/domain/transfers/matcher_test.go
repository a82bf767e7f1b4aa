package transfers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 10, 10, 9, 0, 0, 0, time.UTC)

func withdrawal(id string, account int64, cents int64, at time.Time) DirectionalRecord {
	return DirectionalRecord{
		Kind:        KindWithdrawal,
		ExternalID:  id,
		AccountID:   account,
		Timestamp:   at,
		AmountCents: cents,
		Description: "test withdrawal",
	}
}

func deposit(id string, account int64, cents int64, at time.Time) DirectionalRecord {
	return DirectionalRecord{
		Kind:        KindDeposit,
		ExternalID:  id,
		AccountID:   account,
		Timestamp:   at,
		AmountCents: cents,
		Description: "test deposit",
	}
}

// transfers returns only the transfer suggestions from the output.
func transferItems(out []Suggestion) []*MatchedTransfer {
	var result []*MatchedTransfer
	for _, s := range out {
		if s.Kind == SuggestionTransfer {
			result = append(result, s.Transfer)
		}
	}
	return result
}

func standaloneItems(out []Suggestion) []*DirectionalRecord {
	var result []*DirectionalRecord
	for _, s := range out {
		if s.Kind == SuggestionRecord {
			result = append(result, s.Record)
		}
	}
	return result
}

func TestMatcher_WithdrawalBeforeDeposit(t *testing.T) {
	// Arrange
	m := NewMatcher(DefaultConfig())
	records := []DirectionalRecord{
		withdrawal("w1", 1, 10000, baseTime.Add(-30*time.Minute)),
		deposit("d1", 2, 10000, baseTime),
	}

	// Act
	out := m.Match(records)

	// Assert
	require.Len(t, out, 1)
	require.Equal(t, SuggestionTransfer, out[0].Kind)
	assert.Equal(t, "w1", out[0].Transfer.Withdrawal.ExternalID)
	assert.Equal(t, "d1", out[0].Transfer.Deposit.ExternalID)
}

func TestMatcher_TighterDepositWinsSharedWithdrawal(t *testing.T) {
	// Both deposits pick the same withdrawal in step A; the globally tighter
	// pairing (5m vs 1h55m) wins, and the loser stays standalone.
	m := NewMatcher(DefaultConfig())
	records := []DirectionalRecord{
		withdrawal("w1", 1, 5000, baseTime),
		deposit("d-far", 2, 5000, baseTime.Add(time.Hour+55*time.Minute)),
		deposit("d-near", 3, 5000, baseTime.Add(time.Hour+50*time.Minute)),
	}

	out := m.Match(records)

	matched := transferItems(out)
	require.Len(t, matched, 1)
	assert.Equal(t, "w1", matched[0].Withdrawal.ExternalID)
	assert.Equal(t, "d-near", matched[0].Deposit.ExternalID)

	alone := standaloneItems(out)
	require.Len(t, alone, 1)
	assert.Equal(t, "d-far", alone[0].ExternalID)
}

func TestMatcher_DepositBeforeWithdrawalWithinSkew(t *testing.T) {
	m := NewMatcher(DefaultConfig())
	records := []DirectionalRecord{
		withdrawal("w1", 1, 2000, baseTime),
		deposit("d1", 2, 2000, baseTime.Add(-30*time.Second)),
	}

	out := m.Match(records)

	require.Len(t, out, 1)
	assert.Equal(t, SuggestionTransfer, out[0].Kind)
}

func TestMatcher_DepositLongBeforeWithdrawal_NoMatch(t *testing.T) {
	// The generous 2h window only applies when the withdrawal precedes the
	// deposit. 2h01m the other way around is beyond the skew tolerance.
	m := NewMatcher(DefaultConfig())
	records := []DirectionalRecord{
		withdrawal("w1", 1, 2000, baseTime),
		deposit("d1", 2, 2000, baseTime.Add(-(2*time.Hour + time.Minute))),
	}

	out := m.Match(records)

	require.Len(t, out, 2)
	assert.Equal(t, SuggestionRecord, out[0].Kind)
	assert.Equal(t, SuggestionRecord, out[1].Kind)
}

func TestMatcher_NoDeposits_PassThrough(t *testing.T) {
	m := NewMatcher(DefaultConfig())
	records := []DirectionalRecord{
		withdrawal("w1", 1, 100, baseTime),
		withdrawal("w2", 1, 100, baseTime.Add(10*time.Minute)),
	}

	out := m.Match(records)

	require.Len(t, out, 2)
	assert.Equal(t, "w1", out[0].Record.ExternalID)
	assert.Equal(t, "w2", out[1].Record.ExternalID)
}

func TestMatcher_WindowBoundariesAreExclusive(t *testing.T) {
	m := NewMatcher(DefaultConfig())

	t.Run("exactly 2h settlement gap", func(t *testing.T) {
		out := m.Match([]DirectionalRecord{
			withdrawal("w1", 1, 700, baseTime),
			deposit("d1", 2, 700, baseTime.Add(2*time.Hour)),
		})
		assert.Empty(t, transferItems(out))
	})

	t.Run("just under 2h settlement gap", func(t *testing.T) {
		out := m.Match([]DirectionalRecord{
			withdrawal("w1", 1, 700, baseTime),
			deposit("d1", 2, 700, baseTime.Add(2*time.Hour-time.Millisecond)),
		})
		assert.Len(t, transferItems(out), 1)
	})

	t.Run("exactly 1m skew gap", func(t *testing.T) {
		out := m.Match([]DirectionalRecord{
			withdrawal("w1", 1, 700, baseTime),
			deposit("d1", 2, 700, baseTime.Add(-time.Minute)),
		})
		assert.Empty(t, transferItems(out))
	})

	t.Run("identical timestamps use settlement window", func(t *testing.T) {
		out := m.Match([]DirectionalRecord{
			withdrawal("w1", 1, 700, baseTime),
			deposit("d1", 2, 700, baseTime),
		})
		assert.Len(t, transferItems(out), 1)
	})
}

func TestMatcher_AmountMustMatchExactly(t *testing.T) {
	m := NewMatcher(DefaultConfig())
	records := []DirectionalRecord{
		withdrawal("w1", 1, 10000, baseTime),
		deposit("d1", 2, 10001, baseTime.Add(time.Minute)),
	}

	out := m.Match(records)

	assert.Empty(t, transferItems(out))
	assert.Len(t, standaloneItems(out), 2)
}

func TestMatcher_SameAccountNeverPairs(t *testing.T) {
	m := NewMatcher(DefaultConfig())
	records := []DirectionalRecord{
		withdrawal("w1", 1, 10000, baseTime),
		deposit("d1", 1, 10000, baseTime.Add(time.Minute)),
	}

	out := m.Match(records)

	assert.Empty(t, transferItems(out))
}

func TestMatcher_TieBrokenByInputOrder(t *testing.T) {
	// Two withdrawals at identical distance from the deposit: the one that
	// appears first in the input wins.
	m := NewMatcher(DefaultConfig())
	records := []DirectionalRecord{
		withdrawal("w-first", 1, 3000, baseTime.Add(-10*time.Minute)),
		withdrawal("w-second", 3, 3000, baseTime.Add(-10*time.Minute)),
		deposit("d1", 2, 3000, baseTime),
	}

	out := m.Match(records)

	matched := transferItems(out)
	require.Len(t, matched, 1)
	assert.Equal(t, "w-first", matched[0].Withdrawal.ExternalID)
}

func TestMatcher_LosingDepositDoesNotFallBack(t *testing.T) {
	// d-loser's single candidate is w-near (closer than w-far). When d-winner
	// claims w-near with a tighter distance, d-loser becomes standalone even
	// though w-far would still have been a valid pairing.
	m := NewMatcher(DefaultConfig())
	records := []DirectionalRecord{
		withdrawal("w-near", 1, 4000, baseTime),
		withdrawal("w-far", 4, 4000, baseTime.Add(-90*time.Minute)),
		deposit("d-winner", 2, 4000, baseTime.Add(5*time.Minute)),
		deposit("d-loser", 3, 4000, baseTime.Add(20*time.Minute)),
	}

	out := m.Match(records)

	matched := transferItems(out)
	require.Len(t, matched, 1)
	assert.Equal(t, "w-near", matched[0].Withdrawal.ExternalID)
	assert.Equal(t, "d-winner", matched[0].Deposit.ExternalID)

	ids := make(map[string]bool)
	for _, r := range standaloneItems(out) {
		ids[r.ExternalID] = true
	}
	assert.True(t, ids["w-far"], "unclaimed withdrawal passes through")
	assert.True(t, ids["d-loser"], "losing deposit passes through without retry")
}

func TestMatcher_ExactlyOncePlacement(t *testing.T) {
	m := NewMatcher(DefaultConfig())
	records := []DirectionalRecord{
		withdrawal("w1", 1, 5000, baseTime),
		withdrawal("w2", 2, 5000, baseTime.Add(3*time.Minute)),
		withdrawal("w3", 1, 1200, baseTime.Add(time.Hour)),
		deposit("d1", 3, 5000, baseTime.Add(time.Minute)),
		deposit("d2", 4, 5000, baseTime.Add(4*time.Minute)),
		deposit("d3", 2, 9999, baseTime),
	}

	out := m.Match(records)

	seen := make(map[string]int)
	for _, s := range out {
		for _, id := range s.ExternalIDs() {
			seen[id]++
		}
	}
	require.Len(t, seen, len(records))
	for _, r := range records {
		assert.Equal(t, 1, seen[r.ExternalID], "external id %s placed exactly once", r.ExternalID)
	}
}

func TestMatcher_Deterministic(t *testing.T) {
	m := NewMatcher(DefaultConfig())
	records := []DirectionalRecord{
		withdrawal("w1", 1, 5000, baseTime),
		deposit("d1", 2, 5000, baseTime.Add(time.Minute)),
		deposit("d2", 3, 5000, baseTime.Add(time.Minute)),
		withdrawal("w2", 4, 5000, baseTime.Add(2*time.Minute)),
	}

	first := m.Match(records)
	second := m.Match(records)

	assert.Equal(t, first, second)
}

func TestMatcher_DoesNotMutateInput(t *testing.T) {
	m := NewMatcher(DefaultConfig())
	records := []DirectionalRecord{
		withdrawal("w1", 1, 5000, baseTime),
		deposit("d1", 2, 5000, baseTime.Add(time.Minute)),
	}
	original := make([]DirectionalRecord, len(records))
	copy(original, records)

	m.Match(records)

	assert.Equal(t, original, records)
}

func TestMatcher_EmptyInput(t *testing.T) {
	m := NewMatcher(DefaultConfig())

	out := m.Match(nil)

	assert.Empty(t, out)
}

func TestMatcher_OutputPreservesInputOrder(t *testing.T) {
	m := NewMatcher(DefaultConfig())
	records := []DirectionalRecord{
		withdrawal("w-alone", 1, 111, baseTime),
		deposit("d1", 2, 5000, baseTime.Add(time.Minute)),
		withdrawal("w1", 1, 5000, baseTime),
		deposit("d-alone", 3, 222, baseTime),
	}

	out := m.Match(records)

	require.Len(t, out, 3)
	assert.Equal(t, SuggestionRecord, out[0].Kind)
	assert.Equal(t, "w-alone", out[0].Record.ExternalID)
	// Transfer emitted at the position of its earliest-appearing leg (d1).
	assert.Equal(t, SuggestionTransfer, out[1].Kind)
	assert.Equal(t, SuggestionRecord, out[2].Kind)
	assert.Equal(t, "d-alone", out[2].Record.ExternalID)
}
