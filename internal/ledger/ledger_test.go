package ledger

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func payment(id, member string, amount string, at time.Time) Payment {
	return Payment{
		ID:              id,
		MemberID:        member,
		Amount:          decimal.RequireFromString(amount),
		OccurredAt:      at,
		ReferencePeriod: ReferencePeriodFor(at),
		Method:          MethodInstantTransfer,
	}
}

func TestTotalForPeriod(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	a := payment("PAY-000001", "UF-AAAAA", "80.00", now)
	b := payment("PAY-000002", "UF-BBBBB", "99.50", now)

	want := decimal.RequireFromString("179.50")
	assert.True(t, want.Equal(TotalForPeriod([]Payment{a, b})))
	assert.True(t, want.Equal(TotalForPeriod([]Payment{b, a})))
	assert.True(t, decimal.Zero.Equal(TotalForPeriod(nil)))
}

func TestTotalIsOrderIndependent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cents := rapid.SliceOf(rapid.Int64Range(0, 1_000_000)).Draw(t, "cents")
		var payments []Payment
		want := decimal.Zero
		for _, c := range cents {
			amount := decimal.New(c, -2)
			want = want.Add(amount)
			payments = append(payments, Payment{Amount: amount})
		}
		shuffled := rapid.Permutation(payments).Draw(t, "shuffled")
		if !TotalForPeriod(shuffled).Equal(want) {
			t.Fatalf("total %s, want %s", TotalForPeriod(shuffled), want)
		}
	})
}

func TestAppendDoesNotMutate(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	base := make([]Payment, 1, 4)
	base[0] = payment("PAY-000001", "UF-AAAAA", "80", now)

	first := Append(base, payment("PAY-000002", "UF-AAAAA", "80", now))
	second := Append(base, payment("PAY-000003", "UF-AAAAA", "80", now))

	require.Len(t, base, 1)
	assert.Equal(t, "PAY-000002", first[1].ID)
	assert.Equal(t, "PAY-000003", second[1].ID)
}

func TestForMemberOrdering(t *testing.T) {
	t0 := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	payments := []Payment{
		payment("PAY-1", "UF-A", "80", t0),
		payment("PAY-2", "UF-B", "80", t0.Add(time.Hour)),
		payment("PAY-3", "UF-A", "80", t0.AddDate(0, 1, 0)),
		payment("PAY-4", "UF-A", "80", t0),
		payment("PAY-5", "UF-A", "80", t0.AddDate(0, 2, 0)),
	}

	got := ForMember(payments, "UF-A")
	ids := make([]string, len(got))
	for i, p := range got {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{"PAY-5", "PAY-3", "PAY-1", "PAY-4"}, ids)
	assert.Empty(t, ForMember(payments, "UF-Z"))
}

func TestNewestLeavesInputAlone(t *testing.T) {
	t0 := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	payments := []Payment{
		payment("PAY-1", "UF-A", "80", t0),
		payment("PAY-2", "UF-B", "80", t0.Add(time.Hour)),
	}
	got := Newest(payments)
	assert.Equal(t, "PAY-2", got[0].ID)
	assert.Equal(t, "PAY-1", payments[0].ID)
	assert.Empty(t, Newest(nil))
}

func TestForMemberSortedDescending(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		offsets := rapid.SliceOf(rapid.IntRange(0, 10)).Draw(t, "offsets")
		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		var payments []Payment
		for i, off := range offsets {
			payments = append(payments, Payment{
				ID:         string(rune('a' + i%26)),
				MemberID:   "UF-A",
				OccurredAt: base.Add(time.Duration(off) * time.Hour),
				Amount:     decimal.NewFromInt(int64(i)),
			})
		}
		got := ForMember(payments, "UF-A")
		for i := 1; i < len(got); i++ {
			prev, cur := got[i-1], got[i]
			if prev.OccurredAt.Before(cur.OccurredAt) {
				t.Fatalf("entry %d is newer than entry %d", i, i-1)
			}
			// Amount doubles as the insertion index.
			if prev.OccurredAt.Equal(cur.OccurredAt) && prev.Amount.GreaterThan(cur.Amount) {
				t.Fatalf("tie at %d not in insertion order", i)
			}
		}
	})
}

func TestInMonth(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	ref := time.Date(2024, 3, 15, 12, 0, 0, 0, loc)
	payments := []Payment{
		payment("PAY-1", "UF-A", "80", time.Date(2024, 3, 1, 2, 0, 0, 0, time.UTC)),  // Feb 29 23:00 local
		payment("PAY-2", "UF-A", "80", time.Date(2024, 3, 1, 3, 0, 0, 0, time.UTC)),  // Mar 1 00:00 local
		payment("PAY-3", "UF-A", "80", time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)), // Mar 31
		payment("PAY-4", "UF-A", "80", time.Date(2023, 3, 10, 12, 0, 0, 0, time.UTC)), // other year
	}

	got := InMonth(payments, ref)
	require.Len(t, got, 2)
	assert.Equal(t, "PAY-2", got[0].ID)
	assert.Equal(t, "PAY-3", got[1].ID)
}

func TestReferencePeriodFor(t *testing.T) {
	assert.Equal(t, "3/2024", ReferencePeriodFor(time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, "12/2025", ReferencePeriodFor(time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(decimal.Zero, MethodCash))
	assert.ErrorIs(t, Validate(decimal.NewFromInt(-1), MethodCard), ErrNegativeAmount)
	assert.ErrorIs(t, Validate(decimal.NewFromInt(80), Method("Boleto")), ErrInvalidMethod)
}

func TestMethodJSON(t *testing.T) {
	var m Method
	require.NoError(t, json.Unmarshal([]byte(`"Pix"`), &m))
	assert.Equal(t, MethodInstantTransfer, m)
	assert.ErrorIs(t, json.Unmarshal([]byte(`"Cheque"`), &m), ErrInvalidMethod)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "R$ 80,00", FormatAmount(decimal.RequireFromString("80")))
	assert.Equal(t, "R$ 1.234,50", FormatAmount(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "R$ 0,00", FormatAmount(decimal.Zero))
}
