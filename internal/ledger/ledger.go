// internal/ledger/ledger.go
package ledger

import (
	"slices"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Append returns a new ledger with p added after the existing entries.
// The input slice is never modified.
func Append(payments []Payment, p Payment) []Payment {
	out := make([]Payment, 0, len(payments)+1)
	out = append(out, payments...)
	return append(out, p)
}

// TotalForPeriod sums every entry it is given. Callers choose the period by
// choosing the entries, see InMonth.
func TotalForPeriod(payments []Payment) decimal.Decimal {
	return lo.Reduce(payments, func(acc decimal.Decimal, p Payment, _ int) decimal.Decimal {
		return acc.Add(p.Amount)
	}, decimal.Zero)
}

// InMonth keeps the entries whose OccurredAt falls in the calendar month of ref,
// evaluated in ref's location.
func InMonth(payments []Payment, ref time.Time) []Payment {
	year, month, _ := ref.Date()
	return lo.Filter(payments, func(p Payment, _ int) bool {
		y, m, _ := p.OccurredAt.In(ref.Location()).Date()
		return y == year && m == month
	})
}

// ForMember returns the member's payments, most recent first.
// Entries with equal timestamps keep their insertion order.
func ForMember(payments []Payment, memberID string) []Payment {
	return Newest(lo.Filter(payments, func(p Payment, _ int) bool {
		return p.MemberID == memberID
	}))
}

// Newest returns a copy of payments ordered most recent first, stable on ties.
func Newest(payments []Payment) []Payment {
	out := slices.Clone(payments)
	slices.SortStableFunc(out, func(a, b Payment) int {
		return b.OccurredAt.Compare(a.OccurredAt)
	})
	return out
}

var brl = message.NewPrinter(language.BrazilianPortuguese)

// FormatAmount renders an amount the way the finance screens show it, e.g. "R$ 80,00".
func FormatAmount(d decimal.Decimal) string {
	return brl.Sprintf("R$ %.2f", d.Round(2).InexactFloat64())
}
