// internal/membership/views.go
package membership

import (
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"gymflow/internal/ledger"
	"gymflow/internal/notify"
	"gymflow/internal/settings"
)

// Alert is shown to the operator when a change could not be saved.
// The change itself stays in effect for the life of the process.
type Alert struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

const (
	QuotaAlertMessage = "⚠️ LIMITE DE ESPAÇO ATINGIDO: O navegador não consegue salvar mais dados. Por favor, remova alunos antigos ou limpe o histórico do navegador para continuar."
	SaveAlertMessage  = "⚠️ Não foi possível salvar os dados. As alterações continuam valendo até o servidor reiniciar."
)

// Registration is the outcome of a self-service sign-up.
type Registration struct {
	Member Member `json:"member"`
	// OwnerAlert notifies the owner about the new sign-up. It is nil when
	// the owner's contact has no digits.
	OwnerAlert *notify.Message `json:"owner_alert,omitempty"`
	Alerts     []Alert         `json:"alerts,omitempty"`
}

// Activation is the outcome of confirming a payment.
type Activation struct {
	Member  Member          `json:"member"`
	Status  Status          `json:"status"`
	Payment ledger.Payment  `json:"payment"`
	Renewal bool            `json:"renewal"`
	Welcome *notify.Message `json:"welcome,omitempty"`
	Alerts  []Alert         `json:"alerts,omitempty"`
}

// SettingsUpdate is the outcome of saving settings.
type SettingsUpdate struct {
	Settings settings.Settings `json:"settings"`
	Alerts   []Alert           `json:"alerts,omitempty"`
}

// BroadcastResult holds one message per selected member. Ids that did not
// match a member are listed in Missing.
type BroadcastResult struct {
	Messages []notify.Message `json:"messages"`
	Missing  []string         `json:"missing,omitempty"`
}

// Profile is what a member sees after looking up their id.
type Profile struct {
	Member   Member           `json:"member"`
	Status   Status           `json:"status"`
	Payments []ledger.Payment `json:"payments"`
}

// RosterEntry is a member line in the admin list.
type RosterEntry struct {
	Member Member `json:"member"`
	Status Status `json:"status"`
}

// Dashboard holds the headline numbers of the admin console.
type Dashboard struct {
	Members           int             `json:"members"`
	Pending           int             `json:"pending"`
	Overdue           int             `json:"overdue"`
	Active            int             `json:"active"`
	Revenue           decimal.Decimal `json:"revenue"`
	RevenueLabel      string          `json:"revenue_label"`
	MonthRevenue      decimal.Decimal `json:"month_revenue"`
	MonthRevenueLabel string          `json:"month_revenue_label"`
}

// FinanceEntry is a ledger line with its member reference resolved.
type FinanceEntry struct {
	Payment     ledger.Payment `json:"payment"`
	MemberName  string         `json:"member_name"`
	MemberFound bool           `json:"member_found"`
	AmountLabel string         `json:"amount_label"`
}

// Finance is the full ledger, most recent first.
type Finance struct {
	Entries         []FinanceEntry  `json:"entries"`
	Total           decimal.Decimal `json:"total"`
	TotalLabel      string          `json:"total_label"`
	MonthTotal      decimal.Decimal `json:"month_total"`
	MonthTotalLabel string          `json:"month_total_label"`

	// Projected is what the activated members bring in at the monthly fee.
	ActiveMembers   int             `json:"active_members"`
	MonthlyFee      decimal.Decimal `json:"monthly_fee"`
	MonthlyFeeLabel string          `json:"monthly_fee_label"`
	Projected       decimal.Decimal `json:"projected"`
	ProjectedLabel  string          `json:"projected_label"`
}

func buildProfile(s State, m Member, now time.Time) Profile {
	payments := ledger.ForMember(s.Payments, m.ID)
	if payments == nil {
		payments = []ledger.Payment{}
	}
	return Profile{Member: m, Status: Evaluate(m, now), Payments: payments}
}

func buildRoster(members []Member, now time.Time) []RosterEntry {
	return lo.Map(members, func(m Member, _ int) RosterEntry {
		return RosterEntry{Member: m, Status: Evaluate(m, now)}
	})
}

func buildDashboard(s State, now time.Time) Dashboard {
	d := Dashboard{Members: len(s.Members)}
	for _, m := range s.Members {
		switch {
		case m.State == StatePending:
			d.Pending++
		case m.State != StateActivated:
		case DaysRemaining(m.DueDate, now) < 0:
			d.Overdue++
		default:
			d.Active++
		}
	}
	d.Revenue = ledger.TotalForPeriod(s.Payments)
	d.RevenueLabel = ledger.FormatAmount(d.Revenue)
	d.MonthRevenue = ledger.TotalForPeriod(ledger.InMonth(s.Payments, now))
	d.MonthRevenueLabel = ledger.FormatAmount(d.MonthRevenue)
	return d
}

func buildFinance(s State, now time.Time) Finance {
	entries := lo.Map(ledger.Newest(s.Payments), func(p ledger.Payment, _ int) FinanceEntry {
		m, found := Resolve(s.Members, p.MemberID)
		return FinanceEntry{
			Payment:     p,
			MemberName:  m.Name,
			MemberFound: found,
			AmountLabel: ledger.FormatAmount(p.Amount),
		}
	})
	if entries == nil {
		entries = []FinanceEntry{}
	}
	total := ledger.TotalForPeriod(s.Payments)
	month := ledger.TotalForPeriod(ledger.InMonth(s.Payments, now))
	active := lo.CountBy(s.Members, func(m Member) bool { return m.State == StateActivated })
	fee := s.Settings.Fee()
	projected := fee.Mul(decimal.NewFromInt(int64(active)))
	return Finance{
		Entries:         entries,
		Total:           total,
		TotalLabel:      ledger.FormatAmount(total),
		MonthTotal:      month,
		MonthTotalLabel: ledger.FormatAmount(month),
		ActiveMembers:   active,
		MonthlyFee:      fee,
		MonthlyFeeLabel: ledger.FormatAmount(fee),
		Projected:       projected,
		ProjectedLabel:  ledger.FormatAmount(projected),
	}
}
