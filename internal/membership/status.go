// internal/membership/status.go
package membership

import "time"

// Unscheduled is what DaysRemaining returns for a member that never had a due date.
const Unscheduled = -999

// DueSoonDays is the largest number of remaining days still shown as "due soon".
const DueSoonDays = 3

// DaysRemaining counts whole calendar days from now's date to due's date,
// both taken in now's location. A due date later today is 0 days away.
func DaysRemaining(due, now time.Time) int {
	if due.IsZero() {
		return Unscheduled
	}
	dy, dm, dd := due.In(now.Location()).Date()
	ny, nm, nd := now.Date()
	d1 := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return int(d1.Sub(d2) / (24 * time.Hour))
}

// Tier is the coarse status bucket a member is displayed under.
type Tier string

const (
	TierAwaitingActivation Tier = "awaiting_activation"
	TierBlocked            Tier = "blocked"
	TierDueSoon            Tier = "due_soon"
	TierActive             Tier = "active"
)

// Theme is the display information for a tier.
type Theme struct {
	Tier  Tier   `json:"tier"`
	Label string `json:"label"`
	Color string `json:"color"`
}

var themes = map[Tier]Theme{
	TierAwaitingActivation: {Tier: TierAwaitingActivation, Label: "AGUARDANDO ATIVAÇÃO", Color: "orange"},
	TierBlocked:            {Tier: TierBlocked, Label: "ACESSO BLOQUEADO", Color: "red"},
	TierDueSoon:            {Tier: TierDueSoon, Label: "VENCIMENTO PRÓXIMO", Color: "amber"},
	TierActive:             {Tier: TierActive, Label: "ACESSO LIBERADO", Color: "emerald"},
}

// ThemeFor maps remaining days and lifecycle state to a theme.
// Pending wins over any day count since a pending member has no real due date.
func ThemeFor(days int, state LifecycleState) Theme {
	switch {
	case state == StatePending:
		return themes[TierAwaitingActivation]
	case days < 0:
		return themes[TierBlocked]
	case days <= DueSoonDays:
		return themes[TierDueSoon]
	default:
		return themes[TierActive]
	}
}

// AwaitingActivationLabel is shown instead of a date for unscheduled members.
const AwaitingActivationLabel = "Aguardando Ativação"

// FormatDate renders t as dd/mm/yyyy in loc.
func FormatDate(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return AwaitingActivationLabel
	}
	return t.In(loc).Format("02/01/2006")
}

// Status is the derived, never stored, view of a member at a given moment.
type Status struct {
	Days         int    `json:"days_remaining"`
	Theme        Theme  `json:"theme"`
	DueDateLabel string `json:"due_date_label"`
	Overdue      bool   `json:"overdue"`
}

// Evaluate derives the member's status at now.
func Evaluate(m Member, now time.Time) Status {
	days := DaysRemaining(m.DueDate, now)
	return Status{
		Days:         days,
		Theme:        ThemeFor(days, m.State),
		DueDateLabel: FormatDate(m.DueDate, now.Location()),
		Overdue:      m.State == StateActivated && days < 0,
	}
}
