// internal/settings/domain.go
package settings

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"gymflow/internal/ids"
)

var (
	ErrUnknownPurpose = errors.New("unknown message purpose")
	ErrInvalid        = errors.New("invalid settings")
)

// Trainer is a staff profile shown on the public site.
type Trainer struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	Photo     string `json:"photo"`
}

// Templates holds one message template per purpose.
type Templates struct {
	Welcome         string `json:"welcome"`
	Billing         string `json:"billing"`
	Holiday         string `json:"holiday"`
	NewRegistration string `json:"new_registration"`
	SummerPromo     string `json:"summer_promo"`
	WeeklyWorkout   string `json:"weekly_workout"`
}

// Purpose names a template.
type Purpose string

const (
	PurposeWelcome         Purpose = "welcome"
	PurposeBilling         Purpose = "billing"
	PurposeHoliday         Purpose = "holiday"
	PurposeNewRegistration Purpose = "new_registration"
	PurposeSummerPromo     Purpose = "summer_promo"
	PurposeWeeklyWorkout   Purpose = "weekly_workout"
)

// For returns the template registered for p.
func (t Templates) For(p Purpose) (string, error) {
	switch p {
	case PurposeWelcome:
		return t.Welcome, nil
	case PurposeBilling:
		return t.Billing, nil
	case PurposeHoliday:
		return t.Holiday, nil
	case PurposeNewRegistration:
		return t.NewRegistration, nil
	case PurposeSummerPromo:
		return t.SummerPromo, nil
	case PurposeWeeklyWorkout:
		return t.WeeklyWorkout, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPurpose, p)
}

// Settings is the organization-wide configuration edited from the admin console.
// It is always saved as a whole.
type Settings struct {
	Name         string    `json:"name" validate:"required"`
	OwnerName    string    `json:"owner_name"`
	Contact      string    `json:"whatsapp" validate:"required"`
	LogoURL      string    `json:"logo_url"`
	CoverURL     string    `json:"cover_url"`
	About        string    `json:"about"`
	Announcement string    `json:"announcement"`
	OpeningHours string    `json:"opening_hours"`
	Trainers     []Trainer `json:"trainers" validate:"dive"`
	Templates    Templates `json:"prompts"`

	// MonthlyFee is the standard membership price. Zero means DefaultMonthlyFee.
	MonthlyFee decimal.Decimal `json:"monthly_fee"`
}

// DefaultMonthlyFee is the standard membership price in reais.
var DefaultMonthlyFee = decimal.NewFromInt(80)

// Fee returns the monthly fee, falling back to DefaultMonthlyFee when unset.
func (s Settings) Fee() decimal.Decimal {
	if s.MonthlyFee.IsZero() {
		return DefaultMonthlyFee
	}
	return s.MonthlyFee
}

// Public is the subset of Settings exposed on the marketing site.
type Public struct {
	Name         string    `json:"name"`
	OwnerName    string    `json:"owner_name"`
	Contact      string    `json:"whatsapp"`
	LogoURL      string    `json:"logo_url"`
	CoverURL     string    `json:"cover_url"`
	About        string    `json:"about"`
	Announcement string    `json:"announcement"`
	OpeningHours string    `json:"opening_hours"`
	Trainers     []Trainer `json:"trainers"`
}

// Public drops the message templates.
func (s Settings) Public() Public {
	return Public{
		Name:         s.Name,
		OwnerName:    s.OwnerName,
		Contact:      s.Contact,
		LogoURL:      s.LogoURL,
		CoverURL:     s.CoverURL,
		About:        s.About,
		Announcement: s.Announcement,
		OpeningHours: s.OpeningHours,
		Trainers:     append([]Trainer(nil), s.Trainers...),
	}
}

var nonDigits = regexp.MustCompile(`\D`)

// Normalize prepares an edited Settings for saving: the contact keeps only
// digits and trainers added without an id get one.
func Normalize(s Settings, code ids.CodeFunc) Settings {
	s.Contact = nonDigits.ReplaceAllString(s.Contact, "")
	trainers := make([]Trainer, len(s.Trainers))
	for i, t := range s.Trainers {
		if strings.TrimSpace(t.ID) == "" {
			t.ID = code(8)
		}
		trainers[i] = t
	}
	s.Trainers = trainers
	s.MonthlyFee = s.Fee()
	return s
}
