// internal/membership/lifecycle.go
package membership

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"gymflow/internal/ids"
	"gymflow/internal/ledger"
)

// RenewalWindow is how far each activation pushes the due date.
const RenewalWindow = 30 // days

// maxIDAttempts bounds id regeneration when a code collides with an existing member.
const maxIDAttempts = 16

var nonDigits = regexp.MustCompile(`\D`)

// NormalizeContact keeps only the digits of a phone-like handle.
func NormalizeContact(contact string) string {
	return nonDigits.ReplaceAllString(contact, "")
}

// Register creates a Pending member. existing is only consulted to avoid
// handing out an id that is already taken.
func Register(existing []Member, in RegisterInput, now time.Time, prefix string, code ids.CodeFunc) (Member, error) {
	if strings.TrimSpace(in.Photo) == "" {
		return Member{}, ErrPhotoRequired
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Member{}, ErrNameRequired
	}

	taken := lo.SliceToMap(existing, func(m Member) (string, struct{}) {
		return ids.Normalize(m.ID), struct{}{}
	})
	var id string
	for attempt := 0; ; attempt++ {
		if attempt == maxIDAttempts {
			return Member{}, ErrIDExhausted
		}
		id = ids.Member(prefix, code)
		if _, dup := taken[id]; !dup {
			break
		}
	}

	return Member{
		ID:           id,
		Name:         name,
		Contact:      NormalizeContact(in.Contact),
		BirthDate:    strings.TrimSpace(in.BirthDate),
		Photo:        in.Photo,
		State:        StatePending,
		RegisteredAt: now,
	}, nil
}

// Activate confirms a payment for m. It serves both the first activation of a
// Pending member and the monthly renewal of an Activated one: a new ledger
// entry is produced and the due date moves to now + RenewalWindow days.
func Activate(m Member, amount decimal.Decimal, method ledger.Method, now time.Time, code ids.CodeFunc) (Member, ledger.Payment, error) {
	switch m.State {
	case StatePending, StateActivated:
	default:
		return Member{}, ledger.Payment{}, fmt.Errorf("%w: cannot activate member %s in state %q", ErrInvalidTransition, m.ID, m.State)
	}
	if err := ledger.Validate(amount, method); err != nil {
		return Member{}, ledger.Payment{}, err
	}

	payment := ledger.Payment{
		ID:              ids.Payment(code),
		MemberID:        m.ID,
		MemberName:      m.Name,
		Amount:          amount,
		OccurredAt:      now,
		ReferencePeriod: ledger.ReferencePeriodFor(now),
		Method:          method,
	}

	m.State = StateActivated
	m.DueDate = now.AddDate(0, 0, RenewalWindow)
	return m, payment, nil
}
