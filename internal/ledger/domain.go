// internal/ledger/domain.go
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidMethod  = errors.New("invalid payment method")
	ErrNegativeAmount = errors.New("payment amount must not be negative")
)

// Method is how a payment was collected.
type Method string

const (
	MethodCash            Method = "Dinheiro"
	MethodInstantTransfer Method = "Pix"
	MethodCard            Method = "Cartão"
)

// Methods lists every accepted payment method.
var Methods = []Method{MethodCash, MethodInstantTransfer, MethodCard}

// Valid reports whether m belongs to the closed set of methods.
func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodInstantTransfer, MethodCard:
		return true
	}
	return false
}

// UnmarshalJSON rejects methods outside the closed set.
func (m *Method) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if !Method(s).Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMethod, s)
	}
	*m = Method(s)
	return nil
}

// Payment is an immutable ledger entry. MemberID is a weak reference:
// the member may have been removed since the payment was recorded.
type Payment struct {
	ID              string          `json:"id"`
	MemberID        string          `json:"member_id"`
	MemberName      string          `json:"member_name"`
	Amount          decimal.Decimal `json:"amount"`
	OccurredAt      time.Time       `json:"occurred_at"`
	ReferencePeriod string          `json:"reference_period"`
	Method          Method          `json:"method"`
}

// ReferencePeriodFor labels t as "M/YYYY", the month/year a payment refers to.
func ReferencePeriodFor(t time.Time) string {
	return fmt.Sprintf("%d/%d", int(t.Month()), t.Year())
}

// Validate checks the amount and method of a new entry.
func Validate(amount decimal.Decimal, method Method) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}
	if !method.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMethod, method)
	}
	return nil
}
