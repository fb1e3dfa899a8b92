package membership

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gymflow/internal/ids"
	"gymflow/internal/ledger"
)

const photo = "data:image/jpeg;base64,/9j/4AAQSkZJRg=="

func TestRegister(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	m, err := Register(nil, RegisterInput{
		Name:      " Ana ",
		Contact:   "(79) 99999-0000",
		BirthDate: "1990-01-01",
		Photo:     photo,
	}, now, "UF", ids.Sequence("AB12C"))
	require.NoError(t, err)

	assert.Equal(t, "UF-AB12C", m.ID)
	assert.Equal(t, "Ana", m.Name)
	assert.Equal(t, "79999990000", m.Contact)
	assert.Equal(t, StatePending, m.State)
	assert.True(t, m.DueDate.IsZero())
	assert.Equal(t, now, m.RegisteredAt)
}

func TestRegisterRequiresPhoto(t *testing.T) {
	for _, p := range []string{"", "   "} {
		_, err := Register(nil, RegisterInput{Name: "Ana", Contact: "5599", Photo: p}, time.Now(), "UF", ids.RandomCode)
		assert.ErrorIs(t, err, ErrPhotoRequired)
	}
}

func TestRegisterRequiresName(t *testing.T) {
	_, err := Register(nil, RegisterInput{Name: "  ", Photo: photo}, time.Now(), "UF", ids.RandomCode)
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestRegisterRetriesOnCollision(t *testing.T) {
	existing := []Member{{ID: "UF-AAAAA"}, {ID: "uf-bbbbb"}}
	m, err := Register(existing, RegisterInput{Name: "Ana", Photo: photo}, time.Now(), "UF",
		ids.Sequence("AAAAA", "BBBBB", "CCCCC"))
	require.NoError(t, err)
	assert.Equal(t, "UF-CCCCC", m.ID)

	_, err = Register(existing, RegisterInput{Name: "Ana", Photo: photo}, time.Now(), "UF", ids.Sequence("AAAAA"))
	assert.ErrorIs(t, err, ErrIDExhausted)
}

func TestActivatePending(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	member := Member{ID: "UF-AB12C", Name: "Ana", State: StatePending, RegisteredAt: now.AddDate(0, 0, -1)}
	amount := decimal.RequireFromString("80.00")

	got, payment, err := Activate(member, amount, ledger.MethodInstantTransfer, now, ids.Sequence("PX0001"))
	require.NoError(t, err)

	assert.Equal(t, StateActivated, got.State)
	assert.Equal(t, now.AddDate(0, 0, 30), got.DueDate)
	assert.Equal(t, member.RegisteredAt, got.RegisteredAt)

	assert.Equal(t, "PAY-PX0001", payment.ID)
	assert.Equal(t, member.ID, payment.MemberID)
	assert.Equal(t, "Ana", payment.MemberName)
	assert.True(t, amount.Equal(payment.Amount))
	assert.Equal(t, ledger.MethodInstantTransfer, payment.Method)
	assert.Equal(t, now, payment.OccurredAt)
	assert.Equal(t, "3/2024", payment.ReferencePeriod)

	// The input value is untouched.
	assert.Equal(t, StatePending, member.State)
}

func TestActivateRenewalAdvancesDueDate(t *testing.T) {
	first := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	member := Member{ID: "UF-AB12C", State: StatePending}

	active, _, err := Activate(member, decimal.NewFromInt(80), ledger.MethodCash, first, ids.RandomCode)
	require.NoError(t, err)

	renewedAt := first.AddDate(0, 0, 28)
	renewed, payment, err := Activate(active, decimal.NewFromInt(80), ledger.MethodCard, renewedAt, ids.RandomCode)
	require.NoError(t, err)
	assert.Equal(t, StateActivated, renewed.State)
	assert.True(t, renewed.DueDate.After(active.DueDate))
	assert.Equal(t, renewedAt.AddDate(0, 0, 30), renewed.DueDate)
	assert.Equal(t, ledger.MethodCard, payment.Method)
}

func TestActivateRejects(t *testing.T) {
	now := time.Now()
	cancelled := Member{ID: "UF-AB12C", State: StateCancellationRequested, DueDate: now}
	_, _, err := Activate(cancelled, decimal.NewFromInt(80), ledger.MethodCash, now, ids.RandomCode)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	pending := Member{ID: "UF-AB12C", State: StatePending}
	_, _, err = Activate(pending, decimal.NewFromInt(-1), ledger.MethodCash, now, ids.RandomCode)
	assert.ErrorIs(t, err, ledger.ErrNegativeAmount)

	_, _, err = Activate(pending, decimal.NewFromInt(80), ledger.Method("Boleto"), now, ids.RandomCode)
	assert.ErrorIs(t, err, ledger.ErrInvalidMethod)
}
