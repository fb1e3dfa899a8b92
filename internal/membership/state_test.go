package membership

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gymflow/internal/ids"
	"gymflow/internal/ledger"
	"gymflow/internal/settings"
)

func TestStateTransitionsLeavePreviousSnapshotIntact(t *testing.T) {
	now := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	code := ids.Sequence("AB12C", "PAY001")

	s0 := InitialState()
	s1, m, err := s0.Register(RegisterInput{Name: "Ana", Contact: "(79) 99999-0000", Photo: photo}, now, "UF", code)
	require.NoError(t, err)
	assert.Empty(t, s0.Members)
	require.Len(t, s1.Members, 1)
	assert.Equal(t, "UF-AB12C", m.ID)

	s2, activated, p, err := s1.Activate("uf-ab12c ", decimal.RequireFromString("80.00"), ledger.MethodInstantTransfer, now, code)
	require.NoError(t, err)
	assert.Equal(t, StatePending, s1.Members[0].State)
	assert.Empty(t, s1.Payments)
	assert.Equal(t, StateActivated, s2.Members[0].State)
	assert.Equal(t, activated, s2.Members[0])
	require.Len(t, s2.Payments, 1)
	assert.Equal(t, p, s2.Payments[0])
	assert.Equal(t, "PAY-PAY001", p.ID)
}

func TestStateActivateUnknownMember(t *testing.T) {
	s := InitialState()
	_, _, _, err := s.Activate("UF-NOPE0", decimal.NewFromInt(80), ledger.MethodCash, time.Now(), ids.RandomCode)
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestStateRegisterFailureKeepsState(t *testing.T) {
	s := InitialState()
	next, _, err := s.Register(RegisterInput{Name: "Ana", Contact: "1"}, time.Now(), "UF", ids.RandomCode)
	assert.ErrorIs(t, err, ErrPhotoRequired)
	assert.Empty(t, next.Members)
}

func TestStateSaveSettingsNormalizes(t *testing.T) {
	s := InitialState()
	edited := s.Settings
	edited.Name = "Universo Fitness Centro"
	edited.Contact = "+55 (79) 3043-7610"
	edited.Trainers = append(edited.Trainers, settings.Trainer{Name: "Bruno"})

	next := s.SaveSettings(edited, ids.Sequence("TRAINER1"))
	assert.Equal(t, "Universo Fitness Centro", next.Settings.Name)
	assert.Equal(t, "557930437610", next.Settings.Contact)
	assert.Equal(t, "TRAINER1", next.Settings.Trainers[len(next.Settings.Trainers)-1].ID)
	assert.Equal(t, settings.Default().Name, s.Settings.Name)
}
