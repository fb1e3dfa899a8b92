// internal/membership/state.go
package membership

import (
	"time"

	"github.com/shopspring/decimal"

	"gymflow/internal/ids"
	"gymflow/internal/ledger"
	"gymflow/internal/settings"
)

// State is one immutable snapshot of everything the application knows.
// Transitions return a new State and never modify the receiver's slices.
type State struct {
	Settings settings.Settings
	Members  []Member
	Payments []ledger.Payment
}

// InitialState is what a fresh installation starts from.
func InitialState() State {
	return State{Settings: settings.Default()}
}

// Register adds a new Pending member.
func (s State) Register(in RegisterInput, now time.Time, prefix string, code ids.CodeFunc) (State, Member, error) {
	m, err := Register(s.Members, in, now, prefix, code)
	if err != nil {
		return s, Member{}, err
	}
	members := make([]Member, 0, len(s.Members)+1)
	members = append(members, s.Members...)
	s.Members = append(members, m)
	return s, m, nil
}

// Activate confirms a payment for the member with the given id and records it
// in the ledger.
func (s State) Activate(id string, amount decimal.Decimal, method ledger.Method, now time.Time, code ids.CodeFunc) (State, Member, ledger.Payment, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return s, Member{}, ledger.Payment{}, ErrMemberNotFound
	}
	m, p, err := Activate(s.Members[idx], amount, method, now, code)
	if err != nil {
		return s, Member{}, ledger.Payment{}, err
	}
	members := make([]Member, len(s.Members))
	copy(members, s.Members)
	members[idx] = m
	s.Members = members
	s.Payments = ledger.Append(s.Payments, p)
	return s, m, p, nil
}

// SaveSettings replaces the settings wholesale.
func (s State) SaveSettings(next settings.Settings, code ids.CodeFunc) State {
	s.Settings = settings.Normalize(next, code)
	return s
}

func (s State) indexOf(rawID string) int {
	key := ids.Normalize(rawID)
	for i, m := range s.Members {
		if ids.Normalize(m.ID) == key {
			return i
		}
	}
	return -1
}
