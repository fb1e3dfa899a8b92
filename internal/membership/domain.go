// internal/membership/domain.go
package membership

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrPhotoRequired     = errors.New("a face photo is required for the digital access card")
	ErrNameRequired      = errors.New("name is required")
	ErrMemberNotFound    = errors.New("member not found")
	ErrInvalidTransition = errors.New("invalid lifecycle transition")
	ErrInvalidState      = errors.New("invalid lifecycle state")
	ErrIDExhausted       = errors.New("could not generate a unique member id")
	ErrRateLimited       = errors.New("rate limit exceeded")
	ErrNoRecipients      = errors.New("no recipients selected")
	ErrUnknownContact    = errors.New("unknown contact kind")
)

// LifecycleState is the member's stage in the registration/payment process.
//
// CancellationRequested is part of the persisted vocabulary, but no operation
// enters or leaves it yet. Activation refuses it rather than silently
// reviving the member.
type LifecycleState string

const (
	StatePending               LifecycleState = "Pendente"
	StateActivated             LifecycleState = "Concluído"
	StateCancellationRequested LifecycleState = "Cancelamento Solicitado"
)

// Valid reports whether s is one of the known states.
func (s LifecycleState) Valid() bool {
	switch s {
	case StatePending, StateActivated, StateCancellationRequested:
		return true
	}
	return false
}

// UnmarshalJSON rejects states outside the closed set.
func (s *LifecycleState) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if !LifecycleState(v).Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidState, v)
	}
	*s = LifecycleState(v)
	return nil
}

// Member represents a gym member. DueDate is the zero time while the member
// is Pending and a real timestamp in every other state.
type Member struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Contact      string         `json:"whatsapp"`
	BirthDate    string         `json:"birth_date"`
	Photo        string         `json:"photo"`
	State        LifecycleState `json:"state"`
	RegisteredAt time.Time      `json:"registered_at"`
	DueDate      time.Time      `json:"due_date,omitzero"`
}

// RegisterInput carries the user-supplied registration fields.
type RegisterInput struct {
	Name      string `json:"name" validate:"required"`
	Contact   string `json:"whatsapp" validate:"required"`
	BirthDate string `json:"birth_date"`
	Photo     string `json:"photo"`
}

// NotFoundName is shown in place of a member that a payment still references
// but that no longer exists.
const NotFoundName = "Aluno não localizado"

// NotFound is the placeholder a dangling member reference resolves to.
func NotFound(id string) Member {
	return Member{ID: id, Name: NotFoundName}
}
