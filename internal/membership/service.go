// internal/membership/service.go
package membership

import (
	"context"

	"github.com/shopspring/decimal"

	"gymflow/internal/journal"
	"gymflow/internal/ledger"
	"gymflow/internal/notify"
	"gymflow/internal/settings"
)

// Service defines the interface for the membership service.
type Service interface {
	// Public surface.
	Site(ctx context.Context) settings.Public
	Register(ctx context.Context, in RegisterInput) (Registration, error)
	Profile(ctx context.Context, rawID string) (Profile, error)
	Contact(ctx context.Context, rawID string, kind ContactKind) (notify.Message, error)

	// Admin surface.
	Dashboard(ctx context.Context) Dashboard
	Roster(ctx context.Context, filter Filter, search string) []RosterEntry
	Activate(ctx context.Context, rawID string, amount decimal.Decimal, method ledger.Method) (Activation, error)
	Reminder(ctx context.Context, rawID string) (notify.Message, error)
	Broadcast(ctx context.Context, purpose settings.Purpose, memberIDs []string) (BroadcastResult, error)
	History(ctx context.Context, rawID string) ([]journal.Event, error)
	Finance(ctx context.Context) Finance
	Settings(ctx context.Context) settings.Settings
	SaveSettings(ctx context.Context, next settings.Settings) (SettingsUpdate, error)
}

// Journal is the audit trail the service appends lifecycle events to.
type Journal interface {
	Record(ctx context.Context, aggregateID, aggregateType, eventType string, data any) error
	Load(ctx context.Context, aggregateID string) ([]journal.Event, error)
}

// ContactKind selects a member-to-owner message.
type ContactKind string

const (
	ContactReceipt ContactKind = "receipt"
	ContactSupport ContactKind = "support"
)
