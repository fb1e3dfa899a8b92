// internal/membership/implementation.go
package membership

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"

	"gymflow/internal/ids"
	"gymflow/internal/journal"
	"gymflow/internal/ledger"
	"gymflow/internal/logger"
	"gymflow/internal/notify"
	"gymflow/internal/settings"
	"gymflow/internal/storage"
)

// Options wires a service. Store and Log are required.
type Options struct {
	Store   storage.Store
	Journal Journal
	Log     *logger.Logger

	Clock    func() time.Time
	Location *time.Location
	IDPrefix string
	Codes    ids.CodeFunc

	RegistrationLimit rate.Limit
	RegistrationBurst int
}

// service implements the Service interface. All reads and writes go through
// mu, so each operation runs to completion against a single snapshot.
type service struct {
	mu    sync.Mutex
	state State

	store   storage.Store
	journal Journal
	log     *logger.Logger

	clock   func() time.Time
	loc     *time.Location
	prefix  string
	codes   ids.CodeFunc
	limiter *rate.Limiter

	registrations   metric.Int64Counter
	activations     metric.Int64Counter
	storageFailures metric.Int64Counter
}

// NewService loads the persisted snapshots and returns a ready service.
// Missing keys start from the defaults.
func NewService(ctx context.Context, opts Options) (Service, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("membership service requires a store")
	}
	s := &service{
		store:   opts.Store,
		journal: opts.Journal,
		log:     opts.Log,
		clock:   opts.Clock,
		loc:     opts.Location,
		prefix:  opts.IDPrefix,
		codes:   opts.Codes,
		limiter: rate.NewLimiter(rate.Every(1*time.Minute), 5), // 5 registrations per minute
	}
	if s.log == nil {
		s.log = logger.NewNop()
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.prefix == "" {
		s.prefix = "UF"
	}
	if s.codes == nil {
		s.codes = ids.RandomCode
	}
	if opts.RegistrationLimit > 0 && opts.RegistrationBurst > 0 {
		s.limiter = rate.NewLimiter(opts.RegistrationLimit, opts.RegistrationBurst)
	}

	meter := otel.Meter("gymflow/membership")
	var err error
	if s.registrations, err = meter.Int64Counter("gymflow.registrations"); err != nil {
		return nil, fmt.Errorf("create registrations counter: %w", err)
	}
	if s.activations, err = meter.Int64Counter("gymflow.activations"); err != nil {
		return nil, fmt.Errorf("create activations counter: %w", err)
	}
	if s.storageFailures, err = meter.Int64Counter("gymflow.storage.failures"); err != nil {
		return nil, fmt.Errorf("create storage failures counter: %w", err)
	}

	state, err := loadState(ctx, s.store)
	if err != nil {
		return nil, err
	}
	s.state = state
	s.log.Infow("state loaded",
		"members", len(state.Members),
		"payments", len(state.Payments),
	)
	return s, nil
}

func loadState(ctx context.Context, store storage.Store) (State, error) {
	state := InitialState()
	if err := loadKey(ctx, store, storage.KeySettings, &state.Settings); err != nil {
		return State{}, err
	}
	if err := loadKey(ctx, store, storage.KeyMembers, &state.Members); err != nil {
		return State{}, err
	}
	if err := loadKey(ctx, store, storage.KeyPayments, &state.Payments); err != nil {
		return State{}, err
	}
	return state, nil
}

// loadKey decodes the blob under key into v, leaving v untouched when the key
// was never written.
func loadKey(ctx context.Context, store storage.Store, key string, v any) error {
	blob, err := store.Load(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(blob, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *service) now() time.Time {
	return s.clock().In(s.loc)
}

// persist mirrors one collection to the store. Failures never undo the
// in-memory change; they come back as an alert for the operator.
// The write outlives a caller that hangs up.
func (s *service) persist(ctx context.Context, key string, v any) []Alert {
	ctx = context.WithoutCancel(ctx)
	blob, err := json.Marshal(v)
	if err == nil {
		err = s.store.Save(ctx, key, blob)
	}
	if err == nil {
		return nil
	}

	s.storageFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("storage.key", key)))
	if errors.Is(err, storage.ErrQuotaExceeded) {
		s.log.Warnw("storage quota exceeded", "key", key, "bytes", len(blob), "error", err)
		return []Alert{{Key: key, Message: QuotaAlertMessage}}
	}
	s.log.Errorw("failed to persist snapshot", "key", key, "error", err)
	return []Alert{{Key: key, Message: SaveAlertMessage}}
}

// record appends to the journal, best effort.
func (s *service) record(ctx context.Context, aggregateID, aggregateType, eventType string, data any) {
	if s.journal == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	if err := s.journal.Record(ctx, aggregateID, aggregateType, eventType, data); err != nil {
		s.log.Warnw("failed to append journal event",
			"aggregate_id", aggregateID,
			"event_type", eventType,
			"error", err,
		)
	}
}

func (s *service) values(m Member) notify.Values {
	return notify.Values{
		notify.Name:     m.Name,
		notify.DueDate:  FormatDate(m.DueDate, s.loc),
		notify.WhatsApp: m.Contact,
		notify.ID:       m.ID,
	}
}

// compose renders an automatic message. A failure is logged and yields nil,
// since the operation that triggered it has already succeeded.
func (s *service) compose(destination, template string, m Member) *notify.Message {
	msg, err := notify.Compose(destination, template, s.values(m))
	if err != nil {
		s.log.Warnw("could not compose message", "member_id", m.ID, "error", err)
		return nil
	}
	return &msg
}

func (s *service) Site(ctx context.Context) settings.Public {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Settings.Public()
}

// Register signs up a new member. Only valid registrations count against
// the rate limit.
func (s *service) Register(ctx context.Context, in RegisterInput) (Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, m, err := s.state.Register(in, s.now(), s.prefix, s.codes)
	if err != nil {
		return Registration{}, err
	}
	if !s.limiter.Allow() {
		return Registration{}, ErrRateLimited
	}
	s.state = next
	s.registrations.Add(ctx, 1)
	s.log.Infow("member registered", "member_id", m.ID)

	alerts := s.persist(ctx, storage.KeyMembers, s.state.Members)
	s.record(ctx, m.ID, journal.AggregateMember, journal.MemberRegistered, map[string]any{
		"name":          m.Name,
		"whatsapp":      m.Contact,
		"registered_at": m.RegisteredAt,
	})

	return Registration{
		Member:     m,
		OwnerAlert: s.compose(s.state.Settings.Contact, s.state.Settings.Templates.NewRegistration, m),
		Alerts:     alerts,
	}, nil
}

func (s *service) Profile(ctx context.Context, rawID string) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := Lookup(s.state.Members, rawID)
	if !ok {
		return Profile{}, ErrMemberNotFound
	}
	return buildProfile(s.state, m, s.now()), nil
}

// Contact builds a message from the member to the owner.
func (s *service) Contact(ctx context.Context, rawID string, kind ContactKind) (notify.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := Lookup(s.state.Members, rawID)
	if !ok {
		return notify.Message{}, ErrMemberNotFound
	}
	owner := s.state.Settings.OwnerName
	var text string
	switch kind {
	case ContactReceipt:
		text = fmt.Sprintf("Olá %s! 👋 Me chamo %s (ID: %s). Gostaria de enviar meu comprovante para ativar o acesso!", owner, m.Name, m.ID)
	case ContactSupport:
		text = fmt.Sprintf("Olá %s, preciso de uma ajuda com minha matrícula %s.", owner, m.ID)
	default:
		return notify.Message{}, fmt.Errorf("%w: %q", ErrUnknownContact, kind)
	}
	return notify.Plain(s.state.Settings.Contact, text)
}

func (s *service) Dashboard(ctx context.Context) Dashboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return buildDashboard(s.state, s.now())
}

func (s *service) Roster(ctx context.Context, filter Filter, search string) []RosterEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	return buildRoster(Select(s.state.Members, filter, search, now), now)
}

// Activate confirms a payment, either the first one or a renewal.
func (s *service) Activate(ctx context.Context, rawID string, amount decimal.Decimal, method ledger.Method) (Activation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := Lookup(s.state.Members, rawID)
	if !ok {
		return Activation{}, ErrMemberNotFound
	}
	now := s.now()
	next, m, p, err := s.state.Activate(prev.ID, amount, method, now, s.codes)
	if err != nil {
		return Activation{}, err
	}
	s.state = next

	renewal := prev.State == StateActivated
	eventType := journal.MemberActivated
	if renewal {
		eventType = journal.MemberRenewed
	}
	s.activations.Add(ctx, 1, metric.WithAttributes(attribute.Bool("renewal", renewal)))
	s.log.Infow("payment confirmed",
		"member_id", m.ID,
		"payment_id", p.ID,
		"amount", p.Amount.StringFixed(2),
		"method", p.Method,
		"renewal", renewal,
	)

	alerts := s.persist(ctx, storage.KeyMembers, s.state.Members)
	alerts = append(alerts, s.persist(ctx, storage.KeyPayments, s.state.Payments)...)
	s.record(ctx, m.ID, journal.AggregateMember, eventType, map[string]any{
		"payment_id": p.ID,
		"amount":     p.Amount,
		"method":     p.Method,
		"due_date":   m.DueDate,
	})

	return Activation{
		Member:  m,
		Status:  Evaluate(m, now),
		Payment: p,
		Renewal: renewal,
		Welcome: s.compose(m.Contact, s.state.Settings.Templates.Welcome, m),
		Alerts:  alerts,
	}, nil
}

// Reminder renders the billing message for one member.
func (s *service) Reminder(ctx context.Context, rawID string) (notify.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := Lookup(s.state.Members, rawID)
	if !ok {
		return notify.Message{}, ErrMemberNotFound
	}
	return notify.Compose(m.Contact, s.state.Settings.Templates.Billing, s.values(m))
}

// Broadcast renders the template for purpose once per selected member.
func (s *service) Broadcast(ctx context.Context, purpose settings.Purpose, memberIDs []string) (BroadcastResult, error) {
	memberIDs = lo.Uniq(lo.Map(memberIDs, func(id string, _ int) string { return ids.Normalize(id) }))
	memberIDs = lo.Compact(memberIDs)
	if len(memberIDs) == 0 {
		return BroadcastResult{}, ErrNoRecipients
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	template, err := s.state.Settings.Templates.For(purpose)
	if err != nil {
		return BroadcastResult{}, err
	}

	result := BroadcastResult{Messages: []notify.Message{}}
	for _, id := range memberIDs {
		m, ok := Lookup(s.state.Members, id)
		if !ok {
			result.Missing = append(result.Missing, id)
			continue
		}
		msg, err := notify.Compose(m.Contact, template, s.values(m))
		if err != nil {
			return BroadcastResult{}, fmt.Errorf("compose message for %s: %w", m.ID, err)
		}
		result.Messages = append(result.Messages, msg)
	}
	return result, nil
}

// History returns the journal of one member. Without a journal it is empty.
func (s *service) History(ctx context.Context, rawID string) ([]journal.Event, error) {
	s.mu.Lock()
	m, ok := Lookup(s.state.Members, rawID)
	s.mu.Unlock()
	if !ok {
		return nil, ErrMemberNotFound
	}
	if s.journal == nil {
		return []journal.Event{}, nil
	}
	events, err := s.journal.Load(ctx, m.ID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if events == nil {
		events = []journal.Event{}
	}
	return events, nil
}

func (s *service) Finance(ctx context.Context) Finance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return buildFinance(s.state, s.now())
}

func (s *service) Settings(ctx context.Context) settings.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Settings
}

// SaveSettings replaces the settings as a whole.
func (s *service) SaveSettings(ctx context.Context, next settings.Settings) (SettingsUpdate, error) {
	if strings.TrimSpace(next.Name) == "" {
		return SettingsUpdate{}, fmt.Errorf("%w: organization name", settings.ErrInvalid)
	}
	if next.MonthlyFee.IsNegative() {
		return SettingsUpdate{}, fmt.Errorf("%w: negative monthly fee", settings.ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = s.state.SaveSettings(next, s.codes)
	s.log.Infow("settings saved", "name", s.state.Settings.Name)

	alerts := s.persist(ctx, storage.KeySettings, s.state.Settings)
	s.record(ctx, "settings", journal.AggregateSettings, journal.SettingsSaved, s.state.Settings.Public())

	return SettingsUpdate{Settings: s.state.Settings, Alerts: alerts}, nil
}
