// internal/journal/journal.go
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"gymflow/internal/storage"
)

var (
	ErrConcurrencyConflict = errors.New("concurrency conflict: version mismatch")
	ErrEmptyAppend         = errors.New("no events to append")
)

// Aggregate types recorded in the journal.
const (
	AggregateMember   = "member"
	AggregateSettings = "settings"
)

// Event types recorded in the journal.
const (
	MemberRegistered = "MemberRegistered"
	MemberActivated  = "MemberActivated"
	MemberRenewed    = "MemberRenewed"
	SettingsSaved    = "SettingsSaved"
)

// Event is one entry of an aggregate's history.
type Event struct {
	ID            int64           `json:"id"`
	EventID       uuid.UUID       `json:"event_id"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	EventType     string          `json:"event_type"`
	EventData     json.RawMessage `json:"event_data"`
	Version       int             `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
}

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS journal (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_id TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		aggregate_type TEXT NOT NULL,
		event_type TEXT NOT NULL,
		event_data TEXT NOT NULL,
		version INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL,
		UNIQUE (aggregate_id, version)
	)
`

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS journal (
		id BIGSERIAL PRIMARY KEY,
		event_id UUID NOT NULL,
		aggregate_id TEXT NOT NULL,
		aggregate_type TEXT NOT NULL,
		event_type TEXT NOT NULL,
		event_data JSONB NOT NULL,
		version INT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (aggregate_id, version)
	)
`

// Journal is an append-only, per-aggregate event log with optimistic
// version checks. It shares the blob store's database.
type Journal struct {
	db     *sql.DB
	driver storage.Driver
	tracer trace.Tracer
	now    func() time.Time
}

// New prepares the journal table on db.
func New(ctx context.Context, db *sql.DB, driver storage.Driver) (*Journal, error) {
	schema := sqliteSchema
	if driver == storage.DriverPostgres {
		schema = postgresSchema
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("create journal table: %w", err)
	}
	return &Journal{
		db:     db,
		driver: driver,
		tracer: otel.Tracer("gymflow/journal"),
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// Append atomically appends events after expectedVersion. It fails with
// ErrConcurrencyConflict when the aggregate has moved on.
func (j *Journal) Append(ctx context.Context, aggregateID, aggregateType string, expectedVersion int, events []Event) error {
	ctx, span := j.tracer.Start(ctx, "journal.append",
		trace.WithAttributes(
			attribute.String("aggregate.id", aggregateID),
			attribute.String("aggregate.type", aggregateType),
			attribute.Int("expected.version", expectedVersion),
			attribute.Int("event.count", len(events)),
		),
	)
	defer span.End()

	if len(events) == 0 {
		return ErrEmptyAppend
	}

	tx, err := j.db.BeginTx(ctx, j.driver.TxOptions())
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var currentVersion int
	err = tx.QueryRowContext(ctx, j.driver.Rebind(`
		SELECT COALESCE(MAX(version), 0)
		FROM journal
		WHERE aggregate_id = ?
	`), aggregateID).Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("query current version: %w", err)
	}

	if currentVersion != expectedVersion {
		span.SetAttributes(
			attribute.Int("actual.version", currentVersion),
			attribute.Bool("conflict.detected", true),
		)
		return ErrConcurrencyConflict
	}

	stmt, err := tx.PrepareContext(ctx, j.driver.Rebind(`
		INSERT INTO journal (event_id, aggregate_id, aggregate_type, event_type, event_data, version, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`))
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, event := range events {
		version := expectedVersion + i + 1
		eventID := event.EventID
		if eventID == uuid.Nil {
			eventID = uuid.New()
		}
		data := event.EventData
		if len(data) == 0 {
			data = json.RawMessage(`{}`)
		}

		_, err = stmt.ExecContext(ctx,
			eventID.String(),
			aggregateID,
			aggregateType,
			event.EventType,
			string(data),
			version,
			j.now(),
		)
		if err != nil {
			if storage.IsConflict(err) {
				return ErrConcurrencyConflict
			}
			return fmt.Errorf("insert event %d: %w", i, err)
		}

		span.AddEvent("event.appended", trace.WithAttributes(
			attribute.Int("event.version", version),
			attribute.String("event.type", event.EventType),
		))
	}

	if err := tx.Commit(); err != nil {
		if storage.IsConflict(err) {
			return ErrConcurrencyConflict
		}
		return fmt.Errorf("commit transaction: %w", err)
	}

	span.SetAttributes(attribute.Bool("append.success", true))
	return nil
}

// Record appends a single event with data marshaled to JSON, reading the
// current version first.
func (j *Journal) Record(ctx context.Context, aggregateID, aggregateType, eventType string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}
	version, err := j.CurrentVersion(ctx, aggregateID)
	if err != nil {
		return err
	}
	return j.Append(ctx, aggregateID, aggregateType, version, []Event{{
		EventType: eventType,
		EventData: payload,
	}})
}

// Load returns the aggregate's events in version order.
func (j *Journal) Load(ctx context.Context, aggregateID string) ([]Event, error) {
	ctx, span := j.tracer.Start(ctx, "journal.load",
		trace.WithAttributes(attribute.String("aggregate.id", aggregateID)),
	)
	defer span.End()

	rows, err := j.db.QueryContext(ctx, j.driver.Rebind(`
		SELECT id, event_id, aggregate_id, aggregate_type, event_type, event_data, version, created_at
		FROM journal
		WHERE aggregate_id = ?
		ORDER BY version ASC
	`), aggregateID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			event   Event
			eventID string
			data    string
		)
		err := rows.Scan(
			&event.ID,
			&eventID,
			&event.AggregateID,
			&event.AggregateType,
			&event.EventType,
			&data,
			&event.Version,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if event.EventID, err = uuid.Parse(eventID); err != nil {
			return nil, fmt.Errorf("parse event id: %w", err)
		}
		event.EventData = json.RawMessage(data)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	span.SetAttributes(attribute.Int("events.loaded", len(events)))
	return events, nil
}

// CurrentVersion returns the latest version recorded for an aggregate, 0 if none.
func (j *Journal) CurrentVersion(ctx context.Context, aggregateID string) (int, error) {
	ctx, span := j.tracer.Start(ctx, "journal.current_version",
		trace.WithAttributes(attribute.String("aggregate.id", aggregateID)),
	)
	defer span.End()

	var version int
	err := j.db.QueryRowContext(ctx, j.driver.Rebind(`
		SELECT COALESCE(MAX(version), 0)
		FROM journal
		WHERE aggregate_id = ?
	`), aggregateID).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("query version: %w", err)
	}

	span.SetAttributes(attribute.Int("current.version", version))
	return version, nil
}
