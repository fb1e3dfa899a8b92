// internal/storage/sql.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS blobs (
		blob_key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)
`

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS blobs (
		blob_key TEXT PRIMARY KEY,
		value BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// SQL is a Store backed by a single "blobs" table in SQLite or PostgreSQL.
type SQL struct {
	db     *sql.DB
	driver Driver
	tracer trace.Tracer
}

// OpenSQLite opens (and creates if needed) a SQLite database file at path.
func OpenSQLite(ctx context.Context, path string) (*SQL, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer at a time keeps SQLite away from SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	return newSQL(ctx, db, DriverSQLite, sqliteSchema)
}

// OpenPostgres connects to PostgreSQL with a lib/pq connection string.
func OpenPostgres(ctx context.Context, dsn string) (*SQL, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres db: %w", err)
	}
	return newSQL(ctx, db, DriverPostgres, postgresSchema)
}

func newSQL(ctx context.Context, db *sql.DB, driver Driver, schema string) (*SQL, error) {
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s db: %w", driver, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create blobs table: %w", err)
	}
	return &SQL{
		db:     db,
		driver: driver,
		tracer: otel.Tracer("gymflow/storage"),
	}, nil
}

// DB exposes the connection so the journal can share it.
func (s *SQL) DB() *sql.DB { return s.db }

// Driver reports which backend s talks to.
func (s *SQL) Driver() Driver { return s.driver }

func (s *SQL) Load(ctx context.Context, key string) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "storage.load",
		trace.WithAttributes(
			attribute.String("storage.driver", string(s.driver)),
			attribute.String("storage.key", key),
		),
	)
	defer span.End()

	var blob []byte
	err := s.db.QueryRowContext(ctx, s.driver.Rebind(`SELECT value FROM blobs WHERE blob_key = ?`), key).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return nil, fmt.Errorf("load %s: %w", key, err)
	}

	span.SetAttributes(attribute.Int("storage.bytes", len(blob)))
	return blob, nil
}

func (s *SQL) Save(ctx context.Context, key string, blob []byte) error {
	ctx, span := s.tracer.Start(ctx, "storage.save",
		trace.WithAttributes(
			attribute.String("storage.driver", string(s.driver)),
			attribute.String("storage.key", key),
			attribute.Int("storage.bytes", len(blob)),
		),
	)
	defer span.End()

	_, err := s.db.ExecContext(ctx, s.driver.Rebind(`
		INSERT INTO blobs (blob_key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (blob_key) DO UPDATE
		SET value = excluded.value,
		    updated_at = excluded.updated_at
	`), key, blob, time.Now().UTC())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		if IsStorageFull(err) {
			return fmt.Errorf("save %s: %w: %v", key, ErrQuotaExceeded, err)
		}
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (s *SQL) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
