// internal/storage/storage.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

var (
	ErrNotFound      = errors.New("blob not found")
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	ErrUnknownDriver = errors.New("unknown storage driver")
)

// Keys of the three persisted collections.
const (
	KeySettings = "gymflow_settings"
	KeyMembers  = "gymflow_members"
	KeyPayments = "gymflow_payments"
)

// Keys lists every key the application writes.
var Keys = []string{KeySettings, KeyMembers, KeyPayments}

// Store persists whole snapshots under string keys. Save overwrites.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, blob []byte) error
	Close() error
}

// Driver selects a Store backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverMemory   Driver = "memory"
)

// Rebind rewrites '?' placeholders into the driver's native form.
func (d Driver) Rebind(query string) string {
	if d != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// TxOptions returns the isolation settings used for read-check-write transactions.
func (d Driver) TxOptions() *sql.TxOptions {
	if d == DriverPostgres {
		return &sql.TxOptions{Isolation: sql.LevelSerializable}
	}
	// SQLite transactions are serializable already.
	return nil
}

// Open builds the Store for driver. dsn is a file path for SQLite and a
// connection string for PostgreSQL; it is ignored for the memory driver.
func Open(ctx context.Context, driver Driver, dsn string) (Store, error) {
	switch driver {
	case DriverSQLite:
		return OpenSQLite(ctx, dsn)
	case DriverPostgres:
		return OpenPostgres(ctx, dsn)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

const (
	sqliteFull       = 13   // SQLITE_FULL
	sqliteConstraint = 19   // SQLITE_CONSTRAINT
	pgDiskFull       = "53100"
	pgUniqueViolate  = "23505"
	pgSerialization  = "40001"
)

// sqliteCoder matches modernc.org/sqlite errors without importing its internals.
type sqliteCoder interface {
	Code() int
}

// IsStorageFull reports whether err is the database running out of space.
func IsStorageFull(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgDiskFull
	}
	var lite sqliteCoder
	if errors.As(err, &lite) {
		return lite.Code()&0xff == sqliteFull
	}
	return false
}

// IsUniqueViolation reports whether err is a primary key or unique index conflict.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgUniqueViolate
	}
	var lite sqliteCoder
	if errors.As(err, &lite) {
		return lite.Code()&0xff == sqliteConstraint
	}
	return false
}

// IsConflict reports whether err means a concurrent writer got there first:
// a unique violation, or a PostgreSQL serialization failure.
func IsConflict(err error) bool {
	if IsUniqueViolation(err) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgSerialization
}
