package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the behavior every backend must share.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Load(ctx, KeyMembers)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(ctx, KeyMembers, []byte(`[{"id":"UF-AAAAA"}]`)))
	got, err := store.Load(ctx, KeyMembers)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"UF-AAAAA"}]`, string(got))

	// Saving overwrites the whole snapshot.
	require.NoError(t, store.Save(ctx, KeyMembers, []byte(`[]`)))
	got, err = store.Load(ctx, KeyMembers)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	// Keys are independent.
	_, err = store.Load(ctx, KeyPayments)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMemoryFailWrites(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	boom := errors.New("boom")
	m.FailWrites(boom)
	assert.ErrorIs(t, m.Save(ctx, KeySettings, []byte(`{}`)), boom)
	m.FailWrites(nil)
	assert.NoError(t, m.Save(ctx, KeySettings, []byte(`{}`)))
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gymflow.db")
	store, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, DriverSQLite, store.Driver())
	exerciseStore(t, store)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "gymflow.db")

	store, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, KeySettings, []byte(`{"name":"Universo"}`)))
	require.NoError(t, store.Close())

	store, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer store.Close()
	got, err := store.Load(ctx, KeySettings)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Universo"}`, string(got))
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("GYMFLOW_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("GYMFLOW_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	store, err := OpenPostgres(ctx, dsn)
	if err != nil {
		t.Skipf("could not connect to postgres: %v", err)
	}
	defer store.Close()
	_, err = store.DB().ExecContext(ctx, `DELETE FROM blobs`)
	require.NoError(t, err)

	exerciseStore(t, store)
}

func TestQuota(t *testing.T) {
	ctx := context.Background()
	inner := NewMemory()
	require.NoError(t, inner.Save(ctx, KeySettings, make([]byte, 40)))

	q, err := NewQuota(ctx, inner, 100, Keys...)
	require.NoError(t, err)
	assert.EqualValues(t, 40, q.Used())

	require.NoError(t, q.Save(ctx, KeyMembers, make([]byte, 60)))
	assert.EqualValues(t, 100, q.Used())

	err = q.Save(ctx, KeyPayments, make([]byte, 1))
	require.ErrorIs(t, err, ErrQuotaExceeded)
	_, err = inner.Load(ctx, KeyPayments)
	assert.ErrorIs(t, err, ErrNotFound, "rejected write must not reach the store")

	// Shrinking an existing key frees room.
	require.NoError(t, q.Save(ctx, KeyMembers, make([]byte, 10)))
	require.NoError(t, q.Save(ctx, KeyPayments, make([]byte, 50)))
	assert.EqualValues(t, 100, q.Used())
}

type fakeSQLiteError struct{ code int }

func (e fakeSQLiteError) Error() string { return fmt.Sprintf("sqlite error %d", e.code) }
func (e fakeSQLiteError) Code() int     { return e.code }

func TestErrorClassification(t *testing.T) {
	assert.True(t, IsStorageFull(&pq.Error{Code: "53100"}))
	assert.True(t, IsStorageFull(fmt.Errorf("wrapped: %w", fakeSQLiteError{code: 13})))
	assert.False(t, IsStorageFull(errors.New("other")))

	assert.True(t, IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.True(t, IsUniqueViolation(fakeSQLiteError{code: 2067}))
	assert.False(t, IsUniqueViolation(fakeSQLiteError{code: 13}))

	assert.True(t, IsConflict(&pq.Error{Code: "40001"}))
	assert.True(t, IsConflict(&pq.Error{Code: "23505"}))
	assert.False(t, IsConflict(&pq.Error{Code: "53100"}))
}

func TestRebind(t *testing.T) {
	q := `SELECT a FROM t WHERE b = ? AND c = ?`
	assert.Equal(t, q, DriverSQLite.Rebind(q))
	assert.Equal(t, `SELECT a FROM t WHERE b = $1 AND c = $2`, DriverPostgres.Rebind(q))
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Driver("mongo"), "")
	assert.ErrorIs(t, err, ErrUnknownDriver)
}
