package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

const testDBURLKey = "ACTIVATION_TEST_DATABASE_URL"

func setupTestDatabase(t *testing.T) *sql.DB {
	t.Helper()
	connStr := os.Getenv(testDBURLKey)
	if connStr == "" {
		t.Skipf("set %s to a dedicated test database", testDBURLKey)
	}

	migrationsDir, err := filepath.Abs(filepath.Join("..", "..", "migrations"))
	require.NoError(t, err)

	m, err := migrate.New("file://"+migrationsDir, connStr)
	require.NoError(t, err)
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("migrate up: %v", err)
	}

	db, err := sql.Open("postgres", connStr)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = db.Exec("DELETE FROM config_kv")
		db.Close()
	})
	return db
}

func TestKVStoreRoundTrip(t *testing.T) {
	db := setupTestDatabase(t)
	kv := NewKVStore(db)
	ctx := context.Background()

	_, err := kv.Get(ctx, "config:technicians")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Set(ctx, "config:technicians", []byte(`["a@x.com"]`)))
	value, err := kv.Get(ctx, "config:technicians")
	require.NoError(t, err)
	require.JSONEq(t, `["a@x.com"]`, string(value))

	// Set replaces, never appends.
	require.NoError(t, kv.Set(ctx, "config:technicians", []byte(`["b@x.com"]`)))
	value, err = kv.Get(ctx, "config:technicians")
	require.NoError(t, err)
	require.JSONEq(t, `["b@x.com"]`, string(value))
}

func TestMemoryKV(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	_, err := kv.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Set(ctx, "k", []byte("v1")))
	value, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), value)

	// Mutating the returned slice must not leak into the store.
	value[0] = 'x'
	again, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), again)
}
