package searches

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE recent_searches (
  query       TEXT PRIMARY KEY,
  searched_at TIMESTAMP NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func TestAddAndRecent_NewestFirst(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	clock := base
	r.now = func() time.Time { return clock }

	for _, q := range []string{"lions", "penguins", "red pandas"} {
		require.NoError(t, r.Add(ctx, q))
		clock = clock.Add(time.Minute)
	}

	got, err := r.Recent(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, []string{"red pandas", "penguins", "lions"}, got)
}

func TestAdd_RepeatBumpsToFront(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	clock := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }

	require.NoError(t, r.Add(ctx, "lions"))
	clock = clock.Add(time.Minute)
	require.NoError(t, r.Add(ctx, "penguins"))
	clock = clock.Add(time.Minute)
	require.NoError(t, r.Add(ctx, "lions"))

	got, err := r.Recent(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, []string{"lions", "penguins"}, got)
}

func TestRecent_RespectsLimit(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	clock := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }

	for _, q := range []string{"a", "b", "c", "d"} {
		require.NoError(t, r.Add(ctx, q))
		clock = clock.Add(time.Second)
	}

	got, err := r.Recent(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"d", "c"}, got)
}

func TestClear(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Add(ctx, "lions"))
	require.NoError(t, r.Clear(ctx))

	got, err := r.Recent(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, got)
}
