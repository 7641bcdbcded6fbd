package inbox

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zootrail/zootrail/internal/client/repositories/metadata"

	_ "modernc.org/sqlite"
)

func setupInbox(t *testing.T) *Inbox {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE metadata (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);`)
	require.NoError(t, err)
	return New(metadata.NewSQLiteRepository(db))
}

func TestConsume_EmptyWhenNothingPending(t *testing.T) {
	i := setupInbox(t)

	msg, err := i.Consume(context.Background())
	require.NoError(t, err)
	require.Empty(t, msg)
}

func TestPostThenConsume_DeliversExactlyOnce(t *testing.T) {
	i := setupInbox(t)
	ctx := context.Background()

	require.NoError(t, i.Post(ctx, "Password changed. Please sign in again."))

	msg, err := i.Consume(ctx)
	require.NoError(t, err)
	require.Equal(t, "Password changed. Please sign in again.", msg)

	msg, err = i.Consume(ctx)
	require.NoError(t, err)
	require.Empty(t, msg)
}

func TestPost_ReplacesPendingNotice(t *testing.T) {
	i := setupInbox(t)
	ctx := context.Background()

	require.NoError(t, i.Post(ctx, "first"))
	require.NoError(t, i.Post(ctx, "second"))

	msg, err := i.Consume(ctx)
	require.NoError(t, err)
	require.Equal(t, "second", msg)
}
