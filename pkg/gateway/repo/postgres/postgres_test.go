package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	assert.Equal(t,
		"UPDATE news SET title = $1, content = $2 WHERE id = $3",
		rebind("UPDATE news SET title = ?, content = ? WHERE id = ?"))
}

func TestHandlePostgresError(t *testing.T) {
	err := handlePostgresError("migrate", &pgconn.PgError{Code: "42P01", Message: "relation does not exist"})
	assert.Contains(t, err.Error(), "migration required")

	err = handlePostgresError("query", &pgconn.PgError{Code: "XX000", Message: "boom"})
	assert.Equal(t, "database error in query: boom (code: XX000)", err.Error())
}

// newTestStore connects to TEST_DATABASE_URL, skipping when it is unset.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := Connect(ctx, url, "")
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	store := NewWithPool(pool)
	require.NoError(t, store.Migrate(ctx))
	_, err = pool.Exec(ctx, "TRUNCATE news RESTART IDENTITY")
	require.NoError(t, err)
	return store
}

func TestStore_Roundtrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	res, err := store.Execute(ctx,
		`INSERT INTO news (title, content, date, created_at, updated_at) VALUES (?, ?, ?, ?, ?) RETURNING id`,
		"A", "B", "2026-01-02", "2026-01-02T03:04:05.000000Z", "2026-01-02T03:04:05.000000Z")
	require.NoError(t, err)
	require.True(t, res.Success)

	rows, err := store.Query(ctx, `SELECT id, title FROM news WHERE id = ?`, res.LastInsertID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "A", rows[0]["title"])

	res, err = store.Execute(ctx, `DELETE FROM news WHERE id = ?`, res.LastInsertID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.RowsAffected)
}
