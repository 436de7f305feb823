package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_ExecuteAndQuery(t *testing.T) {
	store := openMemory(t)
	ctx := context.Background()

	res, err := store.Execute(ctx,
		`INSERT INTO news (title, content, date, created_at, updated_at) VALUES (?, ?, ?, ?, ?) RETURNING id`,
		"A", "B", "2026-01-02", "2026-01-02T03:04:05.000000Z", "2026-01-02T03:04:05.000000Z")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, int64(1), res.LastInsertID)

	rows, err := store.Query(ctx, `SELECT id, title, content, date, created_at, updated_at FROM news WHERE id = ?`, res.LastInsertID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0]["id"])
	assert.Equal(t, "A", rows[0]["title"])
	assert.Equal(t, "2026-01-02T03:04:05.000000Z", rows[0]["created_at"])

	res, err = store.Execute(ctx, `UPDATE news SET title = ? WHERE id = ?`, "C", int64(1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.RowsAffected)

	res, err = store.Execute(ctx, `DELETE FROM news WHERE id = ?`, int64(42))
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.RowsAffected)
}

func TestStore_RejectsEmptyTitle(t *testing.T) {
	store := openMemory(t)
	_, err := store.Execute(context.Background(),
		`INSERT INTO news (title, content, date, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		"", "B", "d", "c", "u")
	assert.Error(t, err)
}

func TestStore_QueryError(t *testing.T) {
	store := openMemory(t)
	_, err := store.Query(context.Background(), `SELECT * FROM missing_table`)
	assert.Error(t, err)
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gateway.db")
	ctx := context.Background()

	store, err := Open(ctx, path)
	require.NoError(t, err)
	_, err = store.Execute(ctx,
		`INSERT INTO news (title, content, date, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		"A", "B", "d", "c", "u")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()
	rows, err := reopened.Query(ctx, `SELECT title FROM news`)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "A", rows[0]["title"])
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.Error(t, err)
}
