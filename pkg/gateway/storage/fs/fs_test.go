package fs_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-gateway/pkg/gateway"
	fsstorage "github.com/tendant/simple-gateway/pkg/gateway/storage/fs"
)

func TestFSBackend(t *testing.T) {
	dir := t.TempDir()
	backend, err := fsstorage.New(fsstorage.Config{BaseDir: dir})
	require.NoError(t, err)

	ctx := context.Background()
	key := "1700000000000-my-photo.jpg"
	content := "jpeg bytes"

	info, err := backend.Put(ctx, key, strings.NewReader(content), gateway.PutOptions{ContentType: "image/jpeg"})
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), info.Size)
	assert.Len(t, info.ETag, 32)

	blob, err := backend.Get(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(blob.Body)
	require.NoError(t, err)
	require.NoError(t, blob.Body.Close())
	assert.Equal(t, content, string(data))
	assert.Equal(t, "image/jpeg", blob.ContentType)
	assert.Equal(t, info.ETag, blob.ETag)

	list, err := backend.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, key, list[0].Key)
	assert.Equal(t, "image/jpeg", list[0].ContentType)

	require.NoError(t, backend.Delete(ctx, key))
	_, err = backend.Get(ctx, key)
	assert.ErrorIs(t, err, gateway.ErrBlobNotFound)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFSBackend_KeysWithSlashesStayFlat(t *testing.T) {
	dir := t.TempDir()
	backend, err := fsstorage.New(fsstorage.Config{BaseDir: dir})
	require.NoError(t, err)

	ctx := context.Background()
	_, err = backend.Put(ctx, "a/../b", strings.NewReader("x"), gateway.PutOptions{})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "a%2F..%2Fb"))
	assert.NoError(t, err)

	list, err := backend.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a/../b", list[0].Key)
}

func TestFSBackend_RequiresBaseDir(t *testing.T) {
	_, err := fsstorage.New(fsstorage.Config{})
	assert.Error(t, err)
}
