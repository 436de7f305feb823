package memory_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-gateway/pkg/gateway"
	memorystorage "github.com/tendant/simple-gateway/pkg/gateway/storage/memory"
)

func TestMemoryBackend(t *testing.T) {
	backend := memorystorage.New()
	ctx := context.Background()
	testKey := "1700000000000-cat.png"
	testData := "Hello, World! This is test data."

	t.Run("Put", func(t *testing.T) {
		info, err := backend.Put(ctx, testKey, strings.NewReader(testData), gateway.PutOptions{ContentType: "image/png"})
		require.NoError(t, err)
		assert.Equal(t, testKey, info.Key)
		assert.Equal(t, int64(len(testData)), info.Size)
		assert.Len(t, info.ETag, 32)
		assert.False(t, info.UploadedAt.IsZero())
	})

	t.Run("Get", func(t *testing.T) {
		blob, err := backend.Get(ctx, testKey)
		require.NoError(t, err)
		defer blob.Body.Close()

		data, err := io.ReadAll(blob.Body)
		require.NoError(t, err)
		assert.Equal(t, testData, string(data))
		assert.Equal(t, "image/png", blob.ContentType)
	})

	t.Run("Overwrite", func(t *testing.T) {
		_, err := backend.Put(ctx, testKey, strings.NewReader("new"), gateway.PutOptions{ContentType: "image/webp"})
		require.NoError(t, err)

		blob, err := backend.Get(ctx, testKey)
		require.NoError(t, err)
		data, _ := io.ReadAll(blob.Body)
		assert.Equal(t, "new", string(data))
		assert.Equal(t, "image/webp", blob.ContentType)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, backend.Delete(ctx, testKey))
		_, err := backend.Get(ctx, testKey)
		assert.ErrorIs(t, err, gateway.ErrBlobNotFound)

		assert.NoError(t, backend.Delete(ctx, "missing"))
	})
}

func TestMemoryBackend_ListOrderAndLimit(t *testing.T) {
	backend := memorystorage.New()
	ctx := context.Background()

	for _, key := range []string{"c", "a", "b"} {
		_, err := backend.Put(ctx, key, strings.NewReader(key), gateway.PutOptions{})
		require.NoError(t, err)
	}

	all, err := backend.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].Key)
	assert.Equal(t, "c", all[2].Key)

	two, err := backend.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}
