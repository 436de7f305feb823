package memory

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/tendant/simple-gateway/pkg/gateway"
)

type object struct {
	data []byte
	info gateway.BlobInfo
}

// Backend is an in-memory implementation of the gateway.BlobStore interface
type Backend struct {
	mu      sync.RWMutex
	objects map[string]object
	now     func() time.Time
}

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{
		objects: make(map[string]object),
		now:     time.Now,
	}
}

// Get returns a copy-free reader over the stored bytes
func (b *Backend) Get(ctx context.Context, key string) (*gateway.Blob, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[key]
	if !exists {
		return nil, gateway.ErrBlobNotFound
	}
	return &gateway.Blob{
		BlobInfo: obj.info,
		Body:     io.NopCloser(bytes.NewReader(obj.data)),
	}, nil
}

// Put stores the content, replacing any existing object under key
func (b *Backend) Put(ctx context.Context, key string, r io.Reader, opts gateway.PutOptions) (*gateway.BlobInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}

	sum := md5.Sum(data)
	info := gateway.BlobInfo{
		Key:         key,
		Size:        int64(len(data)),
		ContentType: opts.ContentType,
		UploadedAt:  b.now().UTC(),
		ETag:        hex.EncodeToString(sum[:]),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = object{data: data, info: info}
	return &info, nil
}

// Delete removes the object. Missing keys are ignored.
func (b *Backend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	return nil
}

func (b *Backend) List(ctx context.Context, limit int) ([]gateway.BlobInfo, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]gateway.BlobInfo, 0, len(b.objects))
	for _, obj := range b.objects {
		out = append(out, obj.info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
