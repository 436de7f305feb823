package fs

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tendant/simple-gateway/pkg/gateway"
)

const metaSuffix = ".meta.json"

// Backend is a filesystem implementation of the gateway.BlobStore interface.
// Each object is stored as a flat file named by its escaped key with a JSON
// sidecar holding the content type and hash.
type Backend struct {
	mu      sync.RWMutex
	baseDir string
	now     func() time.Time
}

// Config options for the filesystem backend
type Config struct {
	BaseDir string // Base directory for storing files
}

type sidecar struct {
	ContentType string    `json:"content_type"`
	ETag        string    `json:"etag"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// New creates a new filesystem storage backend
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}
	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &Backend{baseDir: config.BaseDir, now: time.Now}, nil
}

func (b *Backend) objectPath(key string) string {
	return filepath.Join(b.baseDir, url.PathEscape(key))
}

func (b *Backend) Get(ctx context.Context, key string) (*gateway.Blob, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	path := b.objectPath(key)
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, gateway.ErrBlobNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	info, err := b.stat(key, file)
	if err != nil {
		file.Close()
		return nil, err
	}
	return &gateway.Blob{BlobInfo: info, Body: file}, nil
}

// Put writes to a temporary file and renames it into place.
func (b *Backend) Put(ctx context.Context, key string, r io.Reader, opts gateway.PutOptions) (*gateway.BlobInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	path := b.objectPath(key)
	tmp, err := os.CreateTemp(b.baseDir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	hash := md5.New()
	size, err := io.Copy(io.MultiWriter(tmp, hash), r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	meta := sidecar{
		ContentType: opts.ContentType,
		ETag:        hex.EncodeToString(hash.Sum(nil)),
		UploadedAt:  b.now().UTC(),
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	if err := os.WriteFile(path+metaSuffix, raw, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return nil, fmt.Errorf("failed to move file into place: %w", err)
	}

	return &gateway.BlobInfo{
		Key:         key,
		Size:        size,
		ContentType: meta.ContentType,
		UploadedAt:  meta.UploadedAt,
		ETag:        meta.ETag,
	}, nil
}

// Delete removes the object and its sidecar. Missing keys are ignored.
func (b *Backend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	path := b.objectPath(key)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	if err := os.Remove(path + metaSuffix); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete metadata: %w", err)
	}
	return nil
}

func (b *Backend) List(ctx context.Context, limit int) ([]gateway.BlobInfo, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	entries, err := os.ReadDir(b.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var out []gateway.BlobInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasSuffix(name, metaSuffix) || strings.HasPrefix(name, ".upload-") {
			continue
		}
		key, err := url.PathUnescape(name)
		if err != nil {
			continue
		}
		info, err := b.stat(key, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// stat reads size from the open file when given, otherwise from disk.
func (b *Backend) stat(key string, file *os.File) (gateway.BlobInfo, error) {
	path := b.objectPath(key)

	var (
		fi  os.FileInfo
		err error
	)
	if file != nil {
		fi, err = file.Stat()
	} else {
		fi, err = os.Stat(path)
	}
	if err != nil {
		return gateway.BlobInfo{}, fmt.Errorf("failed to get file info: %w", err)
	}

	info := gateway.BlobInfo{Key: key, Size: fi.Size(), UploadedAt: fi.ModTime().UTC()}
	raw, err := os.ReadFile(path + metaSuffix)
	if os.IsNotExist(err) {
		return info, nil
	} else if err != nil {
		return gateway.BlobInfo{}, fmt.Errorf("failed to read metadata: %w", err)
	}

	var meta sidecar
	if err := json.Unmarshal(raw, &meta); err != nil {
		return gateway.BlobInfo{}, fmt.Errorf("failed to decode metadata: %w", err)
	}
	info.ContentType = meta.ContentType
	info.ETag = meta.ETag
	if !meta.UploadedAt.IsZero() {
		info.UploadedAt = meta.UploadedAt
	}
	return info, nil
}
