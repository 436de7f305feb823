package gateway

import (
	"context"
	"io"
	"time"
)

// Row is one result row keyed by column name.
type Row map[string]any

// ExecResult describes the outcome of a mutating statement.
type ExecResult struct {
	Success      bool
	RowsAffected int64
	LastInsertID int64
}

// RelationalStore executes parameterized SQL. Placeholders are written as "?".
type RelationalStore interface {
	// Query runs a statement that returns rows.
	Query(ctx context.Context, query string, args ...any) ([]Row, error)

	// Execute runs a mutating statement. A statement ending in "RETURNING id"
	// reports the returned id as LastInsertID.
	Execute(ctx context.Context, query string, args ...any) (ExecResult, error)
}

// Migrator is implemented by stores that can bootstrap their own schema.
type Migrator interface {
	Migrate(ctx context.Context) error
}

// BlobInfo describes a stored object without its content.
type BlobInfo struct {
	Key         string
	Size        int64
	ContentType string
	UploadedAt  time.Time
	// ETag is the unquoted content hash reported by the store.
	ETag string
}

// Blob is a stored object with an open content stream. Callers close Body.
type Blob struct {
	BlobInfo
	Body io.ReadCloser
}

// PutOptions carry metadata written alongside an object.
type PutOptions struct {
	ContentType string
}

// BlobStore persists named binary objects. Put overwrites silently and Delete
// of a missing key is not required to fail; Get reports ErrBlobNotFound.
type BlobStore interface {
	Get(ctx context.Context, key string) (*Blob, error)
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (*BlobInfo, error)
	Delete(ctx context.Context, key string) error
	// List returns at most limit objects ordered by key.
	List(ctx context.Context, limit int) ([]BlobInfo, error)
}

// CredentialVerifier decides whether a username/password pair is valid.
type CredentialVerifier interface {
	Verify(ctx context.Context, username, password string) (bool, error)
}

// TokenIssuer mints a bearer token for an authenticated subject.
type TokenIssuer interface {
	Issue(ctx context.Context, subject string) (string, error)
}
