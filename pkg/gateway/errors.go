package gateway

import (
	"errors"
	"fmt"

	"github.com/tendant/simple-gateway/pkg/gateway/validation"
)

var (
	// ErrNotFound indicates a record or object does not exist
	ErrNotFound = errors.New("not found")

	// ErrBlobNotFound is returned by BlobStore.Get for a missing key
	ErrBlobNotFound = errors.New("object not found")

	// ErrInvalidCredentials indicates a failed login
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError reports malformed or missing input.
type ValidationError = validation.Error

// NotFoundError reports a missing record or blob key.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// BackendError wraps a failure reported by a relational or blob store.
type BackendError struct {
	Backend string
	Op      string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
