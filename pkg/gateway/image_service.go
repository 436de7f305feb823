package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tendant/simple-gateway/pkg/gateway/validation"
)

// ImageService implements CRUD for image objects over a BlobStore.
//
// Replace and Delete look the key up first and report NotFoundError when it
// is absent. The lookup and the mutation are separate store calls, so a
// concurrent delete in between is not detected.
type ImageService struct {
	store     BlobStore
	now       func() time.Time
	logger    *slog.Logger
	rules     validation.FileRules
	publicURL string
	limit     int
}

// NewImageService requires WithBlobStore.
func NewImageService(opts ...Option) (*ImageService, error) {
	s := newSettings(opts)
	if s.blobs == nil {
		return nil, fmt.Errorf("blob store is required")
	}
	return &ImageService{
		store:     s.blobs,
		now:       s.now,
		logger:    s.logger,
		rules:     s.fileRules,
		publicURL: s.publicURL,
		limit:     s.listLimit,
	}, nil
}

// URL returns the public fetch URL for key.
func (s *ImageService) URL(key string) string {
	return s.publicURL + "/api/images/" + EscapeKey(key)
}

// List projects up to the list limit of stored objects.
func (s *ImageService) List(ctx context.Context) ([]ImageView, error) {
	infos, err := s.store.List(ctx, s.limit)
	if err != nil {
		return nil, &BackendError{Backend: "blob", Op: "list images", Err: err}
	}
	views := make([]ImageView, 0, len(infos))
	for _, info := range infos {
		contentType := info.ContentType
		if contentType == "" {
			contentType = UnknownContentType
		}
		views = append(views, ImageView{
			Key:         info.Key,
			Size:        info.Size,
			UploadTime:  info.UploadedAt,
			ContentType: contentType,
			URL:         s.URL(info.Key),
		})
	}
	return views, nil
}

// Upload stores a new image under a generated key.
func (s *ImageService) Upload(ctx context.Context, f *ImageFile) (*UploadedImage, error) {
	if err := s.rules.Check(f.declared()); err != nil {
		return nil, err
	}

	key := ObjectKey(s.now(), f.Name)
	if _, err := s.store.Put(ctx, key, f.Content, PutOptions{ContentType: f.ContentType}); err != nil {
		return nil, &BackendError{Backend: "blob", Op: "upload image", Err: err}
	}
	return &UploadedImage{Key: key, URL: s.URL(key)}, nil
}

// Fetch opens the object stored under an escaped path key.
func (s *ImageService) Fetch(ctx context.Context, rawKey string) (*Blob, error) {
	key, err := DecodeKey(rawKey)
	if err != nil {
		return nil, err
	}
	blob, err := s.store.Get(ctx, key)
	if errors.Is(err, ErrBlobNotFound) {
		return nil, &NotFoundError{Resource: "Image", ID: key}
	}
	if err != nil {
		return nil, &BackendError{Backend: "blob", Op: "fetch image", Err: err}
	}
	return blob, nil
}

// Replace overwrites an existing object's content and content type.
func (s *ImageService) Replace(ctx context.Context, rawKey string, f *ImageFile) (string, error) {
	key, err := DecodeKey(rawKey)
	if err != nil {
		return "", err
	}
	if err := s.mustExist(ctx, key, "replace image"); err != nil {
		return "", err
	}
	if err := s.rules.Check(f.declared()); err != nil {
		return "", err
	}
	if _, err := s.store.Put(ctx, key, f.Content, PutOptions{ContentType: f.ContentType}); err != nil {
		return "", &BackendError{Backend: "blob", Op: "replace image", Err: err}
	}
	return key, nil
}

// Delete removes an existing object.
func (s *ImageService) Delete(ctx context.Context, rawKey string) error {
	key, err := DecodeKey(rawKey)
	if err != nil {
		return err
	}
	if err := s.mustExist(ctx, key, "delete image"); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return &BackendError{Backend: "blob", Op: "delete image", Err: err}
	}
	return nil
}

func (s *ImageService) mustExist(ctx context.Context, key, op string) error {
	blob, err := s.store.Get(ctx, key)
	if errors.Is(err, ErrBlobNotFound) {
		return &NotFoundError{Resource: "Image", ID: key}
	}
	if err != nil {
		return &BackendError{Backend: "blob", Op: op, Err: err}
	}
	if err := blob.Body.Close(); err != nil {
		s.logger.WarnContext(ctx, "Failed to close blob body", "key", key, "error", err)
	}
	return nil
}

func (f *ImageFile) declared() *validation.File {
	if f == nil || f.Content == nil {
		return nil
	}
	return &validation.File{Name: f.Name, ContentType: f.ContentType, Size: f.Size}
}
