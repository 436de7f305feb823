package gateway

import (
	"log/slog"
	"strings"
	"time"

	"github.com/tendant/simple-gateway/pkg/gateway/validation"
)

type settings struct {
	relational RelationalStore
	blobs      BlobStore
	verifier   CredentialVerifier
	issuer     TokenIssuer
	now        func() time.Time
	logger     *slog.Logger
	publicURL  string
	listLimit  int
	fileRules  validation.FileRules
}

// Option configures a service.
type Option func(*settings)

// WithRelationalStore sets the store behind NewsService.
func WithRelationalStore(store RelationalStore) Option {
	return func(s *settings) {
		s.relational = store
	}
}

// WithBlobStore sets the store behind ImageService.
func WithBlobStore(store BlobStore) Option {
	return func(s *settings) {
		s.blobs = store
	}
}

// WithCredentialVerifier sets the verifier behind AuthService.
func WithCredentialVerifier(v CredentialVerifier) Option {
	return func(s *settings) {
		s.verifier = v
	}
}

// WithTokenIssuer sets the issuer behind AuthService.
func WithTokenIssuer(i TokenIssuer) Option {
	return func(s *settings) {
		s.issuer = i
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		s.now = now
	}
}

// WithLogger sets the logger used for backend failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithPublicBaseURL sets the origin used to build image URLs.
func WithPublicBaseURL(base string) Option {
	return func(s *settings) {
		s.publicURL = strings.TrimRight(base, "/")
	}
}

// WithListLimit overrides DefaultListLimit.
func WithListLimit(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.listLimit = n
		}
	}
}

// WithFileRules overrides the image upload constraints.
func WithFileRules(rules validation.FileRules) Option {
	return func(s *settings) {
		s.fileRules = rules
	}
}

func newSettings(opts []Option) *settings {
	s := &settings{
		now:       time.Now,
		listLimit: DefaultListLimit,
		fileRules: validation.ImageRules(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}
