package config

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tendant/simple-gateway/pkg/gateway"
	"github.com/tendant/simple-gateway/pkg/gateway/repo/postgres"
	"github.com/tendant/simple-gateway/pkg/gateway/repo/sqlite"
	"github.com/tendant/simple-gateway/pkg/gateway/storage/fs"
	"github.com/tendant/simple-gateway/pkg/gateway/storage/memory"
	s3storage "github.com/tendant/simple-gateway/pkg/gateway/storage/s3"
	"github.com/tendant/simple-gateway/pkg/gateway/validation"
)

// Relational is an open relational store together with its schema hook.
type Relational struct {
	Store    gateway.RelationalStore
	Migrator gateway.Migrator
	close    func()
}

// Close releases the underlying connection pool or database handle.
func (r *Relational) Close() {
	if r != nil && r.close != nil {
		r.close()
	}
}

// Services bundles the wired gateway services.
type Services struct {
	News       *gateway.NewsService
	Images     *gateway.ImageService
	Auth       *gateway.AuthService
	Relational *Relational
}

// Close releases the relational store.
func (s *Services) Close() {
	if s != nil {
		s.Relational.Close()
	}
}

// BuildServices opens both stores and constructs the news, image and auth services.
func (c *ServerConfig) BuildServices(ctx context.Context, logger *slog.Logger) (*Services, error) {
	if logger == nil {
		logger = slog.Default()
	}

	rel, err := c.OpenRelational(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open relational store: %w", err)
	}
	if c.AutoMigrate {
		if err := rel.Migrator.Migrate(ctx); err != nil {
			rel.Close()
			return nil, err
		}
	}

	blobs, err := c.BuildBlobStore(ctx)
	if err != nil {
		rel.Close()
		return nil, fmt.Errorf("failed to create blob store: %w", err)
	}

	verifier, issuer, err := c.BuildAuth(logger)
	if err != nil {
		rel.Close()
		return nil, err
	}

	common := []gateway.Option{
		gateway.WithLogger(logger),
		gateway.WithListLimit(c.ListLimit),
	}

	news, err := gateway.NewNewsService(append(common, gateway.WithRelationalStore(rel.Store))...)
	if err != nil {
		rel.Close()
		return nil, err
	}
	images, err := gateway.NewImageService(append(common,
		gateway.WithBlobStore(blobs),
		gateway.WithPublicBaseURL(c.PublicBaseURL),
		gateway.WithFileRules(c.FileRules()),
	)...)
	if err != nil {
		rel.Close()
		return nil, err
	}
	auth, err := gateway.NewAuthService(append(common,
		gateway.WithCredentialVerifier(verifier),
		gateway.WithTokenIssuer(issuer),
	)...)
	if err != nil {
		rel.Close()
		return nil, err
	}

	return &Services{News: news, Images: images, Auth: auth, Relational: rel}, nil
}

// OpenRelational connects to the store named by DatabaseURL.
func (c *ServerConfig) OpenRelational(ctx context.Context) (*Relational, error) {
	target, err := c.Database()
	if err != nil {
		return nil, err
	}

	switch target.Type {
	case "sqlite":
		if target.Path != sqlite.MemoryPath {
			if err := os.MkdirAll(filepath.Dir(target.Path), 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite directory: %w", err)
			}
		}
		store, err := sqlite.Open(ctx, target.Path)
		if err != nil {
			return nil, err
		}
		return &Relational{Store: store, Migrator: store, close: func() { _ = store.Close() }}, nil

	case "postgres":
		pool, err := postgres.Connect(ctx, target.URL, c.DBSchema)
		if err != nil {
			return nil, err
		}
		store := postgres.NewWithPool(pool)
		return &Relational{Store: store, Migrator: store, close: pool.Close}, nil
	}
	return nil, fmt.Errorf("unsupported database type: %s", target.Type)
}

// BuildBlobStore constructs the store named by StorageURL.
func (c *ServerConfig) BuildBlobStore(ctx context.Context) (gateway.BlobStore, error) {
	target, err := c.Storage()
	if err != nil {
		return nil, err
	}

	switch target.Type {
	case "memory":
		return memory.New(), nil

	case "fs":
		if err := os.MkdirAll(target.BaseDir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
		return fs.New(fs.Config{BaseDir: target.BaseDir})

	case "s3":
		return s3storage.New(ctx, s3storage.Config{
			Region:                 target.Region,
			Bucket:                 target.Bucket,
			AccessKeyID:            c.S3AccessKeyID,
			SecretAccessKey:        c.S3SecretAccessKey,
			Endpoint:               target.Endpoint,
			UsePathStyle:           target.UsePathStyle,
			CreateBucketIfNotExist: c.S3CreateBucket,
		})
	}
	return nil, fmt.Errorf("unsupported storage type: %s", target.Type)
}

// BuildAuth returns the login verifier and the token issuer. An empty
// TokenSecret is replaced by a random per-process key.
func (c *ServerConfig) BuildAuth(logger *slog.Logger) (gateway.CredentialVerifier, gateway.TokenIssuer, error) {
	verifier, err := gateway.NewStaticVerifier(c.AdminUsername, c.AdminPassword)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create credential verifier: %w", err)
	}

	secret := []byte(c.TokenSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, nil, fmt.Errorf("generate token secret: %w", err)
		}
		if logger != nil {
			logger.Warn("TOKEN_SECRET not set, tokens will not survive a restart")
		}
	}

	issuer, err := gateway.NewJWTIssuer(secret, c.TokenTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create token issuer: %w", err)
	}
	return verifier, issuer, nil
}

// FileRules returns the image upload rules with MaxUploadBytes as the ceiling.
func (c *ServerConfig) FileRules() validation.FileRules {
	rules := validation.ImageRules()
	if c.MaxUploadBytes > 0 {
		rules.MaxSize = c.MaxUploadBytes
	}
	return rules
}
