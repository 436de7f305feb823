package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/tendant/simple-gateway/pkg/gateway/repo/sqlite"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:           "8080",
		Environment:    "development",
		LogLevel:       "info",
		PublicBaseURL:  "http://localhost:8080",
		DatabaseURL:    "sqlite://./data/gateway.db",
		StorageURL:     "memory://",
		AdminUsername:  "admin",
		AdminPassword:  "password",
		TokenTTL:       24 * time.Hour,
		MaxUploadBytes: 10 << 20,
		ListLimit:      100,
		AutoMigrate:    true,
	}
}

// ServerConfig represents the gateway's runtime configuration. The env tags
// are read by WithEnv; env-default mirrors defaults() for GetDescription.
// Fields whose zero value is meaningful carry no env-default, since cleanenv
// would apply it over an explicit zero read from a file.
type ServerConfig struct {
	Port          string `yaml:"port" env:"PORT" env-default:"8080" env-description:"HTTP listen port" validate:"required,numeric"`
	Environment   string `yaml:"environment" env:"ENVIRONMENT" env-default:"development" env-description:"development, production or testing" validate:"oneof=development production testing"`
	LogLevel      string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info" env-description:"debug, info, warn or error" validate:"oneof=debug info warn error"`
	PublicBaseURL string `yaml:"public_base_url" env:"PUBLIC_BASE_URL" env-default:"http://localhost:8080" env-description:"Origin used to build image URLs" validate:"required,url"`

	// Relational store
	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL" env-default:"sqlite://./data/gateway.db" env-description:"memory, sqlite://<path> or postgres://..." validate:"required"`
	DBSchema    string `yaml:"db_schema" env:"DB_SCHEMA" env-description:"Postgres search_path schema"`
	AutoMigrate bool   `yaml:"auto_migrate" env:"AUTO_MIGRATE" env-description:"Create the news table on startup (default true)"`

	// Blob store
	StorageURL        string `yaml:"storage_url" env:"STORAGE_URL" env-default:"memory://" env-description:"memory://, file:///<dir> or s3://<bucket>?region=&endpoint=&path_style=" validate:"required"`
	S3AccessKeyID     string `yaml:"s3_access_key_id" env:"S3_ACCESS_KEY_ID" env-description:"Static S3 access key; default credential chain when empty"`
	S3SecretAccessKey string `yaml:"s3_secret_access_key" env:"S3_SECRET_ACCESS_KEY" env-description:"Static S3 secret key"`
	S3CreateBucket    bool   `yaml:"s3_create_bucket" env:"S3_CREATE_BUCKET" env-description:"Create the bucket when missing"`

	// Login
	AdminUsername string        `yaml:"admin_username" env:"ADMIN_USERNAME" env-default:"admin" env-description:"Accepted login username" validate:"required"`
	AdminPassword string        `yaml:"admin_password" env:"ADMIN_PASSWORD" env-default:"password" env-description:"Accepted login password" validate:"required"`
	TokenSecret   string        `yaml:"token_secret" env:"TOKEN_SECRET" env-description:"HS256 signing secret; random per process when empty"`
	TokenTTL      time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"24h" env-description:"Login token lifetime" validate:"gte=0"`

	// Limits
	MaxUploadBytes int64         `yaml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES" env-default:"10485760" env-description:"Image size ceiling in bytes" validate:"gt=0"`
	ListLimit      int           `yaml:"list_limit" env:"LIST_LIMIT" env-default:"100" env-description:"Maximum items per list reply" validate:"gt=0,lte=1000"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT" env-description:"Per-request deadline such as 60s; 0 (default) leaves deadlines to the caller" validate:"gte=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid %s: failed %q check", fe.Field(), fe.Tag())
		}
		return err
	}
	if _, err := c.Database(); err != nil {
		return err
	}
	if _, err := c.Storage(); err != nil {
		return err
	}
	return nil
}

// IsDevelopment reports whether the gateway runs in development mode.
func (c *ServerConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// DatabaseTarget is a parsed DATABASE_URL.
type DatabaseTarget struct {
	Type string // "sqlite" or "postgres"
	// Path is the sqlite file path or sqlite.MemoryPath.
	Path string
	// URL is the postgres connection string.
	URL string
}

// Database parses DatabaseURL.
func (c *ServerConfig) Database() (DatabaseTarget, error) {
	raw := strings.TrimSpace(c.DatabaseURL)
	switch {
	case raw == "memory" || raw == "sqlite://:memory:" || raw == "sqlite://memory":
		return DatabaseTarget{Type: "sqlite", Path: sqlite.MemoryPath}, nil
	case strings.HasPrefix(raw, "sqlite://"):
		path := strings.TrimPrefix(raw, "sqlite://")
		if path == "" {
			return DatabaseTarget{}, fmt.Errorf("sqlite path cannot be empty in DATABASE_URL")
		}
		return DatabaseTarget{Type: "sqlite", Path: path}, nil
	case strings.HasPrefix(raw, "postgres://") || strings.HasPrefix(raw, "postgresql://"):
		return DatabaseTarget{Type: "postgres", URL: raw}, nil
	}
	return DatabaseTarget{}, fmt.Errorf("unsupported DATABASE_URL format: %s (use 'memory', 'sqlite://...' or 'postgres://...')", raw)
}

// StorageTarget is a parsed STORAGE_URL.
type StorageTarget struct {
	Type string // "memory", "fs" or "s3"
	// BaseDir is the filesystem root.
	BaseDir string

	Bucket       string
	Region       string
	Endpoint     string
	UsePathStyle bool
}

// Storage parses StorageURL.
func (c *ServerConfig) Storage() (StorageTarget, error) {
	raw := strings.TrimSpace(c.StorageURL)
	switch {
	case raw == "memory" || raw == "memory://":
		return StorageTarget{Type: "memory"}, nil
	case strings.HasPrefix(raw, "file://"):
		dir := strings.TrimPrefix(raw, "file://")
		if dir == "" {
			return StorageTarget{}, fmt.Errorf("filesystem path cannot be empty in STORAGE_URL")
		}
		return StorageTarget{Type: "fs", BaseDir: dir}, nil
	case strings.HasPrefix(raw, "s3://"):
		u, err := url.Parse(raw)
		if err != nil {
			return StorageTarget{}, fmt.Errorf("invalid STORAGE_URL: %w", err)
		}
		if u.Host == "" {
			return StorageTarget{}, fmt.Errorf("bucket name cannot be empty in STORAGE_URL")
		}
		q := u.Query()
		return StorageTarget{
			Type:         "s3",
			Bucket:       u.Host,
			Region:       q.Get("region"),
			Endpoint:     q.Get("endpoint"),
			UsePathStyle: q.Get("path_style") == "true",
		}, nil
	}
	return StorageTarget{}, fmt.Errorf("unsupported STORAGE_URL format: %s (use 'memory://', 'file://...', or 's3://...')", raw)
}
