package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// WithEnv overlays environment variables named by the struct's env tags.
// Unset variables leave the current value in place.
func WithEnv() Option {
	return func(c *ServerConfig) error {
		if err := cleanenv.ReadEnv(c); err != nil {
			return fmt.Errorf("read environment: %w", err)
		}
		return nil
	}
}

// WithFile reads a YAML, JSON, TOML or .env file and then the environment,
// which takes precedence.
func WithFile(path string) Option {
	return func(c *ServerConfig) error {
		if path == "" {
			return nil
		}
		if err := cleanenv.ReadConfig(path, c); err != nil {
			return fmt.Errorf("read config file %s: %w", path, err)
		}
		return nil
	}
}

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithDatabaseURL selects the relational store
func WithDatabaseURL(url string) Option {
	return func(c *ServerConfig) error {
		c.DatabaseURL = url
		return nil
	}
}

// WithStorageURL selects the blob store
func WithStorageURL(url string) Option {
	return func(c *ServerConfig) error {
		c.StorageURL = url
		return nil
	}
}

// WithAdmin sets the accepted login credentials
func WithAdmin(username, password string) Option {
	return func(c *ServerConfig) error {
		c.AdminUsername = username
		c.AdminPassword = password
		return nil
	}
}

// WithTokenSecret sets the HS256 signing secret and token lifetime
func WithTokenSecret(secret string, ttl time.Duration) Option {
	return func(c *ServerConfig) error {
		c.TokenSecret = secret
		c.TokenTTL = ttl
		return nil
	}
}

// Describe renders the supported environment variables with their defaults.
func Describe() (string, error) {
	var cfg ServerConfig
	header := "Environment variables:"
	return cleanenv.GetDescription(&cfg, &header)
}
