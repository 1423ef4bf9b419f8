// Package config handles tool configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration shared by the cmd tools.
// Fields are populated from environment variables.
type Config struct {
	Env string // development, staging, production

	// Rule tables
	TableSource string // embedded, file, sqlite, s3
	TableDir    string // directory holding the three YAML tables (file source)

	// Database
	DatabasePath string // Path to SQLite file (sqlite source, import tool)

	// S3
	S3Bucket  string
	S3Prefix  string // key prefix in front of the table file names
	AWSRegion string

	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // json, text
}

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Table source constants
const (
	SourceEmbedded = "embedded"
	SourceFile     = "file"
	SourceSQLite   = "sqlite"
	SourceS3       = "s3"
)

// Load reads configuration from environment variables.
// It first loads from a .env file if present.
func Load() (*Config, error) {
	// No-op when the file is missing; real env vars take precedence.
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.Env = getEnv("ENV", EnvDevelopment)

	// Rule tables
	cfg.TableSource = strings.ToLower(getEnv("TABLE_SOURCE", SourceEmbedded))
	cfg.TableDir = getEnv("TABLE_DIR", "")

	// Database
	cfg.DatabasePath = getEnv("DATABASE_PATH", "./data/lutherald.db")

	// S3
	cfg.S3Bucket = getEnv("S3_BUCKET", "")
	cfg.S3Prefix = getEnv("S3_PREFIX", "")
	cfg.AWSRegion = getEnv("AWS_REGION", "us-east-1")

	// Logging
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "text")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present and valid.
// Settings of a table source are only required when that source is selected.
func (c *Config) Validate() error {
	var errs []error

	switch c.Env {
	case EnvDevelopment, EnvStaging, EnvProduction:
	default:
		errs = append(errs, fmt.Errorf("ENV must be one of: development, staging, production; got %q", c.Env))
	}

	switch c.TableSource {
	case SourceEmbedded:
	case SourceFile:
		if c.TableDir == "" {
			errs = append(errs, errors.New("TABLE_DIR is required when TABLE_SOURCE=file"))
		}
	case SourceSQLite:
		if c.DatabasePath == "" {
			errs = append(errs, errors.New("DATABASE_PATH is required when TABLE_SOURCE=sqlite"))
		}
	case SourceS3:
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required when TABLE_SOURCE=s3"))
		}
		if c.AWSRegion == "" {
			errs = append(errs, errors.New("AWS_REGION is required when TABLE_SOURCE=s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("TABLE_SOURCE must be one of: embedded, file, sqlite, s3; got %q", c.TableSource))
	}

	// Production engines must not run on whatever tables the binary was built with.
	if c.Env == EnvProduction && c.TableSource == SourceEmbedded {
		errs = append(errs, errors.New("TABLE_SOURCE=embedded is not allowed in production"))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error; got %q", c.LogLevel))
	}

	switch c.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be one of: json, text; got %q", c.LogFormat))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// getEnv reads an environment variable with a default fallback.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
