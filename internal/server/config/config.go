// Package config handles configuration for the server component,
// including defaults, JSON overlay, command-line flags and validation.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// Config holds runtime settings for the groupshare server.
//
// Fields:
//   - ListenAddr: bind address for the protocol listener.
//   - DatabaseDriver / DatabaseDSN: "sqlite" (modernc) or "pgx" and its DSN.
//   - StorageBackend: "local" keeps group directories under StorageRoot,
//     "s3" keeps them in S3Bucket.
//   - AttemptLimit / AttemptWindow: failed logins tolerated per window before
//     the account is locked.
//   - SessionValidity: how long after the last activity a cookie still works.
//   - MetricsAddr: bind address for /metrics; empty disables it.
//   - S3User / S3Password / S3Bucket / S3Region / S3BaseEndpoint: object
//     storage settings.
type Config struct {
	ListenAddr      string        `validate:"required,hostname_port"`
	DatabaseDriver  string        `validate:"oneof=sqlite pgx"`
	DatabaseDSN     string        `validate:"required"`
	StorageBackend  string        `validate:"oneof=local s3"`
	StorageRoot     string        `validate:"required_if=StorageBackend local"`
	AttemptLimit    int           `validate:"min=1"`
	AttemptWindow   time.Duration `validate:"min=1s"`
	SessionValidity time.Duration `validate:"min=1m"`
	MetricsAddr     string        `validate:"omitempty,hostname_port"`
	S3User          string
	S3Password      string
	S3Bucket        string `validate:"required_if=StorageBackend s3"`
	S3Region        string `validate:"required_if=StorageBackend s3"`
	S3BaseEndpoint  string `validate:"omitempty,url"`
}

// LoadDefaults populates Config with development defaults: SQLite in the
// working directory and group directories on local disk.
func (c *Config) LoadDefaults() {
	c.ListenAddr = ":5500"
	c.DatabaseDriver = "sqlite"
	c.DatabaseDSN = "groupshare.db"
	c.StorageBackend = StorageLocal
	c.StorageRoot = "storage"
	c.AttemptLimit = 5
	c.AttemptWindow = 60 * time.Minute
	c.SessionValidity = 24 * time.Hour
	c.MetricsAddr = ""
	c.S3User = "admin"
	c.S3Password = "secretpassword"
	c.S3Bucket = "groupshare"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
}

// Validate checks field ranges and the settings each backend requires.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
