// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
	"your-secret-key-2026",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"OSHOP_DB_PATH" envDefault:"./data/oshop.db"`
	SessionSecret string `env:"OSHOP_SESSION_SECRET,required"`
	ServerHost    string `env:"OSHOP_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"OSHOP_SERVER_PORT" envDefault:"5000"`
	Env           string `env:"OSHOP_ENV" envDefault:"development"`
	LogLevel      string `env:"OSHOP_LOG_LEVEL" envDefault:"info"`

	// Admin credentials
	AdminUsername     string `env:"OSHOP_ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword     string `env:"OSHOP_ADMIN_PASSWORD"`      // Plaintext, hashed once at startup
	AdminPasswordHash string `env:"OSHOP_ADMIN_PASSWORD_HASH"` // argon2id encoded hash, wins over AdminPassword

	// Cache configuration
	RedisURL    string `env:"OSHOP_REDIS_URL"`                         // Optional Redis URL for distributed caching
	CachePrefix string `env:"OSHOP_CACHE_PREFIX" envDefault:"oshop:"` // Redis key prefix
	CacheTTL    int    `env:"OSHOP_CACHE_TTL" envDefault:"300"`       // Catalog cache TTL in seconds

	// Event log retention in days (0 disables the purge job)
	EventRetentionDays int `env:"OSHOP_EVENT_RETENTION_DAYS" envDefault:"30"`

	DoSeed bool `env:"OSHOP_DO_SEED" envDefault:"true"` // Insert seed products into an empty catalog
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// CacheTTLDuration returns the catalog cache TTL as a time.Duration.
func (c Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// EventRetention returns how long event log entries are kept.
func (c Config) EventRetention() time.Duration {
	return time.Duration(c.EventRetentionDays) * 24 * time.Hour
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// ErrNoAdminPassword is returned when neither admin password variable is set.
var ErrNoAdminPassword = errors.New("one of OSHOP_ADMIN_PASSWORD or OSHOP_ADMIN_PASSWORD_HASH must be set")

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("OSHOP_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

// Validate checks values that env tags alone cannot express.
func (c *Config) Validate() error {
	if len(c.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("OSHOP_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(c.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if c.SessionSecret == weak {
			return errors.New("OSHOP_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if strings.TrimSpace(c.AdminUsername) == "" {
		return errors.New("OSHOP_ADMIN_USERNAME must not be empty")
	}

	if c.AdminPassword == "" && c.AdminPasswordHash == "" {
		return ErrNoAdminPassword
	}

	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("OSHOP_SERVER_PORT out of range: %d", c.ServerPort)
	}

	if c.EventRetentionDays < 0 {
		return fmt.Errorf("OSHOP_EVENT_RETENTION_DAYS must not be negative, got %d", c.EventRetentionDays)
	}

	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
