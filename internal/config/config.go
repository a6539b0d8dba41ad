// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// MinSessionSecretLength is the minimum required length for the session
// secret. AES-256 requires 32 bytes minimum for secure encryption.
const MinSessionSecretLength = 32

// MaxLoginAttempts is the number of failed submissions a session may make
// before the login flow locks for that session.
const MaxLoginAttempts = 3

// Config holds the application configuration loaded from environment variables.
type Config struct {
	// Feature flags mirrored from the desktop-era settings file.
	DatabaseEnabled      bool `env:"NEXLIFY_DATABASE_ENABLED" envDefault:"true"`
	UseLogin             bool `env:"NEXLIFY_USE_LOGIN" envDefault:"true"`
	InitDBOnStartup      bool `env:"NEXLIFY_INIT_DB_ON_STARTUP" envDefault:"true"`
	RedirectConsoleToLog bool `env:"NEXLIFY_REDIRECT_CONSOLE_TO_LOG" envDefault:"false"`

	// Database connection. Driver is "sqlite" (default) or "mysql";
	// DBPath applies to sqlite, DBDSN to mysql.
	DBDriver string `env:"NEXLIFY_DB_DRIVER" envDefault:"sqlite"`
	DBPath   string `env:"NEXLIFY_DB_PATH" envDefault:"./data/nexlify.db"`
	DBDSN    string `env:"NEXLIFY_DB_DSN"`

	SessionSecret string `env:"NEXLIFY_SESSION_SECRET"`
	ServerHost    string `env:"NEXLIFY_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"NEXLIFY_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"NEXLIFY_ENV" envDefault:"development"`
	LogLevel      string `env:"NEXLIFY_LOG_LEVEL" envDefault:"info"`
	LogDir        string `env:"NEXLIFY_LOG_DIR" envDefault:"./log"`

	// Cache configuration
	RedisURL    string `env:"NEXLIFY_REDIS_URL"`                          // Optional Redis URL for distributed caching
	CachePrefix string `env:"NEXLIFY_CACHE_PREFIX" envDefault:"nexlify:"` // Redis key prefix
	CacheTTL    int    `env:"NEXLIFY_CACHE_TTL" envDefault:"300"`         // Default cache TTL in seconds

	// Audit log retention sweep, days. 0 disables the sweep.
	AuditRetentionDays int `env:"NEXLIFY_AUDIT_RETENTION_DAYS" envDefault:"0"`

	// Seeding configuration
	DoSeed bool `env:"NEXLIFY_DO_SEED" envDefault:"true"` // Seed default admin + demo rows
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

// Load parses environment variables and returns a validated Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the flag combination is coherent. It is pure so it
// can be tested in isolation; a violation halts startup with a descriptive
// message.
func (c Config) Validate() error {
	if c.UseLogin && !c.DatabaseEnabled {
		return fmt.Errorf("invalid configuration: NEXLIFY_USE_LOGIN=true requires NEXLIFY_DATABASE_ENABLED=true; " +
			"the login system reads credentials from the database — enable the database or disable login")
	}

	if c.InitDBOnStartup && !c.DatabaseEnabled {
		return fmt.Errorf("invalid configuration: NEXLIFY_INIT_DB_ON_STARTUP=true requires NEXLIFY_DATABASE_ENABLED=true; " +
			"the schema cannot be created while database access is disabled")
	}

	switch c.DBDriver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("invalid configuration: unknown NEXLIFY_DB_DRIVER %q (want sqlite or mysql)", c.DBDriver)
	}

	if c.DBDriver == "mysql" && c.DatabaseEnabled && c.DBDSN == "" {
		return fmt.Errorf("invalid configuration: NEXLIFY_DB_DSN is required when NEXLIFY_DB_DRIVER=mysql")
	}

	// The secret is mandatory only when login is on; a secret that is set
	// must still meet the minimum length either way.
	if c.UseLogin && c.SessionSecret == "" {
		return fmt.Errorf("NEXLIFY_SESSION_SECRET is required when NEXLIFY_USE_LOGIN=true; " +
			"generate a secure secret with: openssl rand -base64 32")
	}
	if c.SessionSecret != "" && len(c.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("NEXLIFY_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(c.SessionSecret))
	}

	return nil
}
