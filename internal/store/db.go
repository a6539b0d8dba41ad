// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store opens the relational database, applies migrations and seeds
// default data. SQLite (pure Go driver) is the default engine; MySQL is
// supported through a DSN for installations that outgrow a single file.
package store

import (
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"

	_ "github.com/go-sql-driver/mysql" // MySQL driver for database/sql
	_ "modernc.org/sqlite"             // SQLite driver for database/sql
)

//go:embed migrations/sqlite/*.sql migrations/mysql/*.sql
var migrations embed.FS

// Options holds database configuration.
type Options struct {
	// Driver is "sqlite" or "mysql".
	Driver string
	// Path is the SQLite database file path.
	Path string
	// DSN is the MySQL data source name.
	DSN string

	// MaxOpenConns is the maximum number of open connections to the database.
	// For SQLite, WAL mode supports multiple readers but a single writer.
	MaxOpenConns int
	// MaxIdleConns is the maximum number of connections in the idle pool.
	MaxIdleConns int
	// ConnMaxLifetime is the maximum amount of time a connection may be reused.
	ConnMaxLifetime time.Duration
}

// DefaultOptions returns sensible defaults for a SQLite database at path.
func DefaultOptions(path string) Options {
	return Options{
		Driver:          "sqlite",
		Path:            path,
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: 30 * time.Minute,
	}
}

// sqliteDSN attaches the connection-scoped pragmas to the DSN. SQLite
// scopes foreign_keys and busy_timeout to a single connection and defaults
// foreign_keys to OFF, so a plain Exec would configure only whichever
// pooled connection served it; the DSN applies them to every connection
// the pool opens.
func sqliteDSN(path string) string {
	return "file:" + path +
		"?_pragma=busy_timeout(5000)" + // Wait 5s when database is locked
		"&_pragma=foreign_keys(1)" + // Enforce foreign key constraints
		"&_pragma=synchronous(NORMAL)" + // Good balance of safety and speed
		"&_pragma=temp_store(MEMORY)" // Store temp tables in memory
}

// Open opens a database connection and configures it for the selected engine.
func Open(opts Options) (*sql.DB, error) {
	var db *sql.DB
	var err error

	switch opts.Driver {
	case "sqlite":
		db, err = sql.Open("sqlite", sqliteDSN(opts.Path))
	case "mysql":
		db, err = sql.Open("mysql", opts.DSN)
	default:
		return nil, fmt.Errorf("unknown database driver %q", opts.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if opts.Driver == "sqlite" {
		// journal_mode persists in the database file, so one statement is
		// enough; the connection-scoped pragmas travel in the DSN instead.
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enabling WAL: %w", err)
		}
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

// Migrate runs all pending database migrations for the given driver.
func Migrate(db *sql.DB, driver string) error {
	goose.SetBaseFS(migrations)

	var dialect, dir string
	switch driver {
	case "sqlite":
		dialect, dir = "sqlite3", "migrations/sqlite"
	case "mysql":
		dialect, dir = "mysql", "migrations/mysql"
	default:
		return fmt.Errorf("unknown database driver %q", driver)
	}

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("setting dialect: %w", err)
	}

	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}
