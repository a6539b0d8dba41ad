// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared helpers for tests.
package testutil

import (
	"database/sql"
	"io"
	"log/slog"
	"testing"

	_ "github.com/mattn/go-sqlite3" // test database driver

	"github.com/p19091985/nexlify-go/internal/store"
)

// TestDB creates an in-memory SQLite database with the full schema applied.
// The database is closed automatically when the test finishes.
func TestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	// In-memory databases vanish when their sole connection closes.
	db.SetMaxOpenConns(1)

	if err := store.Migrate(db, "sqlite"); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	return db
}

// TestLogger returns a logger that discards all output.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
