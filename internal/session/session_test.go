// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"database/sql"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/mattn/go-sqlite3"

	"github.com/p19091985/nexlify-go/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)

	// Sessions table required by sqlite3store.
	_, err = db.Exec(`
		CREATE TABLE sessions (
			token TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expiry REAL NOT NULL
		);
		CREATE INDEX sessions_expiry_idx ON sessions(expiry);
	`)
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// sessionContext loads an empty session so Put/Get work outside an HTTP
// request.
func sessionContext(t *testing.T, sm *scs.SessionManager) context.Context {
	t.Helper()
	ctx, err := sm.Load(context.Background(), "")
	require.NoError(t, err)
	return ctx
}

func TestNewSelectsStore(t *testing.T) {
	db := setupTestDB(t)

	sm := New(db, "sqlite", true)
	assert.NotNil(t, sm)

	// Without a database, or on MySQL, sessions live in memory.
	_, ok := New(nil, "sqlite", true).Store.(*memstore.MemStore)
	assert.True(t, ok, "nil database must fall back to the memory store")
	_, ok = New(db, "mysql", true).Store.(*memstore.MemStore)
	assert.True(t, ok, "mysql driver must fall back to the memory store")
}

func TestNewCookieFlags(t *testing.T) {
	db := setupTestDB(t)

	dev := New(db, "sqlite", true)
	assert.False(t, dev.Cookie.Secure)
	assert.True(t, dev.Cookie.HttpOnly)

	prod := New(db, "sqlite", false)
	assert.True(t, prod.Cookie.Secure)
}

func TestIdentityRoundTrip(t *testing.T) {
	sm := New(nil, "sqlite", true)
	ctx := sessionContext(t, sm)

	_, ok := Identity(ctx, sm)
	assert.False(t, ok, "fresh session must carry no identity")

	want := model.Identity{
		Username:    "maria",
		DisplayName: "Maria Silva",
		Role:        model.RoleITManager,
	}
	PutIdentity(ctx, sm, want)

	got, ok := Identity(ctx, sm)
	require.True(t, ok)
	assert.Equal(t, want, got)

	ClearIdentity(ctx, sm)
	_, ok = Identity(ctx, sm)
	assert.False(t, ok)
}

func TestIdentityRejectsUnknownRole(t *testing.T) {
	sm := New(nil, "sqlite", true)
	ctx := sessionContext(t, sm)

	sm.Put(ctx, keyUsername, "maria")
	sm.Put(ctx, keyRole, "Super Usuário")

	_, ok := Identity(ctx, sm)
	assert.False(t, ok, "a tampered role must not authenticate")
}

func TestAttemptCounter(t *testing.T) {
	sm := New(nil, "sqlite", true)
	ctx := sessionContext(t, sm)

	assert.Equal(t, 0, Attempts(ctx, sm))
	assert.Equal(t, 1, RecordFailedAttempt(ctx, sm))
	assert.Equal(t, 2, RecordFailedAttempt(ctx, sm))
	assert.Equal(t, 2, Attempts(ctx, sm))

	ResetAttempts(ctx, sm)
	assert.Equal(t, 0, Attempts(ctx, sm))
}
