// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the session manager and defines the session
// keys for the authenticated identity and the login attempt counter. The
// session is the only place identity lives between requests; nothing is
// re-read from the database during navigation.
package session

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"

	"github.com/p19091985/nexlify-go/internal/model"
)

const (
	keyUsername      = "identity_username"
	keyDisplayName   = "identity_display_name"
	keyRole          = "identity_role"
	keyLoginAttempts = "login_attempts"
)

// New creates a session manager. With a SQLite database the sessions are
// persisted in the sessions table; otherwise (MySQL, or no database at all)
// they live in memory and vanish on restart.
func New(db *sql.DB, driver string, isDev bool) *scs.SessionManager {
	sm := scs.New()

	if db != nil && driver == "sqlite" {
		sm.Store = sqlite3store.New(db)
	} else {
		sm.Store = memstore.New()
	}

	sm.Lifetime = 24 * time.Hour
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev

	return sm
}

// PutIdentity stores the authenticated identity in the session.
func PutIdentity(ctx context.Context, sm *scs.SessionManager, identity model.Identity) {
	sm.Put(ctx, keyUsername, identity.Username)
	sm.Put(ctx, keyDisplayName, identity.DisplayName)
	sm.Put(ctx, keyRole, string(identity.Role))
}

// Identity returns the identity stored in the session, if any. A session
// carrying an unknown role is treated as unauthenticated.
func Identity(ctx context.Context, sm *scs.SessionManager) (model.Identity, bool) {
	username := sm.GetString(ctx, keyUsername)
	if username == "" {
		return model.Identity{}, false
	}

	role, err := model.ParseRole(sm.GetString(ctx, keyRole))
	if err != nil {
		return model.Identity{}, false
	}

	return model.Identity{
		Username:    username,
		DisplayName: sm.GetString(ctx, keyDisplayName),
		Role:        role,
	}, true
}

// ClearIdentity removes the identity keys from the session.
func ClearIdentity(ctx context.Context, sm *scs.SessionManager) {
	sm.Remove(ctx, keyUsername)
	sm.Remove(ctx, keyDisplayName)
	sm.Remove(ctx, keyRole)
}

// Attempts returns the number of failed login attempts in this session.
func Attempts(ctx context.Context, sm *scs.SessionManager) int {
	return sm.GetInt(ctx, keyLoginAttempts)
}

// RecordFailedAttempt increments the failed attempt counter and returns the
// new count.
func RecordFailedAttempt(ctx context.Context, sm *scs.SessionManager) int {
	attempts := sm.GetInt(ctx, keyLoginAttempts) + 1
	sm.Put(ctx, keyLoginAttempts, attempts)
	return attempts
}

// ResetAttempts clears the failed attempt counter, used after a successful
// login.
func ResetAttempts(ctx context.Context, sm *scs.SessionManager) {
	sm.Remove(ctx, keyLoginAttempts)
}
