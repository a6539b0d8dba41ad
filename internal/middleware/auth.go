// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and request hardening.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/p19091985/nexlify-go/internal/model"
	"github.com/p19091985/nexlify-go/internal/session"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyIdentity is the context key for the authenticated identity.
const ContextKeyIdentity ContextKey = "identity"

// Identify creates middleware that resolves the request identity and puts it
// into the context. With login disabled every request carries the synthetic
// development identity; otherwise the identity comes from the session and
// requests without one pass through unauthenticated.
func Identify(sm *scs.SessionManager, useLogin bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !useLogin {
				ctx := context.WithValue(r.Context(), ContextKeyIdentity, model.DevIdentity)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			identity, ok := session.Identity(r.Context(), sm)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyIdentity, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireIdentity creates middleware that redirects unauthenticated requests
// to the login page. It must run after Identify.
func RequireIdentity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := GetIdentity(r); !ok {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRoles creates middleware that restricts a page to an allow-list of
// roles. An empty allow-list admits every authenticated identity. A denied
// request is halted with 403; the page handler never runs.
func RequireRoles(allowed ...model.Role) func(http.Handler) http.Handler {
	allowSet := make(map[model.Role]bool, len(allowed))
	for _, role := range allowed {
		allowSet[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := GetIdentity(r)
			if !ok {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			if len(allowSet) > 0 && !allowSet[identity.Role] {
				slog.Warn("access denied",
					"status", http.StatusForbidden,
					"method", r.Method,
					"path", r.URL.Path,
					"username", identity.Username,
					"role", identity.Role,
					"remote_addr", r.RemoteAddr,
				)
				http.Error(w, "Acesso negado: permissão insuficiente", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetIdentity retrieves the authenticated identity from the request context.
func GetIdentity(r *http.Request) (model.Identity, bool) {
	identity, ok := r.Context().Value(ContextKeyIdentity).(model.Identity)
	return identity, ok
}
