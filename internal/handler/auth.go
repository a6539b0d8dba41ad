// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/mileusna/useragent"

	"github.com/p19091985/nexlify-go/internal/config"
	"github.com/p19091985/nexlify-go/internal/middleware"
	"github.com/p19091985/nexlify-go/internal/render"
	"github.com/p19091985/nexlify-go/internal/service"
	"github.com/p19091985/nexlify-go/internal/session"
)

// AuthHandler handles the login and logout routes.
type AuthHandler struct {
	authService    *service.Auth
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
}

// NewAuthHandler creates an AuthHandler. authService may be nil when the
// database is disabled; login then reports the store as unavailable.
func NewAuthHandler(authService *service.Auth, renderer *render.Renderer, sm *scs.SessionManager) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		renderer:       renderer,
		sessionManager: sm,
	}
}

// LoginData holds the state rendered on the login page.
type LoginData struct {
	Locked bool
}

// LoginForm renders the login page. Authenticated users are sent straight
// to the panel.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetIdentity(r); ok {
		http.Redirect(w, r, RouteRoot, http.StatusSeeOther)
		return
	}

	data := LoginData{
		Locked: session.Attempts(r.Context(), h.sessionManager) >= config.MaxLoginAttempts,
	}

	if err := h.renderer.Render(w, r, "auth/login", render.TemplateData{
		Title: "Entrar",
		Data:  data,
	}); err != nil {
		logAndInternalError(w, "rendering login page", "error", err)
	}
}

// Login handles the login form submission. The attempt counter lives in the
// session: after the third failed submission the flow locks for that
// session and no further credential checks are made.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteLogin) {
		return
	}

	login := r.FormValue("login")
	password := r.FormValue("password")
	if login == "" || password == "" {
		flashError(w, r, h.renderer, RouteLogin, "Informe usuário e senha")
		return
	}

	attempts := session.Attempts(r.Context(), h.sessionManager)
	if attempts >= config.MaxLoginAttempts {
		slog.Warn("login attempt on locked session", "login", login, "remote_addr", r.RemoteAddr)
		flashError(w, r, h.renderer, RouteLogin,
			"Número máximo de tentativas excedido. Encerre o navegador e tente novamente.")
		return
	}

	if h.authService == nil {
		flashError(w, r, h.renderer, RouteLogin,
			"O banco de dados está desabilitado. Não é possível autenticar.")
		return
	}

	identity, err := h.authService.VerifyCredentials(r.Context(), login, password)
	if err != nil {
		if errors.Is(err, service.ErrStoreUnavailable) {
			// An outage is not the user's fault; it neither consumes an
			// attempt nor looks like a credential problem.
			flashError(w, r, h.renderer, RouteLogin,
				"Não foi possível conectar ao banco de dados. Tente novamente mais tarde.")
			return
		}

		attempts = session.RecordFailedAttempt(r.Context(), h.sessionManager)
		if attempts >= config.MaxLoginAttempts {
			slog.Warn("login locked after repeated failures", "login", login, "remote_addr", r.RemoteAddr)
			flashError(w, r, h.renderer, RouteLogin,
				"Número máximo de tentativas excedido. Encerre o navegador e tente novamente.")
			return
		}

		remaining := config.MaxLoginAttempts - attempts
		flashError(w, r, h.renderer, RouteLogin,
			fmt.Sprintf("Credenciais inválidas. %d tentativa(s) restante(s).", remaining))
		return
	}

	session.ResetAttempts(r.Context(), h.sessionManager)

	// Regenerate session ID to prevent session fixation
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}

	session.PutIdentity(r.Context(), h.sessionManager, identity)

	ua := useragent.Parse(r.UserAgent())
	slog.Info("user logged in",
		"username", identity.Username,
		"role", identity.Role,
		"browser", ua.Name,
		"os", ua.OS,
		"mobile", ua.Mobile,
	)

	flashAndRedirect(w, r, h.renderer, RouteRoot,
		fmt.Sprintf("Bem-vindo, %s!", identity.DisplayName), "success")
}

// Logout destroys the session and returns to the login page.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r)

	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		slog.Error("session destroy error", "error", err)
	}

	slog.Info("user logged out", "username", identity.Username)
	http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
}
