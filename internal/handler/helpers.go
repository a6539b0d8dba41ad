// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"

	"github.com/p19091985/nexlify-go/internal/middleware"
	"github.com/p19091985/nexlify-go/internal/model"
	"github.com/p19091985/nexlify-go/internal/render"
)

// flashAndRedirect sets a flash message and redirects to the given URL.
// Uses http.StatusSeeOther (303) for POST redirects.
func flashAndRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message, messageType string) {
	renderer.SetFlash(r, message, messageType)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// flashError sets an error flash message and redirects to the given URL.
func flashError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, "error")
}

// flashSuccess sets a success flash message and redirects to the given URL.
// Successful mutations are also logged with the acting user.
func flashSuccess(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	identity, _ := middleware.GetIdentity(r)
	slog.Info("mutation", "path", r.URL.Path, "user", identity.Username, "result", message)
	flashAndRedirect(w, r, renderer, url, message, "success")
}

// parseFormOrRedirect parses the request form and redirects with an error
// message on failure. Returns true if parsing succeeded.
func parseFormOrRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, redirectURL string) bool {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, renderer, redirectURL, "Dados do formulário inválidos")
		return false
	}
	return true
}

// logAndInternalError logs an error and writes a 500 response.
func logAndInternalError(w http.ResponseWriter, logMsg string, args ...any) {
	slog.Error(logMsg, args...)
	http.Error(w, "Erro interno do servidor", http.StatusInternalServerError)
}

// pageData assembles the common template data for an admin page: the
// viewer's identity and the navigation filtered to their role.
func pageData(r *http.Request, title string, data any) render.TemplateData {
	identity, _ := middleware.GetIdentity(r)
	return render.TemplateData{
		Title:    title,
		Data:     data,
		Identity: identity,
		Pages:    VisiblePages(identity.Role),
	}
}

// identityOr500 fetches the request identity, writing a 500 when it is
// missing. The route guards guarantee it is present on guarded pages.
func identityOr500(w http.ResponseWriter, r *http.Request) (model.Identity, bool) {
	identity, ok := middleware.GetIdentity(r)
	if !ok {
		logAndInternalError(w, "identity missing on guarded route", "path", r.URL.Path)
		return model.Identity{}, false
	}
	return identity, true
}
