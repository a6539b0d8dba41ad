// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"sort"

	"github.com/p19091985/nexlify-go/internal/render"
	"github.com/p19091985/nexlify-go/internal/repository"
)

// AuditHandler renders the reclassification audit trail.
type AuditHandler struct {
	repo     *repository.Repository
	renderer *render.Renderer
}

// NewAuditHandler creates an AuditHandler. repo may be nil when the
// database is disabled.
func NewAuditHandler(repo *repository.Repository, renderer *render.Renderer) *AuditHandler {
	return &AuditHandler{repo: repo, renderer: renderer}
}

// AuditData holds data for the audit page template.
type AuditData struct {
	Unavailable bool
	Entries     repository.Rows
}

// List renders the audit trail, newest entries first.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	data := AuditData{}

	if h.repo == nil {
		data.Unavailable = true
	} else {
		entries, err := h.repo.Read(r.Context(), "audit_log")
		if err != nil {
			logAndInternalError(w, "reading audit log", "error", err)
			return
		}
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Int64("id") > entries[j].Int64("id")
		})
		data.Entries = entries
	}

	if err := h.renderer.Render(w, r, "admin/audit", pageData(r, "Auditoria", data)); err != nil {
		logAndInternalError(w, "rendering audit page", "error", err)
	}
}
