// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
)

// HealthHandler reports process and database health.
type HealthHandler struct {
	db *sql.DB
}

// NewHealthHandler creates a HealthHandler. db may be nil when the database
// is disabled; the endpoint then reports it as such.
func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health writes a JSON health summary. The endpoint stays 200 as long as
// the process serves requests; database state is reported in the body.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{
		"status":   "ok",
		"database": "disabled",
	}

	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			status["database"] = "unreachable"
		} else {
			status["database"] = "ok"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(status)
}
