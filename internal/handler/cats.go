// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strconv"

	"github.com/p19091985/nexlify-go/internal/render"
	"github.com/p19091985/nexlify-go/internal/repository"
)

// CatsHandler handles the cat species catalog page.
type CatsHandler struct {
	repo     *repository.Repository
	renderer *render.Renderer
}

// NewCatsHandler creates a CatsHandler. repo may be nil when the database
// is disabled; the page then renders an unavailability notice.
func NewCatsHandler(repo *repository.Repository, renderer *render.Renderer) *CatsHandler {
	return &CatsHandler{repo: repo, renderer: renderer}
}

// CatsData holds data for the cats page template.
type CatsData struct {
	Unavailable bool
	Species     repository.Rows
}

// List renders the cat species catalog.
func (h *CatsHandler) List(w http.ResponseWriter, r *http.Request) {
	data := CatsData{}

	if h.repo == nil {
		data.Unavailable = true
	} else {
		species, err := h.repo.Read(r.Context(), "cat_species")
		if err != nil {
			logAndInternalError(w, "reading cat species", "error", err)
			return
		}
		species.SortBy("species_name")
		data.Species = species
	}

	if err := h.renderer.Render(w, r, "admin/cats", pageData(r, "Gatos", data)); err != nil {
		logAndInternalError(w, "rendering cats page", "error", err)
	}
}

// Create handles the new species form submission.
func (h *CatsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteCats) {
		return
	}
	if h.repo == nil {
		flashError(w, r, h.renderer, RouteCats, "O banco de dados está desabilitado")
		return
	}

	name := r.FormValue("species_name")
	if name == "" {
		flashError(w, r, h.renderer, RouteCats, "Informe o nome da espécie")
		return
	}

	err := h.repo.Write(r.Context(), "cat_species", repository.Row{
		"species_name":   name,
		"origin_country": r.FormValue("origin_country"),
		"temperament":    r.FormValue("temperament"),
	})
	if err != nil {
		logAndInternalError(w, "creating cat species", "error", err)
		return
	}

	flashSuccess(w, r, h.renderer, RouteCats, "Espécie cadastrada")
}

// Update handles the edit form submission for one species.
func (h *CatsHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteCats) {
		return
	}
	if h.repo == nil {
		flashError(w, r, h.renderer, RouteCats, "O banco de dados está desabilitado")
		return
	}

	id, err := strconv.ParseInt(r.FormValue("id"), 10, 64)
	if err != nil {
		flashError(w, r, h.renderer, RouteCats, "Identificador inválido")
		return
	}

	affected, err := h.repo.Update(r.Context(), "cat_species", repository.Row{
		"species_name":   r.FormValue("species_name"),
		"origin_country": r.FormValue("origin_country"),
		"temperament":    r.FormValue("temperament"),
	}, repository.Eq("id", id))
	if err != nil {
		logAndInternalError(w, "updating cat species", "error", err, "id", id)
		return
	}
	if affected == 0 {
		flashError(w, r, h.renderer, RouteCats, "Espécie não encontrada")
		return
	}

	flashSuccess(w, r, h.renderer, RouteCats, "Espécie atualizada")
}

// Delete removes one species.
func (h *CatsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteCats) {
		return
	}
	if h.repo == nil {
		flashError(w, r, h.renderer, RouteCats, "O banco de dados está desabilitado")
		return
	}

	id, err := strconv.ParseInt(r.FormValue("id"), 10, 64)
	if err != nil {
		flashError(w, r, h.renderer, RouteCats, "Identificador inválido")
		return
	}

	if _, err := h.repo.Delete(r.Context(), "cat_species", repository.Eq("id", id)); err != nil {
		logAndInternalError(w, "deleting cat species", "error", err, "id", id)
		return
	}

	flashSuccess(w, r, h.renderer, RouteCats, "Espécie removida")
}
