// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/p19091985/nexlify-go/internal/cache"
	"github.com/p19091985/nexlify-go/internal/render"
	"github.com/p19091985/nexlify-go/internal/repository"
	"github.com/p19091985/nexlify-go/internal/service"
)

// vegetableTypesCacheKey caches the type name list, the hottest read on the
// vegetables page.
const vegetableTypesCacheKey = "vegetable_types"

// VegetablesHandler handles the vegetable catalog page: vegetables, their
// types and the audited reclassification.
type VegetablesHandler struct {
	repo       *repository.Repository
	vegService *service.Vegetables
	renderer   *render.Renderer
	cache      cache.Cache
}

// NewVegetablesHandler creates a VegetablesHandler. repo and vegService may
// be nil when the database is disabled.
func NewVegetablesHandler(repo *repository.Repository, vegService *service.Vegetables, renderer *render.Renderer, c cache.Cache) *VegetablesHandler {
	return &VegetablesHandler{
		repo:       repo,
		vegService: vegService,
		renderer:   renderer,
		cache:      c,
	}
}

// VegetableView is one vegetable with its resolved type name.
type VegetableView struct {
	ID       int64
	Name     string
	TypeName string
}

// VegetablesData holds data for the vegetables page template.
type VegetablesData struct {
	Unavailable bool
	Vegetables  []VegetableView
	TypeNames   []string
}

// List renders the vegetable catalog.
func (h *VegetablesHandler) List(w http.ResponseWriter, r *http.Request) {
	data := VegetablesData{}

	if h.repo == nil {
		data.Unavailable = true
	} else {
		vegetables, err := h.listVegetables(r.Context())
		if err != nil {
			logAndInternalError(w, "reading vegetables", "error", err)
			return
		}
		data.Vegetables = vegetables

		typeNames, err := h.typeNames(r.Context())
		if err != nil {
			logAndInternalError(w, "reading vegetable types", "error", err)
			return
		}
		data.TypeNames = typeNames
	}

	if err := h.renderer.Render(w, r, "admin/vegetables", pageData(r, "Vegetais", data)); err != nil {
		logAndInternalError(w, "rendering vegetables page", "error", err)
	}
}

// listVegetables reads every vegetable and resolves the type names in one
// pass over the types table.
func (h *VegetablesHandler) listVegetables(ctx context.Context) ([]VegetableView, error) {
	vegetables, err := h.repo.Read(ctx, "vegetables")
	if err != nil {
		return nil, err
	}
	vegetables.SortBy("name")

	types, err := h.repo.Read(ctx, "vegetable_types")
	if err != nil {
		return nil, err
	}
	typeByID := make(map[int64]string, len(types))
	for _, t := range types {
		typeByID[t.Int64("id")] = t.String("name")
	}

	views := make([]VegetableView, 0, len(vegetables))
	for _, v := range vegetables {
		views = append(views, VegetableView{
			ID:       v.Int64("id"),
			Name:     v.String("name"),
			TypeName: typeByID[v.Int64("type_id")],
		})
	}
	return views, nil
}

// typeNames returns the sorted type names, served from cache when warm.
func (h *VegetablesHandler) typeNames(ctx context.Context) ([]string, error) {
	if h.cache != nil {
		if raw, err := h.cache.Get(ctx, vegetableTypesCacheKey); err == nil {
			var names []string
			if err := json.Unmarshal(raw, &names); err == nil {
				return names, nil
			}
		}
	}

	types, err := h.repo.Read(ctx, "vegetable_types")
	if err != nil {
		return nil, err
	}
	types.SortBy("name")

	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, t.String("name"))
	}

	if h.cache != nil {
		if raw, err := json.Marshal(names); err == nil {
			if err := h.cache.Set(ctx, vegetableTypesCacheKey, raw, 5*time.Minute); err != nil {
				slog.Warn("caching vegetable types failed", "error", err)
			}
		}
	}

	return names, nil
}

// invalidateTypes drops the cached type list after a mutation.
func (h *VegetablesHandler) invalidateTypes(ctx context.Context) {
	if h.cache != nil {
		if err := h.cache.Delete(ctx, vegetableTypesCacheKey); err != nil {
			slog.Warn("invalidating vegetable types cache failed", "error", err)
		}
	}
}

// CreateType handles the new type form submission.
func (h *VegetablesHandler) CreateType(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteVegetables) {
		return
	}
	if h.repo == nil {
		flashError(w, r, h.renderer, RouteVegetables, "O banco de dados está desabilitado")
		return
	}

	name := r.FormValue("name")
	if name == "" {
		flashError(w, r, h.renderer, RouteVegetables, "Informe o nome do tipo")
		return
	}

	err := h.repo.Write(r.Context(), "vegetable_types", repository.Row{"name": name})
	if errors.Is(err, repository.ErrDuplicate) {
		flashError(w, r, h.renderer, RouteVegetables, "Já existe um tipo com esse nome")
		return
	}
	if err != nil {
		logAndInternalError(w, "creating vegetable type", "error", err)
		return
	}

	h.invalidateTypes(r.Context())
	flashSuccess(w, r, h.renderer, RouteVegetables, "Tipo cadastrado")
}

// DeleteType removes a type. A type still referenced by vegetables is
// reported, not deleted.
func (h *VegetablesHandler) DeleteType(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteVegetables) {
		return
	}
	if h.repo == nil {
		flashError(w, r, h.renderer, RouteVegetables, "O banco de dados está desabilitado")
		return
	}

	name := r.FormValue("name")
	_, err := h.repo.Delete(r.Context(), "vegetable_types", repository.Eq("name", name))
	if errors.Is(err, repository.ErrReferenced) {
		flashError(w, r, h.renderer, RouteVegetables,
			"Não foi possível remover: o tipo pode estar em uso por vegetais cadastrados")
		return
	}
	if err != nil {
		logAndInternalError(w, "deleting vegetable type", "error", err, "name", name)
		return
	}

	h.invalidateTypes(r.Context())
	flashSuccess(w, r, h.renderer, RouteVegetables, "Tipo removido")
}

// Create handles the new vegetable form submission. The chosen type must
// exist.
func (h *VegetablesHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteVegetables) {
		return
	}
	if h.repo == nil {
		flashError(w, r, h.renderer, RouteVegetables, "O banco de dados está desabilitado")
		return
	}

	name := r.FormValue("name")
	typeName := r.FormValue("type_name")
	if name == "" || typeName == "" {
		flashError(w, r, h.renderer, RouteVegetables, "Informe o nome e o tipo do vegetal")
		return
	}

	typeRow, err := h.repo.ReadOne(r.Context(), "vegetable_types", repository.Eq("name", typeName))
	if errors.Is(err, repository.ErrNotFound) {
		flashError(w, r, h.renderer, RouteVegetables, "Tipo de vegetal desconhecido")
		return
	}
	if err != nil {
		logAndInternalError(w, "looking up vegetable type", "error", err)
		return
	}

	err = h.repo.Write(r.Context(), "vegetables", repository.Row{
		"name":    name,
		"type_id": typeRow.Int64("id"),
	})
	if err != nil {
		logAndInternalError(w, "creating vegetable", "error", err)
		return
	}

	flashSuccess(w, r, h.renderer, RouteVegetables, "Vegetal cadastrado")
}

// Delete removes one vegetable.
func (h *VegetablesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteVegetables) {
		return
	}
	if h.repo == nil {
		flashError(w, r, h.renderer, RouteVegetables, "O banco de dados está desabilitado")
		return
	}

	name := r.FormValue("name")
	if _, err := h.repo.Delete(r.Context(), "vegetables", repository.Eq("name", name)); err != nil {
		logAndInternalError(w, "deleting vegetable", "error", err, "name", name)
		return
	}

	flashSuccess(w, r, h.renderer, RouteVegetables, "Vegetal removido")
}

// Reclassify moves a vegetable to another type and records the change in
// the audit trail. Both writes share one transaction.
func (h *VegetablesHandler) Reclassify(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteVegetables) {
		return
	}
	if h.vegService == nil {
		flashError(w, r, h.renderer, RouteVegetables, "O banco de dados está desabilitado")
		return
	}

	identity, ok := identityOr500(w, r)
	if !ok {
		return
	}

	vegetableName := r.FormValue("vegetable")
	newTypeName := r.FormValue("new_type")
	if vegetableName == "" || newTypeName == "" {
		flashError(w, r, h.renderer, RouteVegetables, "Informe o vegetal e o novo tipo")
		return
	}

	err := h.vegService.Reclassify(r.Context(), vegetableName, newTypeName, identity.Username)
	switch {
	case errors.Is(err, service.ErrUnknownVegetable):
		flashError(w, r, h.renderer, RouteVegetables, "Vegetal não encontrado")
	case errors.Is(err, service.ErrUnknownVegetableType):
		flashError(w, r, h.renderer, RouteVegetables, "Tipo de vegetal desconhecido")
	case err != nil:
		logAndInternalError(w, "reclassifying vegetable", "error", err)
	default:
		flashSuccess(w, r, h.renderer, RouteVegetables, "Vegetal reclassificado")
	}
}
