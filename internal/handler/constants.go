// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"github.com/p19091985/nexlify-go/internal/model"
	"github.com/p19091985/nexlify-go/internal/render"
)

// Route constants used across handlers and the router.
const (
	RouteRoot       = "/"
	RouteLogin      = "/login"
	RouteLogout     = "/logout"
	RouteCats       = "/gatos"
	RouteVegetables = "/vegetais"
	RouteUsers      = "/usuarios"
	RouteAudit      = "/auditoria"
	RouteHealth     = "/healthz"
)

// PageDef describes one navigable page: its route, menu title and role
// allow-list. An empty allow-list means every authenticated user may open
// the page.
type PageDef struct {
	Path    string
	Title   string
	Allowed []model.Role
}

// analystRoles may manage the vegetable catalog and read the audit trail.
var analystRoles = []model.Role{
	model.RoleGlobalAdmin,
	model.RoleOperationsDirector,
	model.RoleITManager,
	model.RoleDataAnalyst,
}

// userAdminRoles may manage user accounts.
var userAdminRoles = []model.Role{
	model.RoleGlobalAdmin,
	model.RoleITManager,
}

// Pages is the complete navigation registry in menu order. The router uses
// the same allow-lists to guard the routes, so the menu never shows a page
// its viewer cannot open.
var Pages = []PageDef{
	{Path: RouteRoot, Title: "Início"},
	{Path: RouteCats, Title: "Gatos"},
	{Path: RouteVegetables, Title: "Vegetais", Allowed: analystRoles},
	{Path: RouteAudit, Title: "Auditoria", Allowed: analystRoles},
	{Path: RouteUsers, Title: "Usuários", Allowed: userAdminRoles},
}

// VisiblePages returns the navigation entries the given role may open.
func VisiblePages(role model.Role) []render.Page {
	var visible []render.Page
	for _, p := range Pages {
		if len(p.Allowed) == 0 {
			visible = append(visible, render.Page{Path: p.Path, Title: p.Title})
			continue
		}
		for _, allowed := range p.Allowed {
			if role == allowed {
				visible = append(visible, render.Page{Path: p.Path, Title: p.Title})
				break
			}
		}
	}
	return visible
}
