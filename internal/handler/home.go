// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"html/template"
	"net/http"

	"github.com/p19091985/nexlify-go/internal/render"
)

// homeMarkdown is the welcome text shown on the panel home page.
const homeMarkdown = `# Painel Administrativo

Bem-vindo ao painel de administração.

Use o menu para navegar entre as páginas disponíveis para o seu perfil:

* **Gatos** — catálogo de espécies de gatos
* **Vegetais** — catálogo de vegetais, tipos e reclassificação
* **Auditoria** — trilha de reclassificações
* **Usuários** — contas e perfis de acesso
`

// HomeHandler renders the panel home page.
type HomeHandler struct {
	renderer *render.Renderer
	body     template.HTML
}

// NewHomeHandler creates a HomeHandler with the welcome text converted from
// markdown once at startup.
func NewHomeHandler(renderer *render.Renderer) (*HomeHandler, error) {
	body, err := render.Markdown(homeMarkdown)
	if err != nil {
		return nil, err
	}
	return &HomeHandler{renderer: renderer, body: body}, nil
}

// HomeData holds data for the home page template.
type HomeData struct {
	Body template.HTML
}

// Home renders the panel home page.
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	data := pageData(r, "Início", HomeData{Body: h.body})
	if err := h.renderer.Render(w, r, "admin/home", data); err != nil {
		logAndInternalError(w, "rendering home page", "error", err)
	}
}
