// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"

	"github.com/p19091985/nexlify-go/internal/auth"
	"github.com/p19091985/nexlify-go/internal/model"
	"github.com/p19091985/nexlify-go/internal/render"
	"github.com/p19091985/nexlify-go/internal/repository"
)

// UsersHandler handles the user accounts page.
type UsersHandler struct {
	repo     *repository.Repository
	renderer *render.Renderer
}

// NewUsersHandler creates a UsersHandler. repo may be nil when the database
// is disabled.
func NewUsersHandler(repo *repository.Repository, renderer *render.Renderer) *UsersHandler {
	return &UsersHandler{repo: repo, renderer: renderer}
}

// UserView is one account row as shown on the page. Password hashes never
// leave the handler.
type UserView struct {
	Login       string
	DisplayName string
	Role        string
}

// UsersData holds data for the users page template.
type UsersData struct {
	Unavailable bool
	Users       []UserView
	RoleNames   []string
}

// List renders the user accounts page.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	data := UsersData{RoleNames: model.RoleNames()}

	if h.repo == nil {
		data.Unavailable = true
	} else {
		users, err := h.repo.Read(r.Context(), "users")
		if err != nil {
			logAndInternalError(w, "reading users", "error", err)
			return
		}
		users.SortBy("login")

		for _, u := range users {
			data.Users = append(data.Users, UserView{
				Login:       u.String("login"),
				DisplayName: u.String("display_name"),
				Role:        u.String("role"),
			})
		}
	}

	if err := h.renderer.Render(w, r, "admin/users", pageData(r, "Usuários", data)); err != nil {
		logAndInternalError(w, "rendering users page", "error", err)
	}
}

// Create handles the new account form submission.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteUsers) {
		return
	}
	if h.repo == nil {
		flashError(w, r, h.renderer, RouteUsers, "O banco de dados está desabilitado")
		return
	}

	login := r.FormValue("login")
	password := r.FormValue("password")
	displayName := r.FormValue("display_name")
	if login == "" || password == "" || displayName == "" {
		flashError(w, r, h.renderer, RouteUsers, "Informe login, senha e nome de exibição")
		return
	}

	role, err := model.ParseRole(r.FormValue("role"))
	if err != nil {
		flashError(w, r, h.renderer, RouteUsers, "Perfil de acesso inválido")
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		logAndInternalError(w, "hashing password", "error", err)
		return
	}

	err = h.repo.Write(r.Context(), "users", repository.Row{
		"login":         login,
		"password_hash": hash,
		"display_name":  displayName,
		"role":          string(role),
	})
	if errors.Is(err, repository.ErrDuplicate) {
		flashError(w, r, h.renderer, RouteUsers, "Já existe um usuário com esse login")
		return
	}
	if err != nil {
		logAndInternalError(w, "creating user", "error", err)
		return
	}

	flashSuccess(w, r, h.renderer, RouteUsers, "Usuário cadastrado")
}

// Update handles the edit form submission. The login is immutable; only the
// display name, role and optionally the password change.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteUsers) {
		return
	}
	if h.repo == nil {
		flashError(w, r, h.renderer, RouteUsers, "O banco de dados está desabilitado")
		return
	}

	login := r.FormValue("login")
	displayName := r.FormValue("display_name")
	if login == "" || displayName == "" {
		flashError(w, r, h.renderer, RouteUsers, "Informe login e nome de exibição")
		return
	}

	role, err := model.ParseRole(r.FormValue("role"))
	if err != nil {
		flashError(w, r, h.renderer, RouteUsers, "Perfil de acesso inválido")
		return
	}

	set := repository.Row{
		"display_name": displayName,
		"role":         string(role),
	}
	if password := r.FormValue("password"); password != "" {
		hash, err := auth.HashPassword(password)
		if err != nil {
			logAndInternalError(w, "hashing password", "error", err)
			return
		}
		set["password_hash"] = hash
	}

	affected, err := h.repo.Update(r.Context(), "users", set, repository.Eq("login", login))
	if err != nil {
		logAndInternalError(w, "updating user", "error", err, "login", login)
		return
	}
	if affected == 0 {
		flashError(w, r, h.renderer, RouteUsers, "Usuário não encontrado")
		return
	}

	flashSuccess(w, r, h.renderer, RouteUsers, "Usuário atualizado")
}

// Delete removes one account by login. The viewer cannot remove their own
// account.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteUsers) {
		return
	}
	if h.repo == nil {
		flashError(w, r, h.renderer, RouteUsers, "O banco de dados está desabilitado")
		return
	}

	identity, ok := identityOr500(w, r)
	if !ok {
		return
	}

	login := r.FormValue("login")
	if login == identity.Username {
		flashError(w, r, h.renderer, RouteUsers, "Não é possível remover a própria conta")
		return
	}

	affected, err := h.repo.Delete(r.Context(), "users", repository.Eq("login", login))
	if err != nil {
		logAndInternalError(w, "deleting user", "error", err, "login", login)
		return
	}
	if affected == 0 {
		flashError(w, r, h.renderer, RouteUsers, "Usuário não encontrado")
		return
	}

	flashSuccess(w, r, h.renderer, RouteUsers, "Usuário removido")
}
