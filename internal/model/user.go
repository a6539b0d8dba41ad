// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// User represents a persisted panel user. Login is unique and immutable
// after creation; the password hash is never rendered or logged.
type User struct {
	ID           int64        `json:"id"`
	Login        string       `json:"login"`
	PasswordHash string       `json:"-"` // Never expose in JSON
	DisplayName  string       `json:"display_name"`
	Role         Role         `json:"role"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	LastLoginAt  sql.NullTime `json:"last_login_at,omitempty"`
}

// Identity is the authenticated user's view held for the session. It is the
// sole source of truth for "who is acting" and is consulted by the access
// control gate on every page.
type Identity struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Role        Role   `json:"role"`
}

// Identity derives the session identity from a stored user record.
func (u *User) Identity() Identity {
	return Identity{
		Username:    u.Login,
		DisplayName: u.DisplayName,
		Role:        u.Role,
	}
}

// DevIdentity is installed directly when authentication is disabled by
// configuration, bypassing the login flow entirely.
var DevIdentity = Identity{
	Username:    "dev_user",
	DisplayName: "Usuário de Desenvolvimento",
	Role:        RoleGlobalAdmin,
}
