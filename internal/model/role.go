// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the
// application including User, Identity, the Role enumeration and the
// vegetable/cat/audit entities.
package model

import "fmt"

// Role is a named permission tier gating page visibility.
// The set of valid values is closed; anything outside it is rejected at the
// boundary where a role enters the system (form submission, row read,
// session load).
type Role string

// Access profiles of the control panel. The Portuguese names are fixed
// product vocabulary and double as the stored column values.
const (
	RoleGlobalAdmin          Role = "Administrador Global"
	RoleOperationsDirector   Role = "Diretor de Operações"
	RoleITManager            Role = "Gerente de TI"
	RoleProductionSupervisor Role = "Supervisor de Produção"
	RoleLineOperator         Role = "Operador de Linha"
	RoleDataAnalyst          Role = "Analista de Dados"
	RoleExternalAuditor      Role = "Auditor Externo"
)

// AllRoles lists every valid role in display order.
var AllRoles = []Role{
	RoleGlobalAdmin,
	RoleOperationsDirector,
	RoleITManager,
	RoleProductionSupervisor,
	RoleLineOperator,
	RoleDataAnalyst,
	RoleExternalAuditor,
}

// Valid reports whether r is a member of the closed role enumeration.
func (r Role) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer.
func (r Role) String() string { return string(r) }

// ParseRole converts a raw string into a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// RoleNames returns the role values as plain strings, handy for select
// inputs in templates.
func RoleNames() []string {
	names := make([]string, len(AllRoles))
	for i, r := range AllRoles {
		names[i] = string(r)
	}
	return names
}
