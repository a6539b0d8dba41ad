// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// CatSpecies is a row of the cat species demo screen.
type CatSpecies struct {
	ID            int64  `json:"id"`
	SpeciesName   string `json:"species_name"`
	OriginCountry string `json:"origin_country"`
	Temperament   string `json:"temperament"`
}

// VegetableType is a category a vegetable belongs to. The name is unique.
type VegetableType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Vegetable references its type by key. The reference is validated in
// application code before insert; the schema additionally restricts
// deleting a type that is still referenced.
type Vegetable struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	TypeID   int64  `json:"type_id"`
	TypeName string `json:"type_name,omitempty"` // joined, not stored
}

// AuditEntry records one reclassification: which vegetable moved from which
// type to which, by whom and when. Written only inside the reclassification
// transaction.
type AuditEntry struct {
	ID        int64     `json:"id"`
	Vegetable string    `json:"vegetable"`
	OldType   string    `json:"old_type"`
	NewType   string    `json:"new_type"`
	ChangedBy string    `json:"changed_by"`
	CreatedAt time.Time `json:"created_at"`
}
