// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/p19091985/nexlify-go/internal/auth"
	"github.com/p19091985/nexlify-go/internal/model"
	"github.com/p19091985/nexlify-go/internal/repository"
)

// DefaultAdminLogin is the login of the account created on first startup.
const DefaultAdminLogin = "admin"

// defaultAdminPassword is only ever written hashed. Operators are expected
// to change it after the first login.
const defaultAdminPassword = "changeme"

// Seed populates an empty database with the default administrator and the
// demo catalog rows. It is idempotent: a database that already has users is
// left untouched.
func Seed(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	repo := repository.New(db)

	existing, err := repo.Read(ctx, "users", repository.Eq("login", DefaultAdminLogin))
	if err != nil {
		return fmt.Errorf("checking for existing admin: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	hash, err := auth.HashPassword(defaultAdminPassword)
	if err != nil {
		return fmt.Errorf("hashing default admin password: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	txRepo := repo.WithTx(tx)

	err = txRepo.Write(ctx, "users", repository.Row{
		"login":         DefaultAdminLogin,
		"password_hash": hash,
		"display_name":  "Administrador",
		"role":          string(model.RoleGlobalAdmin),
	})
	if err != nil {
		return fmt.Errorf("seeding admin user: %w", err)
	}

	err = txRepo.Write(ctx, "cat_species",
		repository.Row{"species_name": "Siamês", "origin_country": "Tailândia", "temperament": "Vocal e sociável"},
		repository.Row{"species_name": "Persa", "origin_country": "Irã", "temperament": "Calmo e dócil"},
		repository.Row{"species_name": "Maine Coon", "origin_country": "Estados Unidos", "temperament": "Gentil e brincalhão"},
	)
	if err != nil {
		return fmt.Errorf("seeding cat species: %w", err)
	}

	err = txRepo.Write(ctx, "vegetable_types",
		repository.Row{"name": "Folhosos"},
		repository.Row{"name": "Raízes"},
		repository.Row{"name": "Frutos"},
	)
	if err != nil {
		return fmt.Errorf("seeding vegetable types: %w", err)
	}

	vegetables := []struct {
		name     string
		typeName string
	}{
		{"Alface", "Folhosos"},
		{"Couve", "Folhosos"},
		{"Cenoura", "Raízes"},
		{"Beterraba", "Raízes"},
		{"Tomate", "Frutos"},
		{"Abobrinha", "Frutos"},
	}
	for _, v := range vegetables {
		typeRow, err := txRepo.ReadOne(ctx, "vegetable_types", repository.Eq("name", v.typeName))
		if err != nil {
			return fmt.Errorf("looking up vegetable type %q: %w", v.typeName, err)
		}
		err = txRepo.Write(ctx, "vegetables", repository.Row{
			"name":    v.name,
			"type_id": typeRow.Int64("id"),
		})
		if err != nil {
			return fmt.Errorf("seeding vegetable %q: %w", v.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed transaction: %w", err)
	}

	logger.Info("database seeded",
		"admin_login", DefaultAdminLogin,
		"vegetables", len(vegetables))

	return nil
}
