// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/p19091985/nexlify-go/internal/repository"
)

// ErrUnknownVegetableType is returned when a reclassification names a type
// that does not exist.
var ErrUnknownVegetableType = errors.New("unknown vegetable type")

// ErrUnknownVegetable is returned when a reclassification names a vegetable
// that does not exist.
var ErrUnknownVegetable = errors.New("unknown vegetable")

// Vegetables implements the reclassification operation. It is the only
// multi-statement write in the system: the vegetable update and the audit
// row must land together or not at all.
type Vegetables struct {
	db     *sql.DB
	repo   *repository.Repository
	logger *slog.Logger
}

// NewVegetables creates a Vegetables service.
func NewVegetables(db *sql.DB, logger *slog.Logger) *Vegetables {
	return &Vegetables{db: db, repo: repository.New(db), logger: logger}
}

// Reclassify moves the named vegetable to the named type and records an
// audit entry with the actor's login. Both writes happen in one transaction;
// any failure rolls back both.
func (v *Vegetables) Reclassify(ctx context.Context, vegetableName, newTypeName, actor string) error {
	tx, err := v.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting reclassification: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	repo := v.repo.WithTx(tx)

	vegetable, err := repo.ReadOne(ctx, "vegetables", repository.Eq("name", vegetableName))
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %q", ErrUnknownVegetable, vegetableName)
	}
	if err != nil {
		return fmt.Errorf("looking up vegetable: %w", err)
	}

	newType, err := repo.ReadOne(ctx, "vegetable_types", repository.Eq("name", newTypeName))
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %q", ErrUnknownVegetableType, newTypeName)
	}
	if err != nil {
		return fmt.Errorf("looking up vegetable type: %w", err)
	}

	oldType, err := repo.ReadOne(ctx, "vegetable_types", repository.Eq("id", vegetable.Int64("type_id")))
	if err != nil {
		return fmt.Errorf("looking up current type: %w", err)
	}

	if _, err := repo.Update(ctx, "vegetables",
		repository.Row{"type_id": newType.Int64("id")},
		repository.Eq("name", vegetableName)); err != nil {
		return fmt.Errorf("updating vegetable: %w", err)
	}

	err = repo.Write(ctx, "audit_log", repository.Row{
		"vegetable":  vegetableName,
		"old_type":   oldType.String("name"),
		"new_type":   newTypeName,
		"changed_by": actor,
	})
	if err != nil {
		return fmt.Errorf("writing audit entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing reclassification: %w", err)
	}

	v.logger.Info("vegetable reclassified",
		"vegetable", vegetableName,
		"old_type", oldType.String("name"),
		"new_type", newTypeName,
		"changed_by", actor)

	return nil
}
