// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/p19091985/nexlify-go/internal/repository"
	"github.com/p19091985/nexlify-go/internal/store"
)

// openTestDB opens a file-backed database through the production driver and
// pool settings, exactly as the server does at startup.
func openTestDB(t *testing.T) *repository.Repository {
	t.Helper()

	db, err := store.Open(store.DefaultOptions(filepath.Join(t.TempDir(), "nexlify.db")))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db, "sqlite"); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	// Drop every idle connection so the statements below run on fresh ones;
	// a pragma applied to only one pooled connection would not survive this.
	db.SetMaxIdleConns(0)
	db.SetMaxIdleConns(10)

	return repository.New(db)
}

func TestOpenEnforcesForeignKeysAcrossPool(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	if err := repo.Write(ctx, "vegetable_types", repository.Row{"name": "Raízes"}); err != nil {
		t.Fatalf("writing type: %v", err)
	}
	typeRow, err := repo.ReadOne(ctx, "vegetable_types", repository.Eq("name", "Raízes"))
	if err != nil {
		t.Fatalf("reading type: %v", err)
	}
	if err := repo.Write(ctx, "vegetables", repository.Row{
		"name":    "Cenoura",
		"type_id": typeRow.Int64("id"),
	}); err != nil {
		t.Fatalf("writing vegetable: %v", err)
	}

	if _, err := repo.Delete(ctx, "vegetable_types", repository.Eq("name", "Raízes")); !errors.Is(err, repository.ErrReferenced) {
		t.Fatalf("deleting referenced type: error = %v, want ErrReferenced", err)
	}

	if _, err := repo.ReadOne(ctx, "vegetable_types", repository.Eq("name", "Raízes")); err != nil {
		t.Errorf("referenced type is gone: %v", err)
	}
	if _, err := repo.ReadOne(ctx, "vegetables", repository.Eq("name", "Cenoura")); err != nil {
		t.Errorf("dependent vegetable is gone: %v", err)
	}
}

func TestOpenUniqueConstraintAcrossPool(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	if err := repo.Write(ctx, "vegetable_types", repository.Row{"name": "Folhosos"}); err != nil {
		t.Fatalf("writing type: %v", err)
	}
	if err := repo.Write(ctx, "vegetable_types", repository.Row{"name": "Folhosos"}); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("duplicate insert: error = %v, want ErrDuplicate", err)
	}
}
