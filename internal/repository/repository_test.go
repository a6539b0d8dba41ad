// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/p19091985/nexlify-go/internal/repository"
	"github.com/p19091985/nexlify-go/internal/testutil"
)

func TestReadEmptyTable(t *testing.T) {
	repo := repository.New(testutil.TestDB(t))

	rows, err := repo.Read(context.Background(), "cat_species")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Read() returned %d rows, want 0", len(rows))
	}
}

func TestWriteAndRead(t *testing.T) {
	repo := repository.New(testutil.TestDB(t))
	ctx := context.Background()

	err := repo.Write(ctx, "cat_species",
		repository.Row{"species_name": "Siamês", "origin_country": "Tailândia", "temperament": "Vocal"},
		repository.Row{"species_name": "Persa", "origin_country": "Irã", "temperament": "Calmo"},
	)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	rows, err := repo.Read(ctx, "cat_species", repository.Eq("species_name", "Persa"))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Read() returned %d rows, want 1", len(rows))
	}
	if got := rows[0].String("origin_country"); got != "Irã" {
		t.Errorf("origin_country = %q, want %q", got, "Irã")
	}
}

func TestWriteDuplicateKeepsFirstRow(t *testing.T) {
	repo := repository.New(testutil.TestDB(t))
	ctx := context.Background()

	first := repository.Row{
		"login":         "maria",
		"password_hash": "hash-a",
		"display_name":  "Maria Silva",
		"role":          "Gerente de TI",
	}
	if err := repo.Write(ctx, "users", first); err != nil {
		t.Fatalf("Write() first error = %v", err)
	}

	dup := repository.Row{
		"login":         "maria",
		"password_hash": "hash-b",
		"display_name":  "Maria Souza",
		"role":          "Operador de Linha",
	}
	err := repo.Write(ctx, "users", dup)
	if !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("Write() duplicate error = %v, want ErrDuplicate", err)
	}

	rows, err := repo.Read(ctx, "users", repository.Eq("login", "maria"))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Read() returned %d rows, want 1", len(rows))
	}
	if got := rows[0].String("display_name"); got != "Maria Silva" {
		t.Errorf("display_name = %q, want original row kept", got)
	}
}

func TestUpdateZeroMatchesIsNoOp(t *testing.T) {
	repo := repository.New(testutil.TestDB(t))
	ctx := context.Background()

	if err := repo.Write(ctx, "vegetable_types", repository.Row{"name": "Folhosos"}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	affected, err := repo.Update(ctx, "vegetable_types",
		repository.Row{"name": "Raízes"},
		repository.Eq("name", "Inexistente"))
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if affected != 0 {
		t.Errorf("Update() affected = %d, want 0", affected)
	}

	rows, err := repo.Read(ctx, "vegetable_types")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(rows) != 1 || rows[0].String("name") != "Folhosos" {
		t.Errorf("table changed after zero-match update: %v", rows)
	}
}

func TestUpdateRequiresFilter(t *testing.T) {
	repo := repository.New(testutil.TestDB(t))

	_, err := repo.Update(context.Background(), "users", repository.Row{"role": "Auditor Externo"})
	if err == nil {
		t.Fatal("Update() without filter succeeded, want error")
	}
}

func TestDeleteReferencedRowFails(t *testing.T) {
	repo := repository.New(testutil.TestDB(t))
	ctx := context.Background()

	if err := repo.Write(ctx, "vegetable_types", repository.Row{"name": "Folhosos"}); err != nil {
		t.Fatalf("Write() type error = %v", err)
	}
	types, err := repo.Read(ctx, "vegetable_types", repository.Eq("name", "Folhosos"))
	if err != nil || len(types) != 1 {
		t.Fatalf("Read() types = %v, err = %v", types, err)
	}

	err = repo.Write(ctx, "vegetables", repository.Row{
		"name":    "Alface",
		"type_id": types[0].Int64("id"),
	})
	if err != nil {
		t.Fatalf("Write() vegetable error = %v", err)
	}

	_, err = repo.Delete(ctx, "vegetable_types", repository.Eq("name", "Folhosos"))
	if !errors.Is(err, repository.ErrReferenced) {
		t.Fatalf("Delete() error = %v, want ErrReferenced", err)
	}

	// Both tables must be unchanged after the failed delete.
	for _, table := range []string{"vegetable_types", "vegetables"} {
		rows, err := repo.Read(ctx, table)
		if err != nil {
			t.Fatalf("Read(%s) error = %v", table, err)
		}
		if len(rows) != 1 {
			t.Errorf("Read(%s) returned %d rows, want 1", table, len(rows))
		}
	}
}

func TestDeleteUnreferencedRow(t *testing.T) {
	repo := repository.New(testutil.TestDB(t))
	ctx := context.Background()

	if err := repo.Write(ctx, "vegetable_types", repository.Row{"name": "Tubérculos"}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	affected, err := repo.Delete(ctx, "vegetable_types", repository.Eq("name", "Tubérculos"))
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if affected != 1 {
		t.Errorf("Delete() affected = %d, want 1", affected)
	}
}

func TestDeleteRequiresFilter(t *testing.T) {
	repo := repository.New(testutil.TestDB(t))

	_, err := repo.Delete(context.Background(), "users")
	if err == nil {
		t.Fatal("Delete() without filter succeeded, want error")
	}
}

func TestInvalidIdentifiersRejected(t *testing.T) {
	repo := repository.New(testutil.TestDB(t))
	ctx := context.Background()

	if _, err := repo.Read(ctx, "users; DROP TABLE users"); err == nil {
		t.Error("Read() with invalid table name succeeded")
	}
	if err := repo.Write(ctx, "users", repository.Row{"login = ''; --": "x"}); err == nil {
		t.Error("Write() with invalid column name succeeded")
	}
	if _, err := repo.Read(ctx, "users", repository.Filter{Field: "login", Op: "LIKE", Value: "%"}); err == nil {
		t.Error("Read() with unsupported operator succeeded")
	}
}

func TestReadOne(t *testing.T) {
	repo := repository.New(testutil.TestDB(t))
	ctx := context.Background()

	_, err := repo.ReadOne(ctx, "vegetable_types", repository.Eq("name", "Nada"))
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("ReadOne() error = %v, want ErrNotFound", err)
	}

	if err := repo.Write(ctx, "vegetable_types", repository.Row{"name": "Legumes"}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	row, err := repo.ReadOne(ctx, "vegetable_types", repository.Eq("name", "Legumes"))
	if err != nil {
		t.Fatalf("ReadOne() error = %v", err)
	}
	if row.String("name") != "Legumes" {
		t.Errorf("ReadOne() name = %q, want %q", row.String("name"), "Legumes")
	}
}

func TestWithTxRollback(t *testing.T) {
	db := testutil.TestDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx() error = %v", err)
	}

	txRepo := repo.WithTx(tx)
	if err := txRepo.Write(ctx, "vegetable_types", repository.Row{"name": "Folhosos"}); err != nil {
		t.Fatalf("Write() in tx error = %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	rows, err := repo.Read(ctx, "vegetable_types")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("rollback left %d rows, want 0", len(rows))
	}
}

func TestSortByPortugueseCollation(t *testing.T) {
	rows := repository.Rows{
		{"name": "Cenoura"},
		{"name": "Abóbora"},
		{"name": "abacate"},
		{"name": "Beterraba"},
	}
	rows.SortBy("name")

	want := []string{"abacate", "Abóbora", "Beterraba", "Cenoura"}
	for i, w := range want {
		if got := rows[i].String("name"); got != w {
			t.Errorf("rows[%d] = %q, want %q", i, got, w)
		}
	}
}
