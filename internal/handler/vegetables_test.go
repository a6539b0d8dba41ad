// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/p19091985/nexlify-go/internal/cache"
	"github.com/p19091985/nexlify-go/internal/handler"
	"github.com/p19091985/nexlify-go/internal/repository"
	"github.com/p19091985/nexlify-go/internal/service"
	"github.com/p19091985/nexlify-go/internal/store"
	"github.com/p19091985/nexlify-go/internal/testutil"
)

func newVegetablesHandler(t *testing.T) (*handler.VegetablesHandler, *repository.Repository) {
	t.Helper()

	db := testutil.TestDB(t)
	if err := store.Seed(context.Background(), db, testutil.TestLogger()); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	repo := repository.New(db)
	vegService := service.NewVegetables(db, testutil.TestLogger())
	c := cache.NewMemory(time.Minute)
	t.Cleanup(func() { _ = c.Close() })

	return handler.NewVegetablesHandler(repo, vegService, testRenderer(t), c), repo
}

func TestVegetablesListShowsTypeNames(t *testing.T) {
	vh, _ := newVegetablesHandler(t)

	rec := httptest.NewRecorder()
	vh.List(rec, adminRequest(http.MethodGet, "/vegetais", nil))

	body := rec.Body.String()
	for _, want := range []string{"Cenoura", "Raízes", "Alface", "Folhosos"} {
		if !strings.Contains(body, want) {
			t.Errorf("vegetables page missing %q", want)
		}
	}
}

func TestVegetablesReclassifyWritesAudit(t *testing.T) {
	vh, repo := newVegetablesHandler(t)

	form := url.Values{
		"vegetable": {"Cenoura"},
		"new_type":  {"Frutos"},
	}
	rec := httptest.NewRecorder()
	vh.Reclassify(rec, adminRequest(http.MethodPost, "/vegetais/reclassificar", form))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("Reclassify status = %d, want redirect", rec.Code)
	}

	entries, err := repo.Read(context.Background(), "audit_log", repository.Eq("vegetable", "Cenoura"))
	if err != nil {
		t.Fatalf("reading audit log: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(entries))
	}
	if entries[0].String("changed_by") != "admin" {
		t.Errorf("changed_by = %q, want the viewer's login", entries[0].String("changed_by"))
	}
}

func TestVegetablesDeleteReferencedTypeKeepsRow(t *testing.T) {
	vh, repo := newVegetablesHandler(t)

	rec := httptest.NewRecorder()
	vh.DeleteType(rec, adminRequest(http.MethodPost, "/vegetais/tipos/excluir", url.Values{"name": {"Folhosos"}}))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("DeleteType status = %d, want redirect with flash", rec.Code)
	}

	if _, err := repo.ReadOne(context.Background(), "vegetable_types", repository.Eq("name", "Folhosos")); err != nil {
		t.Errorf("referenced type was deleted: %v", err)
	}
}

func TestVegetablesCreateRejectsUnknownType(t *testing.T) {
	vh, repo := newVegetablesHandler(t)

	form := url.Values{
		"name":      {"Mandioca"},
		"type_name": {"Tipo Inexistente"},
	}
	rec := httptest.NewRecorder()
	vh.Create(rec, adminRequest(http.MethodPost, "/vegetais", form))

	rows, err := repo.Read(context.Background(), "vegetables", repository.Eq("name", "Mandioca"))
	if err != nil {
		t.Fatalf("reading vegetables: %v", err)
	}
	if len(rows) != 0 {
		t.Error("vegetable created with unknown type")
	}
}

func TestVegetablesTypeCacheInvalidatedOnCreate(t *testing.T) {
	vh, _ := newVegetablesHandler(t)

	// Warm the cache.
	rec := httptest.NewRecorder()
	vh.List(rec, adminRequest(http.MethodGet, "/vegetais", nil))

	rec = httptest.NewRecorder()
	vh.CreateType(rec, adminRequest(http.MethodPost, "/vegetais/tipos", url.Values{"name": {"Tubérculos"}}))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("CreateType status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	vh.List(rec, adminRequest(http.MethodGet, "/vegetais", nil))
	if !strings.Contains(rec.Body.String(), "Tubérculos") {
		t.Error("new type missing from page; stale cache served")
	}
}

func TestVegetablesPageUnavailableWithoutDatabase(t *testing.T) {
	vh := handler.NewVegetablesHandler(nil, nil, testRenderer(t), nil)

	rec := httptest.NewRecorder()
	vh.List(rec, adminRequest(http.MethodGet, "/vegetais", nil))

	if !strings.Contains(rec.Body.String(), "O banco de dados está desabilitado") {
		t.Errorf("missing unavailability notice: %s", rec.Body.String())
	}
}
