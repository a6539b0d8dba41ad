// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/p19091985/nexlify-go/internal/repository"
	"github.com/p19091985/nexlify-go/internal/testutil"
)

func TestSweepAuditLogRemovesOldEntries(t *testing.T) {
	db := testutil.TestDB(t)
	ctx := context.Background()
	repo := repository.New(db)

	old := time.Now().UTC().AddDate(0, 0, -120).Format("2006-01-02 15:04:05")
	recent := time.Now().UTC().Format("2006-01-02 15:04:05")

	for _, row := range []repository.Row{
		{"vegetable": "Alface", "old_type": "Raízes", "new_type": "Folhosos", "changed_by": "admin", "created_at": old},
		{"vegetable": "Tomate", "old_type": "Folhosos", "new_type": "Frutos", "changed_by": "admin", "created_at": recent},
	} {
		if err := repo.Write(ctx, "audit_log", row); err != nil {
			t.Fatalf("seeding audit entry: %v", err)
		}
	}

	s := New(db, 90, testutil.TestLogger())
	removed, err := s.SweepAuditLog(ctx)
	if err != nil {
		t.Fatalf("SweepAuditLog() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	rows, err := repo.Read(ctx, "audit_log")
	if err != nil {
		t.Fatalf("reading audit log: %v", err)
	}
	if len(rows) != 1 || rows[0].String("vegetable") != "Tomate" {
		t.Errorf("remaining rows = %v, want only the recent entry", rows)
	}
}

func TestSweepAuditLogKeepsEverythingInsideWindow(t *testing.T) {
	db := testutil.TestDB(t)
	ctx := context.Background()
	repo := repository.New(db)

	err := repo.Write(ctx, "audit_log", repository.Row{
		"vegetable":  "Cenoura",
		"old_type":   "Raízes",
		"new_type":   "Frutos",
		"changed_by": "admin",
	})
	if err != nil {
		t.Fatalf("seeding audit entry: %v", err)
	}

	s := New(db, 90, testutil.TestLogger())
	removed, err := s.SweepAuditLog(ctx)
	if err != nil {
		t.Fatalf("SweepAuditLog() error = %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}
}

func TestStartWithoutRetentionDisablesSweep(t *testing.T) {
	db := testutil.TestDB(t)

	s := New(db, 0, testutil.TestLogger())
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	if entries := s.cron.Entries(); len(entries) != 0 {
		t.Errorf("cron has %d entries, want 0 when retention is disabled", len(entries))
	}
}
