// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic maintenance jobs. The only job today
// is the audit log retention sweep.
package scheduler

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/p19091985/nexlify-go/internal/repository"
)

// Scheduler owns the cron instance and the registered jobs.
type Scheduler struct {
	cron          *cron.Cron
	repo          *repository.Repository
	logger        *slog.Logger
	retentionDays int
}

// New creates a Scheduler. A retention of zero or less disables the audit
// sweep.
func New(db *sql.DB, retentionDays int, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:          cron.New(),
		repo:          repository.New(db),
		logger:        logger,
		retentionDays: retentionDays,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if s.retentionDays > 0 {
		if _, err := s.cron.AddFunc("@daily", s.runAuditSweep); err != nil {
			return fmt.Errorf("registering audit sweep: %w", err)
		}
		s.logger.Info("audit retention sweep scheduled",
			"schedule", "@daily",
			"retention_days", s.retentionDays)
	}

	s.cron.Start()
	return nil
}

// Stop stops the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) runAuditSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := s.SweepAuditLog(ctx); err != nil {
		s.logger.Error("audit retention sweep failed", "error", err)
	}
}

// SweepAuditLog deletes audit entries older than the retention window and
// returns the number of removed rows. Each run gets a unique ID so its log
// lines can be correlated.
func (s *Scheduler) SweepAuditLog(ctx context.Context) (int64, error) {
	runID := uuid.NewString()
	cutoff := time.Now().UTC().AddDate(0, 0, -s.retentionDays).Format("2006-01-02 15:04:05")

	removed, err := s.repo.Delete(ctx, "audit_log",
		repository.Filter{Field: "created_at", Op: repository.OpLt, Value: cutoff})
	if err != nil {
		return 0, fmt.Errorf("sweeping audit log: %w", err)
	}

	s.logger.Info("audit retention sweep finished",
		"run_id", runID,
		"cutoff", cutoff,
		"removed", removed)

	return removed, nil
}
