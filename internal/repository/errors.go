// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Sentinel errors for the store-layer taxonomy. Page controllers check these
// with errors.Is and convert them to user-facing messages; raw driver errors
// never reach a page.
var (
	// ErrDuplicate is returned when an insert violates a uniqueness
	// constraint (e.g. a second user with the same login).
	ErrDuplicate = errors.New("duplicate key")

	// ErrReferenced is returned when a delete is blocked because other rows
	// still reference the target key.
	ErrReferenced = errors.New("row is referenced by dependent rows")

	// ErrNotFound is returned by lookups that require exactly one row.
	ErrNotFound = errors.New("not found")
)

// MySQL server error numbers for constraint violations.
const (
	mysqlErrDupEntry     = 1062
	mysqlErrRowIsRef     = 1451
	mysqlErrNoReferenced = 1452
)

// mapError translates driver-specific constraint errors into the sentinel
// taxonomy, wrapping so the original error stays inspectable.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return errors.Join(ErrDuplicate, err)
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, sqlite3.SQLITE_CONSTRAINT_TRIGGER:
			return errors.Join(ErrReferenced, err)
		}
		return err
	}

	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlErrDupEntry:
			return errors.Join(ErrDuplicate, err)
		case mysqlErrRowIsRef, mysqlErrNoReferenced:
			return errors.Join(ErrReferenced, err)
		}
		return err
	}

	// Fallback for SQLite drivers that report constraint violations only
	// through the error text (the cgo driver used in tests does).
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"),
		strings.Contains(msg, "PRIMARY KEY constraint failed"):
		return errors.Join(ErrDuplicate, err)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return errors.Join(ErrReferenced, err)
	}

	return err
}
