// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package repository implements the generic table-oriented data access used
// by every CRUD screen: read, write, update and delete against a named table
// with a typed filter conjunction. Single operations auto-commit; the one
// multi-statement transaction in the system (vegetable reclassification)
// rebinds a repository to a *sql.Tx via WithTx.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so the same query code runs
// inside and outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Row is one table row as a column→value mapping.
type Row map[string]any

// Rows is a tabular result set. Order is storage order unless the caller
// re-sorts.
type Rows []Row

// Repository provides generic CRUD over named tables.
type Repository struct {
	db DBTX
}

// New creates a Repository bound to a database handle.
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// WithTx returns a Repository bound to the given transaction.
func (r *Repository) WithTx(tx *sql.Tx) *Repository {
	return &Repository{db: tx}
}

// Read fetches all rows of table matching the filter conjunction. A result
// with no matches is an empty slice, not an error.
func (r *Repository) Read(ctx context.Context, table string, filters ...Filter) (Rows, error) {
	if !validIdent(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	where, args, err := buildWhere(filters)
	if err != nil {
		return nil, err
	}

	query := "SELECT * FROM " + table + where
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", table, mapError(err))
	}
	defer func() { _ = rows.Close() }()

	return scanRows(rows)
}

// ReadOne fetches exactly one matching row, returning ErrNotFound when the
// filter matches nothing.
func (r *Repository) ReadOne(ctx context.Context, table string, filters ...Filter) (Row, error) {
	result, err := r.Read(ctx, table, filters...)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("%s: %w", table, ErrNotFound)
	}
	return result[0], nil
}

// Write inserts the given rows into table. All rows must share the same
// column set. A uniqueness violation surfaces as ErrDuplicate.
func (r *Repository) Write(ctx context.Context, table string, rows ...Row) error {
	if !validIdent(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	if len(rows) == 0 {
		return nil
	}

	cols := sortedColumns(rows[0])
	for _, c := range cols {
		if !validIdent(c) {
			return fmt.Errorf("invalid column name %q", c)
		}
	}

	placeholders := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ") + ")"
	tuples := make([]string, 0, len(rows))
	args := make([]any, 0, len(rows)*len(cols))

	for i, row := range rows {
		if len(row) != len(cols) {
			return fmt.Errorf("row %d has %d columns, want %d", i, len(row), len(cols))
		}
		for _, c := range cols {
			v, ok := row[c]
			if !ok {
				return fmt.Errorf("row %d is missing column %q", i, c)
			}
			args = append(args, v)
		}
		tuples = append(tuples, placeholders)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		table, strings.Join(cols, ", "), strings.Join(tuples, ", "))

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("writing to %s: %w", table, mapError(err))
	}
	return nil
}

// Update sets the given columns on every row matching the filter
// conjunction and returns the number of affected rows. Zero matches is a
// no-op, not an error. An empty filter is rejected to keep a missing WHERE
// from rewriting a whole table.
func (r *Repository) Update(ctx context.Context, table string, set Row, filters ...Filter) (int64, error) {
	if !validIdent(table) {
		return 0, fmt.Errorf("invalid table name %q", table)
	}
	if len(set) == 0 {
		return 0, fmt.Errorf("updating %s: no columns to set", table)
	}
	if len(filters) == 0 {
		return 0, fmt.Errorf("updating %s: refusing to update without a filter", table)
	}

	cols := sortedColumns(set)
	assigns := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols)+len(filters))
	for _, c := range cols {
		if !validIdent(c) {
			return 0, fmt.Errorf("invalid column name %q", c)
		}
		assigns = append(assigns, c+" = ?")
		args = append(args, set[c])
	}

	where, whereArgs, err := buildWhere(filters)
	if err != nil {
		return 0, err
	}
	args = append(args, whereArgs...)

	query := fmt.Sprintf("UPDATE %s SET %s%s", table, strings.Join(assigns, ", "), where)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("updating %s: %w", table, mapError(err))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("updating %s: %w", table, err)
	}
	return affected, nil
}

// Delete removes every row matching the filter conjunction and returns the
// number of removed rows. A delete blocked by dependent rows surfaces as
// ErrReferenced. An empty filter is rejected.
func (r *Repository) Delete(ctx context.Context, table string, filters ...Filter) (int64, error) {
	if !validIdent(table) {
		return 0, fmt.Errorf("invalid table name %q", table)
	}
	if len(filters) == 0 {
		return 0, fmt.Errorf("deleting from %s: refusing to delete without a filter", table)
	}

	where, args, err := buildWhere(filters)
	if err != nil {
		return 0, err
	}

	query := "DELETE FROM " + table + where
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("deleting from %s: %w", table, mapError(err))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleting from %s: %w", table, err)
	}
	return affected, nil
}

// scanRows materializes a *sql.Rows into the column→value representation.
func scanRows(rows *sql.Rows) (Rows, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	result := Rows{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		row := make(Row, len(cols))
		for i, c := range cols {
			// Normalize []byte so callers get comparable strings.
			if b, ok := values[i].([]byte); ok {
				row[c] = string(b)
			} else {
				row[c] = values[i]
			}
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return result, nil
}

// sortedColumns returns the row's column names in deterministic order.
func sortedColumns(row Row) []string {
	cols := make([]string, 0, len(row))
	for c := range row {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// String returns the row's value for col as a string, empty when absent or
// NULL. Integer and float values are formatted with fmt.
func (r Row) String(col string) string {
	v, ok := r[col]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// Int64 returns the row's value for col as int64, 0 when absent or not an
// integer.
func (r Row) Int64(col string) int64 {
	switch v := r[col].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}
