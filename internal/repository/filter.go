// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package repository

import (
	"fmt"
	"regexp"
	"strings"
)

// identPattern restricts table and column names to plain SQL identifiers.
// Identifiers are interpolated into statements (values never are), so
// anything else is rejected before a query is built.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Op is a filter comparison operator.
type Op string

// Supported operators. The CRUD screens only ever filter on equality; the
// remaining operators exist for list pages that narrow by time.
const (
	OpEq Op = "="
	OpNe Op = "<>"
	OpLt Op = "<"
	OpGt Op = ">"
)

// Filter is one field comparison. Filters passed to a repository operation
// are joined as an AND conjunction.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Eq builds an equality filter, the common case.
func Eq(field string, value any) Filter {
	return Filter{Field: field, Op: OpEq, Value: value}
}

// validIdent reports whether s can be used as a table or column name.
func validIdent(s string) bool {
	return identPattern.MatchString(s)
}

// buildWhere renders the filters as a WHERE clause with placeholders.
// Returns an empty clause when there are no filters.
func buildWhere(filters []Filter) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, nil
	}

	conds := make([]string, 0, len(filters))
	args := make([]any, 0, len(filters))
	for _, f := range filters {
		if !validIdent(f.Field) {
			return "", nil, fmt.Errorf("invalid filter field %q", f.Field)
		}
		switch f.Op {
		case OpEq, OpNe, OpLt, OpGt:
		default:
			return "", nil, fmt.Errorf("invalid filter operator %q", f.Op)
		}
		conds = append(conds, fmt.Sprintf("%s %s ?", f.Field, f.Op))
		args = append(args, f.Value)
	}

	return " WHERE " + strings.Join(conds, " AND "), args, nil
}
