// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package repository

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ptCollator orders strings by Brazilian Portuguese collation so accented
// names (Abóbora, Açaí) sort where a pt-BR reader expects them instead of
// after 'z'.
var ptCollator = collate.New(language.BrazilianPortuguese, collate.IgnoreCase)

// SortBy orders rows by the string value of col using pt-BR collation.
// Rows are sorted in place; the stable order keeps equal keys in storage
// order.
func (rs Rows) SortBy(col string) {
	sort.SliceStable(rs, func(i, j int) bool {
		return ptCollator.CompareString(rs[i].String(col), rs[j].String(col)) < 0
	})
}

// SortByDesc orders rows by col in descending pt-BR collation order.
func (rs Rows) SortByDesc(col string) {
	sort.SliceStable(rs, func(i, j int) bool {
		return ptCollator.CompareString(rs[i].String(col), rs[j].String(col)) > 0
	})
}
