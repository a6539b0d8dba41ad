// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"strings"
	"testing"
)

func TestMarkdown(t *testing.T) {
	html, err := Markdown("# Painel\n\nBem-vindo ao **painel**.")
	if err != nil {
		t.Fatalf("Markdown() error = %v", err)
	}

	s := string(html)
	if !strings.Contains(s, "<h1") || !strings.Contains(s, "Painel") {
		t.Errorf("missing heading in output: %s", s)
	}
	if !strings.Contains(s, "<strong>painel</strong>") {
		t.Errorf("missing bold text in output: %s", s)
	}
}

func TestMarkdownStripsScripts(t *testing.T) {
	html, err := Markdown("Olá\n\n<script>alert('x')</script>")
	if err != nil {
		t.Fatalf("Markdown() error = %v", err)
	}

	if strings.Contains(string(html), "<script") {
		t.Errorf("script tag survived sanitization: %s", html)
	}
}
