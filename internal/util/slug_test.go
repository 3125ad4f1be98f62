// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Hello World", "hello-world"},
		{"accents", "Café de l'Été", "cafe-de-lete"},
		{"punctuation", "What's New? (2025 Edition)", "whats-new-2025-edition"},
		{"multiple spaces", "a   b", "a-b"},
		{"leading and trailing", "  --Trimmed--  ", "trimmed"},
		{"numbers kept", "Issue 42", "issue-42"},
		{"only symbols", "!!!", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsValidSlug(t *testing.T) {
	valid := []string{"hello", "hello-world", "a1-b2", "42"}
	for _, s := range valid {
		if !IsValidSlug(s) {
			t.Errorf("IsValidSlug(%q) = false, want true", s)
		}
	}

	invalid := []string{"", "-leading", "trailing-", "double--hyphen", "Upper", "with space", "émigré"}
	for _, s := range invalid {
		if IsValidSlug(s) {
			t.Errorf("IsValidSlug(%q) = true, want false", s)
		}
	}
}

func TestSlugifyProducesValidSlug(t *testing.T) {
	inputs := []string{"Hello World", "Café de l'Été", "Issue 42", "  --Trimmed--  "}
	for _, s := range inputs {
		slug := Slugify(s)
		if slug != "" && !IsValidSlug(slug) {
			t.Errorf("Slugify(%q) = %q, which is not a valid slug", s, slug)
		}
	}
}
