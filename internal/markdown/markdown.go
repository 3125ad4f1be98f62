// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package markdown renders publication body content to sanitized HTML.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// htmlSanitizer strips unsafe HTML from rendered markdown.
// UGCPolicy allows safe tags for user-generated content while
// removing scripts, event handlers, and other dangerous elements.
var htmlSanitizer = bluemonday.UGCPolicy()

var renderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// ToHTML converts markdown to sanitized HTML.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return htmlSanitizer.Sanitize(buf.String()), nil
}
