// Copyright (c) 2025 Adrian Voicu
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/glamour"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdownRenderer renders librarian answers for terminal display.
type markdownRenderer struct {
	renderer *glamour.TermRenderer
}

// newMarkdownRenderer creates a renderer wrapping at the given width.
// A nil inner renderer means rendering is unavailable and content
// passes through unchanged.
func newMarkdownRenderer(wrap int) *markdownRenderer {
	if wrap <= 0 {
		wrap = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return &markdownRenderer{}
	}
	return &markdownRenderer{renderer: r}
}

// Render returns the content formatted for the terminal, or the
// original content when rendering fails.
func (m *markdownRenderer) Render(content string) string {
	if m == nil || m.renderer == nil {
		return content
	}
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
