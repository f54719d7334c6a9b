// Copyright (c) 2025 Adrian Voicu
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/avoicu/librarian-tui/internal/ui/styles"
	"github.com/avoicu/librarian-tui/internal/util"
)

// =============================================================================
// HEADER
// =============================================================================

// Header is the title bar: app name on the left, conversation title in
// the middle, signed-in user on the right.
type Header struct {
	Title    string
	Subtitle string
	UserID   string
	Width    int
	theme    *styles.Theme
}

// NewHeader creates a header with the app name.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title: "librarian",
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the available width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetSubtitle sets the conversation title shown in the middle.
func (h *Header) SetSubtitle(subtitle string) {
	h.Subtitle = subtitle
}

// SetUser sets the signed-in identity shown on the right.
func (h *Header) SetUser(email string) {
	h.UserID = email
}

// View renders the header as a single line.
func (h *Header) View() string {
	left := h.theme.HeaderTitle.Render(h.Title)

	middle := ""
	if h.Subtitle != "" {
		middle = h.theme.HeaderSubtitle.Render(util.TruncateWidth(h.Subtitle, h.Width/2))
	}

	right := ""
	if h.UserID != "" {
		right = h.theme.HeaderSubtitle.Render(h.UserID)
	}

	gap := h.Width - lipgloss.Width(left) - lipgloss.Width(middle) - lipgloss.Width(right)
	if gap < 2 {
		return h.theme.Header.Width(h.Width).Render(left + " " + middle)
	}

	leftGap := gap / 2
	rightGap := gap - leftGap
	line := left + spaces(leftGap) + middle + spaces(rightGap) + right
	return h.theme.Header.Width(h.Width).Render(line)
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = ' '
	}
	return string(buf)
}
