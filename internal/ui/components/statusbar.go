// Copyright (c) 2025 Adrian Voicu
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/avoicu/librarian-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// Shortcut is one key binding shown in the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// StatusBar renders the bottom line: key hints on the left, a status
// note on the right.
type StatusBar struct {
	Shortcuts []Shortcut
	Note      string
	Width     int
	theme     *styles.Theme
}

// NewStatusBar creates a status bar with the given shortcuts.
func NewStatusBar(theme *styles.Theme, shortcuts []Shortcut) *StatusBar {
	return &StatusBar{
		Shortcuts: shortcuts,
		Width:     80,
		theme:     theme,
	}
}

// SetWidth updates the available width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetNote sets the right-hand status text.
func (s *StatusBar) SetNote(note string) {
	s.Note = note
}

// View renders the status bar as a single line.
func (s *StatusBar) View() string {
	var parts []string
	for _, sc := range s.Shortcuts {
		parts = append(parts,
			s.theme.ShortcutKey.Render(sc.Key)+" "+s.theme.ShortcutDesc.Render(sc.Desc))
	}
	left := strings.Join(parts, "  ")

	if s.Note != "" {
		note := s.theme.ShortcutDesc.Render(s.Note)
		return s.theme.StatusBar.Width(s.Width).Render(left + "  " + note)
	}
	return s.theme.StatusBar.Width(s.Width).Render(left)
}
