// Copyright (c) 2025 Adrian Voicu
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/avoicu/librarian-tui/internal/ui/styles"
)

// =============================================================================
// TYPING SPINNER
// =============================================================================

// Spinner shows that the librarian is composing an answer.
type Spinner struct {
	spinner   spinner.Model
	message   string
	startTime time.Time
	active    bool
	theme     *styles.Theme
}

// NewSpinner creates a spinner with ASCII-compatible frames.
func NewSpinner(theme *styles.Theme) Spinner {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	s.Style = theme.Spinner

	return Spinner{
		spinner: s,
		message: "The librarian is thinking",
		theme:   theme,
	}
}

// Start activates the spinner and resets its timer.
func (s *Spinner) Start() tea.Cmd {
	s.active = true
	s.startTime = time.Now()
	return s.spinner.Tick
}

// Stop deactivates the spinner.
func (s *Spinner) Stop() {
	s.active = false
}

// Active reports whether the spinner is running.
func (s *Spinner) Active() bool {
	return s.active
}

// SetMessage changes the text next to the spinner.
func (s *Spinner) SetMessage(msg string) {
	s.message = msg
}

// Update advances the spinner animation.
func (s *Spinner) Update(msg tea.Msg) tea.Cmd {
	if !s.active {
		return nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return cmd
}

// View renders the spinner line, or an empty string when inactive.
func (s *Spinner) View() string {
	if !s.active {
		return ""
	}
	elapsed := time.Since(s.startTime).Round(time.Second)
	text := s.message
	if elapsed >= 2*time.Second {
		text = fmt.Sprintf("%s (%s)", s.message, elapsed)
	}
	return s.spinner.View() + " " + s.theme.ThinkingText.Render(text)
}
