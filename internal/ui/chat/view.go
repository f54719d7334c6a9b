// Copyright (c) 2025 Adrian Voicu
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/avoicu/librarian-tui/internal/model"
)

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(m.header.View())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderInput())
	b.WriteString("\n")

	if m.showHelp {
		b.WriteString(m.renderHelp())
		b.WriteString("\n")
	}

	m.statusBar.SetNote(m.statusMsg)
	b.WriteString(m.statusBar.View())
	return b.String()
}

func (m Model) renderInput() string {
	if m.turn.Busy() {
		line := m.spinner.View()
		if line == "" {
			line = m.theme.InputDisabled.Render("waiting for the librarian...")
		}
		return m.theme.InputContainer.Width(m.width - 2).Render(line)
	}
	return m.theme.InputContainer.Width(m.width - 2).Render(m.input.View())
}

func (m Model) renderHelp() string {
	help := []string{
		"/new      start a new conversation",
		"/history  [term]  show past exchanges",
		"/export   [path]  write the transcript to a markdown file",
		"/filter   key=value ...  constrain retrieval (/filter clear)",
		"/logout   sign out",
		"/quit     exit",
	}
	return m.theme.FormHint.Render(strings.Join(help, "\n"))
}

// =============================================================================
// TRANSCRIPT RENDERING
// =============================================================================

// refreshViewport rebuilds the viewport content and pins it to the
// bottom so new entries are always visible.
func (m *Model) refreshViewport() {
	var b strings.Builder

	for _, entry := range m.transcript.Entries() {
		b.WriteString(m.renderEntry(entry))
		b.WriteString("\n")
	}

	// Partial streamed answer, rendered raw until the turn resolves.
	if m.turn.Busy() && m.streamBuf.Len() > 0 {
		b.WriteString(m.theme.LibrarianLabel.Render(model.RoleAssistant.DisplayName()))
		b.WriteString("\n")
		b.WriteString(m.theme.MessageBody.Render(m.streamBuf.String()))
		b.WriteString("\n")
	}

	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m *Model) renderEntry(entry model.Message) string {
	var b strings.Builder

	label := m.theme.LibrarianLabel
	if entry.Role == model.RoleUser {
		label = m.theme.UserLabel
	}
	b.WriteString(label.Render(entry.Role.DisplayName()))
	b.WriteString(" ")
	b.WriteString(m.theme.Timestamp.Render(entry.Timestamp.Format("15:04")))
	b.WriteString("\n")

	switch {
	case strings.HasPrefix(entry.Content, errorPrefix):
		b.WriteString(m.theme.ErrorEntry.Render(entry.Content))
		b.WriteString("\n")
	case entry.Role == model.RoleAssistant && m.useMarkdown:
		rendered := strings.TrimRight(m.markdown.Render(entry.Content), "\n")
		b.WriteString(rendered)
		b.WriteString("\n")
	default:
		b.WriteString(m.theme.MessageBody.Render(entry.Content))
		b.WriteString("\n")
	}
	return b.String()
}
