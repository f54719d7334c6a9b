// Copyright (c) 2025 Adrian Voicu
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/avoicu/librarian-tui/internal/api"
	"github.com/avoicu/librarian-tui/internal/ui/styles"
)

// =============================================================================
// REGISTER MODEL
// =============================================================================

const (
	registerFieldName = iota
	registerFieldEmail
	registerFieldPassword
	registerFieldConfirm
	registerFieldSubmit
	registerFieldCount
)

const minPasswordLen = 8

// RegisterModel is the account creation form view.
type RegisterModel struct {
	client Authenticator
	theme  *styles.Theme

	name     textinput.Model
	email    textinput.Model
	password textinput.Model
	confirm  textinput.Model
	focus    int

	submitting bool
	errMsg     string

	width  int
	height int
}

// NewRegister creates the registration form.
func NewRegister(client Authenticator, theme *styles.Theme) RegisterModel {
	name := textinput.New()
	name.Placeholder = "display name (optional)"
	name.CharLimit = 100
	name.Width = 40
	name.Focus()

	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 254
	email.Width = 40

	password := textinput.New()
	password.Placeholder = "at least 8 characters"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 128
	password.Width = 40

	confirm := textinput.New()
	confirm.Placeholder = "repeat password"
	confirm.EchoMode = textinput.EchoPassword
	confirm.CharLimit = 128
	confirm.Width = 40

	return RegisterModel{
		client:   client,
		theme:    theme,
		name:     name,
		email:    email,
		password: password,
		confirm:  confirm,
	}
}

// SetSize updates the layout dimensions.
func (m *RegisterModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Init implements tea.Model.
func (m RegisterModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m RegisterModel) Update(msg tea.Msg) (RegisterModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "tab", "down":
			m.setFocus((m.focus + 1) % registerFieldCount)
			return m, nil
		case "shift+tab", "up":
			m.setFocus((m.focus + registerFieldCount - 1) % registerFieldCount)
			return m, nil
		case "enter":
			if m.focus < registerFieldConfirm {
				m.setFocus(m.focus + 1)
				return m, nil
			}
			return m.submit()
		case "esc", "ctrl+r":
			return m, func() tea.Msg { return SwitchToLoginMsg{} }
		}

	case registerResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.errMsg = api.Reason(msg.err)
			m.setFocus(registerFieldEmail)
			return m, nil
		}
		email := msg.email
		return m, func() tea.Msg { return RegisteredMsg{Email: email} }
	}

	var cmd tea.Cmd
	switch m.focus {
	case registerFieldName:
		m.name, cmd = m.name.Update(msg)
	case registerFieldEmail:
		m.email, cmd = m.email.Update(msg)
	case registerFieldPassword:
		m.password, cmd = m.password.Update(msg)
	case registerFieldConfirm:
		m.confirm, cmd = m.confirm.Update(msg)
	}
	return m, cmd
}

func (m *RegisterModel) setFocus(field int) {
	m.focus = field
	m.name.Blur()
	m.email.Blur()
	m.password.Blur()
	m.confirm.Blur()
	switch field {
	case registerFieldName:
		m.name.Focus()
	case registerFieldEmail:
		m.email.Focus()
	case registerFieldPassword:
		m.password.Focus()
	case registerFieldConfirm:
		m.confirm.Focus()
	}
}

func (m RegisterModel) submit() (RegisterModel, tea.Cmd) {
	email := strings.TrimSpace(m.email.Value())
	password := m.password.Value()
	confirm := m.confirm.Value()
	name := strings.TrimSpace(m.name.Value())

	switch {
	case email == "":
		m.errMsg = "email is required"
		return m, nil
	case len(password) < minPasswordLen:
		m.errMsg = "password must be at least 8 characters"
		return m, nil
	case password != confirm:
		m.errMsg = "passwords do not match"
		return m, nil
	}

	payload := map[string]any{
		"email":    email,
		"password": password,
	}
	if name != "" {
		payload["name"] = name
	}

	m.submitting = true
	m.errMsg = ""
	client := m.client
	return m, func() tea.Msg {
		_, err := client.Register(context.Background(), payload)
		return registerResultMsg{email: email, err: err}
	}
}

// Submitting reports whether a register attempt is in flight.
func (m RegisterModel) Submitting() bool {
	return m.submitting
}

// Error returns the current inline error, empty when none.
func (m RegisterModel) Error() string {
	return m.errMsg
}

// View implements tea.Model.
func (m RegisterModel) View() string {
	var b strings.Builder

	b.WriteString(m.theme.FormTitle.Render("Create an account"))
	b.WriteString("\n\n")

	b.WriteString(m.theme.FormLabel.Render("Name"))
	b.WriteString("\n")
	b.WriteString(m.name.View())
	b.WriteString("\n\n")

	b.WriteString(m.theme.FormLabel.Render("Email"))
	b.WriteString("\n")
	b.WriteString(m.email.View())
	b.WriteString("\n\n")

	b.WriteString(m.theme.FormLabel.Render("Password"))
	b.WriteString("\n")
	b.WriteString(m.password.View())
	b.WriteString("\n\n")

	b.WriteString(m.theme.FormLabel.Render("Confirm password"))
	b.WriteString("\n")
	b.WriteString(m.confirm.View())
	b.WriteString("\n\n")

	button := m.theme.ButtonIdle.Render("[ Create account ]")
	if m.focus == registerFieldSubmit {
		button = m.theme.ButtonFocused.Render("[ Create account ]")
	}
	if m.submitting {
		button = m.theme.FormHint.Render("Creating account...")
	}
	b.WriteString(button)

	if m.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(m.theme.FormError.Render(m.errMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(m.theme.FormHint.Render("tab: next field  •  esc: back to sign in"))

	box := m.theme.FormBox.Render(b.String())
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}
