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
// LOGIN MODEL
// =============================================================================

const (
	loginFieldEmail = iota
	loginFieldPassword
	loginFieldSubmit
	loginFieldCount
)

// LoginModel is the login form view.
type LoginModel struct {
	client Authenticator
	theme  *styles.Theme

	email    textinput.Model
	password textinput.Model
	focus    int

	submitting bool
	errMsg     string

	width  int
	height int
}

// NewLogin creates the login form.
func NewLogin(client Authenticator, theme *styles.Theme) LoginModel {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 254
	email.Width = 40
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 128
	password.Width = 40

	return LoginModel{
		client:   client,
		theme:    theme,
		email:    email,
		password: password,
	}
}

// SetEmail prefills the email field, e.g. after registration.
func (m *LoginModel) SetEmail(email string) {
	m.email.SetValue(email)
}

// SetSize updates the layout dimensions.
func (m *LoginModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Init implements tea.Model.
func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m LoginModel) Update(msg tea.Msg) (LoginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.submitting {
			// Form is locked while a login attempt is in flight.
			return m, nil
		}
		switch msg.String() {
		case "tab", "down":
			m.setFocus((m.focus + 1) % loginFieldCount)
			return m, nil
		case "shift+tab", "up":
			m.setFocus((m.focus + loginFieldCount - 1) % loginFieldCount)
			return m, nil
		case "enter":
			if m.focus == loginFieldEmail {
				m.setFocus(loginFieldPassword)
				return m, nil
			}
			return m.submit()
		case "ctrl+r":
			return m, func() tea.Msg { return SwitchToRegisterMsg{} }
		}

	case loginResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.errMsg = api.Reason(msg.err)
			m.setFocus(loginFieldPassword)
			return m, nil
		}
		return m, func() tea.Msg { return LoggedInMsg{} }
	}

	var cmd tea.Cmd
	switch m.focus {
	case loginFieldEmail:
		m.email, cmd = m.email.Update(msg)
	case loginFieldPassword:
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m *LoginModel) setFocus(field int) {
	m.focus = field
	m.email.Blur()
	m.password.Blur()
	switch field {
	case loginFieldEmail:
		m.email.Focus()
	case loginFieldPassword:
		m.password.Focus()
	}
}

func (m LoginModel) submit() (LoginModel, tea.Cmd) {
	email := strings.TrimSpace(m.email.Value())
	password := m.password.Value()

	if email == "" || password == "" {
		m.errMsg = "email and password are required"
		return m, nil
	}

	m.submitting = true
	m.errMsg = ""
	client := m.client
	return m, func() tea.Msg {
		_, err := client.Login(context.Background(), email, password)
		return loginResultMsg{err: err}
	}
}

// Submitting reports whether a login attempt is in flight.
func (m LoginModel) Submitting() bool {
	return m.submitting
}

// Error returns the current inline error, empty when none.
func (m LoginModel) Error() string {
	return m.errMsg
}

// View implements tea.Model.
func (m LoginModel) View() string {
	var b strings.Builder

	b.WriteString(m.theme.FormTitle.Render("Sign in to the librarian"))
	b.WriteString("\n\n")

	b.WriteString(m.theme.FormLabel.Render("Email"))
	b.WriteString("\n")
	b.WriteString(m.email.View())
	b.WriteString("\n\n")

	b.WriteString(m.theme.FormLabel.Render("Password"))
	b.WriteString("\n")
	b.WriteString(m.password.View())
	b.WriteString("\n\n")

	button := m.theme.ButtonIdle.Render("[ Sign in ]")
	if m.focus == loginFieldSubmit {
		button = m.theme.ButtonFocused.Render("[ Sign in ]")
	}
	if m.submitting {
		button = m.theme.FormHint.Render("Signing in...")
	}
	b.WriteString(button)

	if m.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(m.theme.FormError.Render(m.errMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(m.theme.FormHint.Render("tab: next field  •  ctrl+r: create account  •  ctrl+c: quit"))

	box := m.theme.FormBox.Render(b.String())
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}
