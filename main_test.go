// Copyright (c) 2025 Adrian Voicu
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/avoicu/librarian-tui/internal/api"
	"github.com/avoicu/librarian-tui/internal/config"
	"github.com/avoicu/librarian-tui/internal/session"
	"github.com/avoicu/librarian-tui/internal/ui/auth"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	dir := t.TempDir()
	tokens := config.NewTokenStoreAt(filepath.Join(dir, "token"))
	convRef := config.NewConversationRefAt(filepath.Join(dir, "conversation"))
	client := api.New("http://127.0.0.1:0", tokens)

	m := newModel(config.Default(), client, convRef, nil)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return updated.(*Model)
}

func TestDeniedSessionRoutesToLogin(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(session.RefreshedMsg{Gate: session.GateDenied})
	m = updated.(*Model)

	if m.state != StateLogin {
		t.Fatalf("state = %v, want StateLogin", m.state)
	}
	if view := m.View(); !strings.Contains(view, "Sign in to the librarian") {
		t.Errorf("view does not render the login form:\n%s", view)
	}
}

func TestAdmittedSessionRoutesToChat(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(session.RefreshedMsg{Gate: session.GateAdmitted})
	m = updated.(*Model)

	if m.state != StateChat {
		t.Fatalf("state = %v, want StateChat", m.state)
	}
	if view := m.View(); strings.Contains(view, "Sign in to the librarian") {
		t.Errorf("chat view still renders the login form:\n%s", view)
	}
}

func TestPendingSessionStaysOnLoading(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(session.RefreshedMsg{Gate: session.GatePending})
	m = updated.(*Model)

	if m.state != StateLoading {
		t.Fatalf("state = %v, want StateLoading", m.state)
	}
}

func TestSwitchToLoginRebuildsTheForm(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(session.RefreshedMsg{Gate: session.GateDenied})
	m = updated.(*Model)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ghost@example.com")})
	m = updated.(*Model)
	if view := m.View(); !strings.Contains(view, "ghost@example.com") {
		t.Fatalf("typed email missing from the login view:\n%s", view)
	}

	updated, _ = m.Update(auth.SwitchToRegisterMsg{})
	m = updated.(*Model)
	updated, _ = m.Update(auth.SwitchToLoginMsg{})
	m = updated.(*Model)

	if m.state != StateLogin {
		t.Fatalf("state = %v, want StateLogin", m.state)
	}
	if view := m.View(); strings.Contains(view, "ghost@example.com") {
		t.Errorf("stale email survived the switch back to login:\n%s", view)
	}
}
