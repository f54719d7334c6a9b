// Copyright (c) 2025 Adrian Voicu
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"

	"github.com/avoicu/librarian-tui/internal/api"
)

// =============================================================================
// MESSAGES
// =============================================================================

// LoggedInMsg reports a successful login. The token is already stored;
// the receiver should refresh the session.
type LoggedInMsg struct{}

// RegisteredMsg reports a successful registration. The new account is
// not logged in yet; the receiver should show the login form with the
// email prefilled.
type RegisteredMsg struct {
	Email string
}

// SwitchToRegisterMsg asks the composition root to show the register form.
type SwitchToRegisterMsg struct{}

// SwitchToLoginMsg asks the composition root to show the login form.
type SwitchToLoginMsg struct{}

// loginResultMsg carries the outcome of a login attempt back to the form.
type loginResultMsg struct {
	err error
}

// registerResultMsg carries the outcome of a register attempt.
type registerResultMsg struct {
	email string
	err   error
}

// =============================================================================
// BACKEND INTERFACE
// =============================================================================

// Authenticator is the part of the API client the forms need.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*api.LoginResponse, error)
	Register(ctx context.Context, payload map[string]any) (*api.UserProfile, error)
}
