// Copyright (c) 2025 Adrian Voicu
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"net/http"
)

// =============================================================================
// AUTH TYPES
// =============================================================================

// UserProfile is the backend's account record. Fields are opaque to the
// client beyond their presence; CreatedAt stays a string because the
// backend's timestamp format is its own business.
type UserProfile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

// LoginResponse is the login success body.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// =============================================================================
// AUTH OPERATIONS
// =============================================================================

// Register creates a new account. The payload is forwarded as-is: the
// client performs no local validation, the backend owns the rules.
func (c *Client) Register(ctx context.Context, payload map[string]any) (*UserProfile, error) {
	var user UserProfile
	if err := c.do(ctx, http.MethodPost, "/auth/register", payload, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for a bearer token. On success the token is
// persisted through the token store before returning; every subsequent
// authenticated call depends on that write, so a failed write fails the
// login.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	body := map[string]string{"email": email, "password": password}

	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return nil, err
	}

	if err := c.tokens.Save(resp.AccessToken); err != nil {
		return nil, fmt.Errorf("failed to persist token: %w", err)
	}
	return &resp, nil
}

// Me returns the identity behind the stored token. This is the sole
// mechanism for deciding whether a session is valid; a stored token that
// the backend rejects is simply not a session.
func (c *Client) Me(ctx context.Context) (*UserProfile, error) {
	var user UserProfile
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout is purely local: it deletes the persisted token and never calls
// the backend. The next Me fails and the session resolves to no user.
func (c *Client) Logout() error {
	return c.tokens.Clear()
}
