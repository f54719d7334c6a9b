// Copyright (c) 2025 Adrian Voicu
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/avoicu/librarian-tui/internal/api"
)

// =============================================================================
// GATE
// =============================================================================

// Gate is the access decision for authenticated views.
type Gate int

const (
	// GatePending means the initial token check has not finished yet.
	GatePending Gate = iota

	// GateDenied means the check finished and no valid user is present.
	GateDenied

	// GateAdmitted means a validated user is present.
	GateAdmitted
)

// String returns a human-readable gate name.
func (g Gate) String() string {
	switch g {
	case GatePending:
		return "pending"
	case GateDenied:
		return "denied"
	case GateAdmitted:
		return "admitted"
	default:
		return "unknown"
	}
}

// =============================================================================
// SESSION
// =============================================================================

// Identity is the part of the API client the session needs.
type Identity interface {
	Me(ctx context.Context) (*api.UserProfile, error)
}

// Session holds the current user and the loading flag. A zero user with
// loading false means unauthenticated. All methods are safe for
// concurrent use.
type Session struct {
	mu      sync.Mutex
	client  Identity
	user    *api.UserProfile
	loading bool
}

// New creates a session in the loading state, so the UI shows the
// pending gate until the first Refresh completes.
func New(client Identity) *Session {
	return &Session{
		client:  client,
		loading: true,
	}
}

// User returns the validated user, or nil when unauthenticated.
func (s *Session) User() *api.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Loading reports whether a refresh is in flight (or the initial check
// has not run yet).
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Gate returns the current access decision.
func (s *Session) Gate() Gate {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.loading:
		return GatePending
	case s.user == nil:
		return GateDenied
	default:
		return GateAdmitted
	}
}

// Refresh validates the stored token against the backend and replaces
// the user. Any failure, invalid token or network error alike, resolves
// to an unauthenticated session rather than an error state; callers do
// not need the cause to route. The loading flag clears only after the
// user field has settled, so observers never see a cleared flag with a
// stale user. Safe to call repeatedly.
func (s *Session) Refresh(ctx context.Context) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	user, err := s.client.Me(ctx)

	s.mu.Lock()
	if err != nil {
		s.user = nil
	} else {
		s.user = user
	}
	s.loading = false
	s.mu.Unlock()
}

// Clear drops the user immediately, for logout. No network call.
func (s *Session) Clear() {
	s.mu.Lock()
	s.user = nil
	s.loading = false
	s.mu.Unlock()
}

// =============================================================================
// BUBBLE TEA INTEGRATION
// =============================================================================

// RefreshedMsg reports that a Refresh finished. Gate carries the
// decision at completion time.
type RefreshedMsg struct {
	Gate Gate
}

// RefreshCmd runs Refresh off the UI goroutine and reports back.
func RefreshCmd(ctx context.Context, s *Session) tea.Cmd {
	return func() tea.Msg {
		s.Refresh(ctx)
		return RefreshedMsg{Gate: s.Gate()}
	}
}
