// Copyright (c) 2025 Adrian Voicu
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/avoicu/librarian-tui/internal/api"
	"github.com/avoicu/librarian-tui/internal/storage"
)

// =============================================================================
// TURN MESSAGES
// =============================================================================

// TurnResolvedMsg reports a successful answer for the turn with the
// given sequence number.
type TurnResolvedMsg struct {
	Seq  int
	Resp *api.ChatResponse
}

// TurnFailedMsg reports a failed turn. The user entry stays in the
// transcript; the receiver appends an error entry instead.
type TurnFailedMsg struct {
	Seq int
	Err error
}

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamTokenMsg carries one streamed chunk of the answer in flight.
type StreamTokenMsg struct {
	Seq     int
	Content string
}

// StreamDoneMsg marks the end of a streamed answer.
type StreamDoneMsg struct {
	Seq int
}

// =============================================================================
// COMMAND RESULT MESSAGES
// =============================================================================

// HistoryLoadedMsg carries the result of a /history lookup.
type HistoryLoadedMsg struct {
	Exchanges []storage.Exchange
	Term      string
	Err       error
}

// ExportDoneMsg reports the outcome of a /export write.
type ExportDoneMsg struct {
	Path string
	Err  error
}

// exchangeRecordedMsg reports the local history insert after a resolved
// turn. Failures are shown as a status note, never as a transcript
// entry.
type exchangeRecordedMsg struct {
	err error
}

// LogoutMsg asks the composition root to clear the token and return to
// the login form.
type LogoutMsg struct{}

// SessionExpiredMsg reports that an authenticated call was rejected.
// The composition root re-validates the session, which routes back to
// the login form.
type SessionExpiredMsg struct{}
