// Copyright (c) 2025 Adrian Voicu
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"
)

// =============================================================================
// TURN STATE MACHINE
// =============================================================================

// TurnState is the lifecycle state of a single chat exchange.
type TurnState int

const (
	TurnIdle     TurnState = iota // No exchange in flight
	TurnSending                   // User entry appended, awaiting the server
	TurnResolved                  // Assistant reply appended
	TurnFailed                    // Error entry appended
)

// String returns the string representation of the turn state.
func (s TurnState) String() string {
	switch s {
	case TurnIdle:
		return "idle"
	case TurnSending:
		return "sending"
	case TurnResolved:
		return "resolved"
	case TurnFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Turn tracks one exchange through Idle -> Sending -> (Resolved | Failed).
// Seq distinguishes turns so that a completion settling after the view has
// moved on can be recognised as stale and ignored.
type Turn struct {
	Seq       int
	State     TurnState
	UserIndex int // Transcript index of the optimistic user entry
	Err       error
}

// Busy reports whether the turn is awaiting the server. While busy, input
// is disabled: a new submit during Sending is rejected, not queued.
func (t Turn) Busy() bool {
	return t.State == TurnSending
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Transcript is the ordered, append-only sequence of chat entries.
// Entries are never edited or removed; a failed exchange is surfaced as an
// additional entry, not a correction of history.
type Transcript struct {
	entries []Message
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append adds a message and returns its assigned index.
func (t *Transcript) Append(msg Message) int {
	msg.Index = len(t.entries)
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	t.entries = append(t.entries, msg)
	return msg.Index
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	return len(t.entries)
}

// Entries returns a copy of the entries for rendering.
func (t *Transcript) Entries() []Message {
	out := make([]Message, len(t.entries))
	copy(out, t.entries)
	return out
}

// Last returns the most recent entry, or false if the transcript is empty.
func (t *Transcript) Last() (Message, bool) {
	if len(t.entries) == 0 {
		return Message{}, false
	}
	return t.entries[len(t.entries)-1], true
}

// CountByRole returns the number of entries with the given role.
func (t *Transcript) CountByRole(role Role) int {
	n := 0
	for _, m := range t.entries {
		if m.Role == role {
			n++
		}
	}
	return n
}

// ExportMarkdown renders the transcript as a Markdown document.
func (t *Transcript) ExportMarkdown(title string) string {
	var sb strings.Builder
	sb.WriteString("# " + title + "\n\n")

	for _, msg := range t.entries {
		sb.WriteString("**" + msg.Role.DisplayName() + "** (" + msg.Timestamp.Format("15:04") + "):\n\n")
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n---\n\n")
	}

	return sb.String()
}
