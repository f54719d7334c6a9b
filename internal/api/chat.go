// Copyright (c) 2025 Adrian Voicu
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"strings"
)

// =============================================================================
// CHAT TYPES
// =============================================================================

// ChatRequest is one turn sent to the backend. ConversationID is omitted
// while empty (a brand-new conversation); Where is an optional structured
// retrieval filter passed through opaquely.
type ChatRequest struct {
	Message        string         `json:"message"`
	ConversationID string         `json:"conversation_id,omitempty"`
	Where          map[string]any `json:"where,omitempty"`
}

// ChatResponse is the backend's reply to a turn. ConversationID is always
// present: for a new conversation it is the freshly assigned id, otherwise
// it echoes the existing one.
type ChatResponse struct {
	ConversationID string `json:"conversation_id"`
	Answer         string `json:"answer"`
	Title          string `json:"title,omitempty"`
	Reason         string `json:"reason,omitempty"`
}

// =============================================================================
// CHAT OPERATION
// =============================================================================

// SendChat sends one chat turn and returns the reply unmodified.
//
// A message that is empty after trimming fails locally with
// ErrEmptyMessage before any network activity. Persisting the returned
// conversation id is the caller's responsibility, not the client's.
func (c *Client) SendChat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, ErrEmptyMessage
	}

	var resp ChatResponse
	if err := c.do(ctx, http.MethodPost, "/chat", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
