// Copyright (c) 2025 Adrian Voicu
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/avoicu/librarian-tui/internal/util"
)

// =============================================================================
// TOKEN STORE
// =============================================================================

// TokenStore persists the bearer credential as a plain string under one
// durable key. It holds no validity logic: a stored token may well be
// expired, and only a successful identity check establishes a session.
type TokenStore struct {
	path string
}

// NewTokenStore creates a token store under the config directory.
func NewTokenStore() (*TokenStore, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return &TokenStore{path: filepath.Join(dir, "token")}, nil
}

// NewTokenStoreAt creates a token store at an explicit path.
func NewTokenStoreAt(path string) *TokenStore {
	return &TokenStore{path: path}
}

// Load returns the persisted token, or "" when none is stored.
// Absence is a normal state, not an error.
func (s *TokenStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Save writes the token. The file is owner-only: it holds a credential.
func (s *TokenStore) Save(token string) error {
	return util.AtomicWriteFile(s.path, []byte(token), 0600)
}

// Clear deletes the persisted token. Clearing an absent token is a no-op.
func (s *TokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// =============================================================================
// CONVERSATION REF
// =============================================================================

// ConversationRef persists the server-assigned conversation identifier
// under a second durable key, independent of the token, so a restart
// resumes the same conversation instead of starting a new one.
type ConversationRef struct {
	path string
}

// NewConversationRef creates a conversation ref under the config directory.
func NewConversationRef() (*ConversationRef, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return &ConversationRef{path: filepath.Join(dir, "conversation")}, nil
}

// NewConversationRefAt creates a conversation ref at an explicit path.
func NewConversationRefAt(path string) *ConversationRef {
	return &ConversationRef{path: path}
}

// Load returns the persisted conversation id, or "" when none is stored.
func (r *ConversationRef) Load() (string, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Save writes the conversation id. Saving the same id again is idempotent.
func (r *ConversationRef) Save(id string) error {
	return util.AtomicWriteFile(r.path, []byte(id), 0644)
}

// Clear deletes the persisted conversation id.
func (r *ConversationRef) Clear() error {
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
