// Copyright (c) 2025 Adrian Voicu
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and the durable client-side
// state for the librarian TUI.
//
// Configuration comes from ~/.librarian/config.toml with built-in defaults,
// an optional .env file in the working directory, and LIBRARIAN_* environment
// variable overrides applied last.
//
// The package also owns the two durable single-key stores: the bearer token
// (TokenStore) and the current conversation identifier (ConversationRef).
// Both are plain-string files written atomically and independently; a missing
// file is a normal state, not an error.
package config
