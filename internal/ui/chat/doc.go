// Copyright (c) 2025 Adrian Voicu
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view: an append-only
// transcript above a single-line prompt.
//
// Each submitted question runs as one turn. The user entry is appended
// optimistically before the request goes out and is never rolled back;
// a failed turn appends a marked error entry instead. Only one turn can
// be in flight at a time, and a sequence number guards against a stale
// completion landing after the turn it belonged to was superseded.
package chat
