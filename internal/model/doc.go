// Copyright (c) 2025 Adrian Voicu
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the chat transcript.
//
// A Transcript is an ordered, append-only sequence of Messages with a
// monotonic index: entries are only ever added, never edited or removed,
// which is what makes the optimistic user-turn append safe. Each pending
// exchange is tracked by a Turn state machine (Idle, Sending, Resolved,
// Failed) rather than ad hoc boolean flags.
package model
