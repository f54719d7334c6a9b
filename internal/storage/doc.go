// Copyright (c) 2025 Adrian Voicu
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage keeps a local log of past question/answer exchanges
// in SQLite. The log is additive history for the /history and /export
// commands; the live transcript stays in memory and is never rebuilt
// from it.
package storage
