// Copyright (c) 2025 Adrian Voicu
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helper functions shared across the client.
//
// It contains string display helpers (rune/width aware truncation and
// padding) and crash-safe file writing used by the durable single-key
// stores in internal/config.
package util
