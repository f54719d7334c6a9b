// Copyright (c) 2025 Adrian Voicu
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks the authenticated user for the lifetime of the
// program. It validates the stored token against the backend on startup
// and exposes a tri-state gate the UI uses to decide which view to show.
package session
