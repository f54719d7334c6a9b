// Copyright (c) 2025 Adrian Voicu
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides shared UI components for the librarian
// TUI: the title bar, the status bar and the typing spinner.
package components
