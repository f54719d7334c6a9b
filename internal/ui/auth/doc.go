// Copyright (c) 2025 Adrian Voicu
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth provides the login and registration form views. Both are
// self-contained Bubble Tea models; the composition root swaps between
// them and the chat view based on the session gate.
package auth
