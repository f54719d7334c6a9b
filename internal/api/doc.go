// Copyright (c) 2025 Adrian Voicu
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the HTTP client for the Smart Librarian backend.
//
// The client covers the four auth operations (register, login, me, logout)
// and the chat turn exchange, both the plain POST /chat form and the SSE
// /chat/stream form. Every authenticated request carries the persisted
// bearer token; the token's presence is never taken as proof of validity -
// only Me decides that.
//
// Backend failures are propagated unchanged: a structured FastAPI error
// body becomes an *APIError carrying the verbatim detail string, anything
// else surfaces as a wrapped transport error. No operation in this package
// catches and hides a failure.
package api
