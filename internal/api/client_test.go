// Copyright (c) 2025 Adrian Voicu
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// memTokens is an in-memory TokenStore for tests.
type memTokens struct {
	mu    sync.Mutex
	token string
}

func (m *memTokens) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *memTokens) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *memTokens) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

func TestBearerHeaderAttachedWhenTokenPresent(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"u1","email":"u@x.com","role":"user","created_at":"2025-01-01T00:00:00"}`))
	}))
	defer server.Close()

	tokens := &memTokens{token: "tok-123"}
	client := New(server.URL, tokens)

	if _, err := client.Me(context.Background()); err != nil {
		t.Fatalf("Me: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok-123")
	}
}

func TestNoBearerHeaderWithoutToken(t *testing.T) {
	var gotAuth string
	var sawHeader bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, sawHeader = r.Header["Authorization"]
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Not authenticated"}`))
	}))
	defer server.Close()

	client := New(server.URL, &memTokens{})

	_, err := client.Me(context.Background())
	if err == nil {
		t.Fatal("Me succeeded without a token")
	}
	if sawHeader {
		t.Errorf("Authorization header sent without a token: %q", gotAuth)
	}
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("error = %v, want ErrNotAuthenticated", err)
	}
}

func TestErrorDetailPreservedVerbatim(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"Email already registered"}`))
	}))
	defer server.Close()

	client := New(server.URL, &memTokens{})

	_, err := client.Register(context.Background(), map[string]any{"email": "u@x.com"})
	if err == nil {
		t.Fatal("Register succeeded on a 400")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error is not *APIError: %v", err)
	}
	if apiErr.Detail != "Email already registered" {
		t.Errorf("Detail = %q, want verbatim backend detail", apiErr.Detail)
	}
	if apiErr.Status != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", apiErr.Status)
	}
	if got := Reason(err); got != "Email already registered" {
		t.Errorf("Reason = %q, want verbatim detail", got)
	}
}

func TestErrorWithoutDetailBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	client := New(server.URL, &memTokens{})

	_, err := client.Me(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error is not *APIError: %v", err)
	}
	if apiErr.Status != http.StatusBadGateway || apiErr.Detail != "" {
		t.Errorf("got Status=%d Detail=%q", apiErr.Status, apiErr.Detail)
	}
	// Reason falls back to the error's own text, never an empty string.
	if Reason(err) == "" {
		t.Error("Reason returned an empty string")
	}
}

func TestReasonFallbacks(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"api detail", &APIError{Status: 404, Detail: "conversation not found"}, "conversation not found"},
		{"wrapped api detail", errorFromResponse(401, []byte(`{"detail":"Invalid credentials"}`)), "Invalid credentials"},
		{"plain error", errors.New("connection refused"), "connection refused"},
		{"nil error", nil, "something went wrong"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Reason(tt.err); got != tt.want {
				t.Errorf("Reason = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTransportErrorSurfaces(t *testing.T) {
	// Point at a closed server to force a connection error.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := New(server.URL, &memTokens{})
	_, err := client.Me(context.Background())
	if err == nil {
		t.Fatal("expected a transport error")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Errorf("transport failure misreported as server error: %v", err)
	}
}
