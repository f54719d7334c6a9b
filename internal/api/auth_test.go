// Copyright (c) 2025 Adrian Voicu
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoginPersistsTokenForNextRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			var body map[string]string
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("decode login body: %v", err)
			}
			if body["email"] != "u@x.com" || body["password"] != "hunter2" {
				t.Errorf("login body = %v", body)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"fresh-token","token_type":"bearer"}`))
		case "/auth/me":
			if got := r.Header.Get("Authorization"); got != "Bearer fresh-token" {
				t.Errorf("Authorization = %q, want freshly issued token", got)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"u1","email":"u@x.com","name":"U","role":"user","created_at":"2025-01-01T00:00:00"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	tokens := &memTokens{}
	client := New(server.URL, tokens)

	resp, err := client.Login(context.Background(), "u@x.com", "hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.AccessToken != "fresh-token" {
		t.Errorf("AccessToken = %q", resp.AccessToken)
	}

	// The very next authenticated call must carry the new token.
	profile, err := client.Me(context.Background())
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if profile.Email != "u@x.com" || profile.Role != "user" {
		t.Errorf("profile = %+v", profile)
	}
}

type failingSaveTokens struct {
	memTokens
}

func (f *failingSaveTokens) Save(string) error {
	return errors.New("disk full")
}

func TestLoginFailsWhenTokenCannotBeSaved(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok","token_type":"bearer"}`))
	}))
	defer server.Close()

	client := New(server.URL, &failingSaveTokens{})
	if _, err := client.Login(context.Background(), "u@x.com", "pw"); err == nil {
		t.Fatal("Login succeeded despite token save failure")
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Incorrect email or password"}`))
	}))
	defer server.Close()

	tokens := &memTokens{}
	client := New(server.URL, tokens)

	_, err := client.Login(context.Background(), "u@x.com", "wrong")
	if err == nil {
		t.Fatal("Login succeeded with bad credentials")
	}
	if got := Reason(err); got != "Incorrect email or password" {
		t.Errorf("Reason = %q, want verbatim detail", got)
	}
	if tokens.token != "" {
		t.Errorf("token stored after failed login: %q", tokens.token)
	}
}

func TestRegisterSendsPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/register" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["email"] != "new@x.com" || body["name"] != "New Reader" {
			t.Errorf("body = %v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"u2","email":"new@x.com","name":"New Reader","role":"user","created_at":"2025-01-02T00:00:00"}`))
	}))
	defer server.Close()

	client := New(server.URL, &memTokens{})
	profile, err := client.Register(context.Background(), map[string]any{
		"email":    "new@x.com",
		"password": "pw123456",
		"name":     "New Reader",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if profile.ID != "u2" {
		t.Errorf("ID = %q", profile.ID)
	}
}

func TestLogoutClearsTokenWithoutNetwork(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	tokens := &memTokens{token: "tok"}
	client := New(server.URL, tokens)

	if err := client.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if tokens.token != "" {
		t.Error("token survived logout")
	}
	if calls != 0 {
		t.Errorf("logout made %d network calls, want 0", calls)
	}
}
