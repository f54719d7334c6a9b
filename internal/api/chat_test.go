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

func TestSendChatRejectsEmptyMessage(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	client := New(server.URL, &memTokens{})

	for _, msg := range []string{"", "   ", "\t\n"} {
		_, err := client.SendChat(context.Background(), ChatRequest{Message: msg})
		if !errors.Is(err, ErrEmptyMessage) {
			t.Errorf("SendChat(%q) err = %v, want ErrEmptyMessage", msg, err)
		}
	}
	if calls != 0 {
		t.Errorf("empty messages reached the server %d times", calls)
	}
}

func TestSendChatOmitsConversationIDWhenEmpty(t *testing.T) {
	var raw map[string]json.RawMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"conversation_id":"conv-1","answer":"Try The Hobbit.","title":"Fantasy picks"}`))
	}))
	defer server.Close()

	client := New(server.URL, &memTokens{token: "tok"})

	resp, err := client.SendChat(context.Background(), ChatRequest{Message: "recommend fantasy"})
	if err != nil {
		t.Fatalf("SendChat: %v", err)
	}
	if _, present := raw["conversation_id"]; present {
		t.Error("conversation_id sent on first message of a conversation")
	}
	if _, present := raw["where"]; present {
		t.Error("empty where filter serialized")
	}
	if resp.ConversationID != "conv-1" || resp.Title != "Fantasy picks" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestSendChatIncludesConversationIDAndWhere(t *testing.T) {
	var raw map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"conversation_id":"conv-1","answer":"More of the same."}`))
	}))
	defer server.Close()

	client := New(server.URL, &memTokens{token: "tok"})

	_, err := client.SendChat(context.Background(), ChatRequest{
		Message:        "another one",
		ConversationID: "conv-1",
		Where:          map[string]any{"genre": "fantasy"},
	})
	if err != nil {
		t.Fatalf("SendChat: %v", err)
	}
	if raw["conversation_id"] != "conv-1" {
		t.Errorf("conversation_id = %v", raw["conversation_id"])
	}
	where, ok := raw["where"].(map[string]any)
	if !ok || where["genre"] != "fantasy" {
		t.Errorf("where = %v", raw["where"])
	}
}

func TestSendChatConversationNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"Conversation not found"}`))
	}))
	defer server.Close()

	client := New(server.URL, &memTokens{token: "tok"})

	_, err := client.SendChat(context.Background(), ChatRequest{
		Message:        "hello",
		ConversationID: "stale-id",
	})
	if err == nil {
		t.Fatal("SendChat succeeded against a missing conversation")
	}
	if got := Reason(err); got != "Conversation not found" {
		t.Errorf("Reason = %q, want verbatim backend detail", got)
	}
}

func TestSendChatExpiredToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Could not validate credentials"}`))
	}))
	defer server.Close()

	client := New(server.URL, &memTokens{token: "expired"})

	_, err := client.SendChat(context.Background(), ChatRequest{Message: "hi"})
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("err = %v, want ErrNotAuthenticated", err)
	}
	if got := Reason(err); got != "Could not validate credentials" {
		t.Errorf("Reason = %q, want verbatim detail", got)
	}
}
