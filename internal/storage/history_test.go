// Copyright (c) 2025 Adrian Voicu
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *HistoryStore {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	id1, err := store.Record(ctx, "conv-1", "recommend fantasy", "Try The Hobbit.")
	require.NoError(t, err)
	require.NotEmpty(t, id1)

	id2, err := store.Record(ctx, "conv-1", "something darker", "Try The Blade Itself.")
	require.NoError(t, err)
	require.NotEqual(t, id1, id2)

	recent, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	// Newest first.
	require.Equal(t, "something darker", recent[0].Question)
	require.Equal(t, "recommend fantasy", recent[1].Question)
	require.False(t, recent[0].CreatedAt.IsZero())
}

func TestRecentHonorsLimit(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	for i := 0; i < 5; i++ {
		_, err := store.Record(ctx, "conv-1", "q", "a")
		require.NoError(t, err)
	}

	recent, err := store.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
}

func TestSearchMatchesQuestionAndAnswer(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	_, err := store.Record(ctx, "conv-1", "recommend fantasy", "Try The Hobbit.")
	require.NoError(t, err)
	_, err = store.Record(ctx, "conv-2", "any sci-fi?", "Dune holds up well.")
	require.NoError(t, err)

	byQuestion, err := store.Search(ctx, "fantasy", 10)
	require.NoError(t, err)
	require.Len(t, byQuestion, 1)
	require.Equal(t, "conv-1", byQuestion[0].ConversationID)

	byAnswer, err := store.Search(ctx, "Dune", 10)
	require.NoError(t, err)
	require.Len(t, byAnswer, 1)
	require.Equal(t, "any sci-fi?", byAnswer[0].Question)

	none, err := store.Search(ctx, "poetry", 10)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestForConversationOrdersOldestFirst(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	_, err := store.Record(ctx, "conv-1", "first", "one")
	require.NoError(t, err)
	_, err = store.Record(ctx, "conv-2", "other", "elsewhere")
	require.NoError(t, err)
	_, err = store.Record(ctx, "conv-1", "second", "two")
	require.NoError(t, err)

	got, err := store.ForConversation(ctx, "conv-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "first", got[0].Question)
	require.Equal(t, "second", got[1].Question)
}

func TestCount(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	_, err = store.Record(ctx, "conv-1", "q", "a")
	require.NoError(t, err)

	n, err = store.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestOpenEnablesWAL(t *testing.T) {
	store := openTestStore(t)

	var mode string
	err := store.db.QueryRowContext(context.Background(), `PRAGMA journal_mode`).Scan(&mode)
	require.NoError(t, err)
	require.Equal(t, "wal", mode)
}

func TestOpenCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "history.db")
	store, err := Open(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}
