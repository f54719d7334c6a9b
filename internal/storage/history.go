// Copyright (c) 2025 Adrian Voicu
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// =============================================================================
// EXCHANGE TYPE
// =============================================================================

// Exchange is one recorded question/answer pair.
type Exchange struct {
	ID             string
	ConversationID string
	Question       string
	Answer         string
	CreatedAt      time.Time
}

// =============================================================================
// HISTORY STORE
// =============================================================================

// HistoryStore records exchanges in a local SQLite database.
type HistoryStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(ctx context.Context, path string) (*HistoryStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	// WAL lets a reader overlap the single writer. modernc.org/sqlite
	// takes pragmas in _pragma=name(value) form.
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	// SQLite handles one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping history db: %w", err)
	}

	s := &HistoryStore{db: db}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}

func (s *HistoryStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS exchanges (
		id              TEXT PRIMARY KEY,
		conversation_id TEXT NOT NULL,
		question        TEXT NOT NULL,
		answer          TEXT NOT NULL,
		created_at      INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_exchanges_conversation
		ON exchanges (conversation_id, created_at);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Record stores one completed exchange and returns its id.
func (s *HistoryStore) Record(ctx context.Context, conversationID, question, answer string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exchanges (id, conversation_id, question, answer, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		id, conversationID, question, answer, time.Now().Unix())
	if err != nil {
		return "", fmt.Errorf("record exchange: %w", err)
	}
	return id, nil
}

// Recent returns up to limit exchanges, newest first.
func (s *HistoryStore) Recent(ctx context.Context, limit int) ([]Exchange, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conversation_id, question, answer, created_at
		 FROM exchanges ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent exchanges: %w", err)
	}
	defer rows.Close()
	return scanExchanges(rows)
}

// Search returns exchanges whose question or answer contains the term,
// newest first.
func (s *HistoryStore) Search(ctx context.Context, term string, limit int) ([]Exchange, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + term + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conversation_id, question, answer, created_at
		 FROM exchanges
		 WHERE question LIKE ? OR answer LIKE ?
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search exchanges: %w", err)
	}
	defer rows.Close()
	return scanExchanges(rows)
}

// ForConversation returns all exchanges of one conversation, oldest
// first.
func (s *HistoryStore) ForConversation(ctx context.Context, conversationID string) ([]Exchange, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conversation_id, question, answer, created_at
		 FROM exchanges
		 WHERE conversation_id = ?
		 ORDER BY created_at ASC, rowid ASC`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("query conversation exchanges: %w", err)
	}
	defer rows.Close()
	return scanExchanges(rows)
}

// Count returns the number of recorded exchanges.
func (s *HistoryStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM exchanges`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count exchanges: %w", err)
	}
	return n, nil
}

func scanExchanges(rows *sql.Rows) ([]Exchange, error) {
	var out []Exchange
	for rows.Next() {
		var e Exchange
		var created int64
		if err := rows.Scan(&e.ID, &e.ConversationID, &e.Question, &e.Answer, &created); err != nil {
			return nil, fmt.Errorf("scan exchange: %w", err)
		}
		e.CreatedAt = time.Unix(created, 0)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
