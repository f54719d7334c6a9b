// Copyright (c) 2025 Adrian Voicu
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/avoicu/librarian-tui/internal/api"
	"github.com/avoicu/librarian-tui/internal/storage"
	"github.com/avoicu/librarian-tui/internal/util"
)

// =============================================================================
// BACKEND INTERFACES
// =============================================================================

// Sender is the part of the API client the chat view needs.
type Sender interface {
	SendChat(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error)
	SendChatStream(ctx context.Context, req api.ChatRequest, cb api.StreamCallback) error
}

// ConversationRef persists the active conversation id across runs.
type ConversationRef interface {
	Load() (string, error)
	Save(id string) error
	Clear() error
}

// History is the local exchange log consulted by /history.
type History interface {
	Record(ctx context.Context, conversationID, question, answer string) (string, error)
	Recent(ctx context.Context, limit int) ([]storage.Exchange, error)
	Search(ctx context.Context, term string, limit int) ([]storage.Exchange, error)
}

// =============================================================================
// TURN COMMANDS
// =============================================================================

// sendTurnCmd runs one blocking chat request off the UI goroutine.
func sendTurnCmd(sender Sender, seq int, req api.ChatRequest) tea.Cmd {
	return func() tea.Msg {
		resp, err := sender.SendChat(context.Background(), req)
		if err != nil {
			return TurnFailedMsg{Seq: seq, Err: err}
		}
		return TurnResolvedMsg{Seq: seq, Resp: resp}
	}
}

// streamEvent is one item on the stream channel: a chunk or a failure.
type streamEvent struct {
	chunk api.StreamChunk
	err   error
}

// openStream starts a streamed turn. The returned channel feeds
// waitStreamCmd; the returned command runs the request and must be
// batched with the first wait.
func openStream(sender Sender, seq int, req api.ChatRequest) (chan streamEvent, tea.Cmd) {
	ch := make(chan streamEvent, 32)
	run := func() tea.Msg {
		err := sender.SendChatStream(context.Background(), req, func(c api.StreamChunk) {
			ch <- streamEvent{chunk: c}
		})
		if err != nil {
			ch <- streamEvent{err: err}
		}
		close(ch)
		return nil
	}
	return ch, tea.Batch(run, waitStreamCmd(ch, seq))
}

// drainStream consumes leftover events after a failed turn so the
// producer never blocks on the buffer before closing the channel.
func drainStream(ch chan streamEvent) {
	for range ch {
	}
}

// waitStreamCmd delivers the next stream event as a message. The model
// re-issues it after every token until the stream finishes.
func waitStreamCmd(ch chan streamEvent, seq int) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return StreamDoneMsg{Seq: seq}
		}
		if ev.err != nil {
			return TurnFailedMsg{Seq: seq, Err: ev.err}
		}
		if ev.chunk.Done {
			return StreamDoneMsg{Seq: seq}
		}
		return StreamTokenMsg{Seq: seq, Content: ev.chunk.Content}
	}
}

// =============================================================================
// HISTORY AND EXPORT COMMANDS
// =============================================================================

// recordExchangeCmd logs a resolved turn to the local history store.
func recordExchangeCmd(history History, conversationID, question, answer string) tea.Cmd {
	return func() tea.Msg {
		_, err := history.Record(context.Background(), conversationID, question, answer)
		return exchangeRecordedMsg{err: err}
	}
}

// loadHistoryCmd fetches recent exchanges, filtered when term is set.
func loadHistoryCmd(history History, term string, limit int) tea.Cmd {
	return func() tea.Msg {
		var (
			exchanges []storage.Exchange
			err       error
		)
		if term == "" {
			exchanges, err = history.Recent(context.Background(), limit)
		} else {
			exchanges, err = history.Search(context.Background(), term, limit)
		}
		return HistoryLoadedMsg{Exchanges: exchanges, Term: term, Err: err}
	}
}

// exportCmd writes the transcript markdown to path.
func exportCmd(path, markdown string) tea.Cmd {
	return func() tea.Msg {
		err := util.AtomicWriteFile(path, []byte(markdown), 0644)
		return ExportDoneMsg{Path: path, Err: err}
	}
}
