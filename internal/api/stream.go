// Copyright (c) 2025 Adrian Voicu
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
)

// =============================================================================
// STREAMING TYPES
// =============================================================================

// StreamChunk is one piece of a streamed answer. Done marks the final
// chunk; its Content is empty.
type StreamChunk struct {
	Content string
	Done    bool
}

// StreamCallback is called for each chunk received, in order, on the
// goroutine running the stream.
type StreamCallback func(chunk StreamChunk)

// =============================================================================
// SSE READER
// =============================================================================

// sseReader parses Server-Sent Events from a response body. The backend
// frames chunks as "data: <text>" lines and finishes with an
// "event: end" / "data: [DONE]" event.
type sseReader struct {
	reader *bufio.Reader
}

func newSSEReader(r io.Reader) *sseReader {
	return &sseReader{reader: bufio.NewReader(r)}
}

// readEvent returns the next event's type and data. The event type is
// empty for plain data events. Returns io.EOF when the stream ends.
func (s *sseReader) readEvent() (string, string, error) {
	var eventType string
	var dataLines []string

	for {
		line, err := s.reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF && len(dataLines) > 0 {
				return eventType, strings.Join(dataLines, "\n"), nil
			}
			return "", "", err
		}

		line = bytes.TrimRight(line, "\r\n")

		// Blank line terminates the event.
		if len(line) == 0 {
			if len(dataLines) > 0 || eventType != "" {
				return eventType, strings.Join(dataLines, "\n"), nil
			}
			continue
		}

		switch {
		case bytes.HasPrefix(line, []byte("event:")):
			eventType = string(bytes.TrimSpace(line[6:]))
		case bytes.HasPrefix(line, []byte("data:")):
			// Only the single space after the colon is framing; any
			// further whitespace belongs to the payload.
			dataLines = append(dataLines, string(bytes.TrimPrefix(line[5:], []byte(" "))))
		}
		// Other fields (id:, retry:, comments) are ignored.
	}
}

// =============================================================================
// STREAMING CHAT
// =============================================================================

// SendChatStream sends one chat turn to the SSE endpoint and invokes the
// callback per chunk until the terminal event. The same local validation
// as SendChat applies. Cancelling the context stops the stream.
//
// The streaming endpoint does not return a conversation id, so callers
// that need id continuity should use SendChat for the first turn.
func (c *Client) SendChatStream(ctx context.Context, req ChatRequest, callback StreamCallback) error {
	if strings.TrimSpace(req.Message) == "" {
		return ErrEmptyMessage
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/chat/stream", req)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	if c.trace {
		log.Printf("api: POST /chat/stream")
	}

	resp, err := c.streamClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, readErr := readResponse(resp)
		if readErr != nil {
			return readErr
		}
		return errorFromResponse(resp.StatusCode, data)
	}

	reader := newSSEReader(resp.Body)
	for {
		eventType, data, err := reader.readEvent()
		if err != nil {
			if err == io.EOF {
				// Stream ended without the terminal event; treat as done.
				callback(StreamChunk{Done: true})
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("stream read failed: %w", err)
		}

		if eventType == "end" || data == "[DONE]" {
			callback(StreamChunk{Done: true})
			return nil
		}

		if data != "" {
			callback(StreamChunk{Content: data})
		}
	}
}
