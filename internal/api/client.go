// Copyright (c) 2025 Adrian Voicu
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultTimeout is the default timeout for non-streaming requests.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize caps how much of a response body is read.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrEmptyMessage indicates a chat message was empty after trimming.
	// It is detected locally; no request is made.
	ErrEmptyMessage = errors.New("message must not be empty")

	// ErrNotAuthenticated indicates the backend rejected the bearer token
	// (absent, expired, or invalid).
	ErrNotAuthenticated = errors.New("not authenticated")
)

// APIError represents a structured error response from the backend.
type APIError struct {
	// Status is the HTTP status code.
	Status int
	// Detail is the backend's verbatim detail message, if any.
	Detail string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("server error (HTTP %d): %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("server error (HTTP %d)", e.Status)
}

// errorBody is the FastAPI error response shape.
type errorBody struct {
	Detail string `json:"detail"`
}

// Reason returns the most specific user-facing description of a failure:
// the server-supplied detail when present, else the error's own text, else
// a fallback literal.
func Reason(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return "something went wrong"
}

// =============================================================================
// TOKEN STORE INTERFACE
// =============================================================================

// TokenStore is the durable home of the bearer credential. The concrete
// implementation lives in internal/config; the client only needs these
// three operations.
type TokenStore interface {
	// Load returns the stored token, or "" when none is stored.
	Load() (string, error)
	// Save persists a new token.
	Save(token string) error
	// Clear deletes the token. Clearing an absent token is a no-op.
	Clear() error
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the Smart Librarian backend.
type Client struct {
	baseURL    string
	httpClient *http.Client

	// streamClient has no timeout; streaming lifetime is context-controlled.
	streamClient *http.Client

	tokens TokenStore
	trace  bool
}

// New creates a client for the given base URL. The token store supplies
// the bearer credential for authenticated calls and receives the token on
// a successful login.
func New(baseURL string, tokens TokenStore) *Client {
	return &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   &http.Client{Timeout: DefaultTimeout},
		streamClient: &http.Client{},
		tokens:       tokens,
	}
}

// WithTimeout sets the request timeout for non-streaming calls.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// WithHTTPClient replaces the underlying HTTP client (used by tests).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// WithTrace enables one-line request/response logging. Bodies and headers
// are never logged; the token must not end up in a log file.
func (c *Client) WithTrace(enabled bool) *Client {
	c.trace = enabled
	return c
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// newRequest builds a JSON request with the bearer token attached when one
// is stored. A missing token is normal: the request goes out unauthenticated
// and the backend answers 401, which callers treat as "not authenticated".
func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	token, err := c.tokens.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to read token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req, nil
}

// do executes a request and decodes a JSON success body into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	if c.trace {
		log.Printf("api: %s %s", method, path)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if c.trace {
		log.Printf("api: %s %s -> %d (%v)", method, path, resp.StatusCode, time.Since(start))
	}

	data, err := readResponse(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errorFromResponse(resp.StatusCode, data)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// readResponse reads a response body with a size cap.
func readResponse(resp *http.Response) ([]byte, error) {
	limited := io.LimitReader(resp.Body, MaxResponseSize)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(data)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return data, nil
}

// errorFromResponse converts an HTTP error response into a Go error,
// preserving the backend's detail string verbatim when the body parses.
func errorFromResponse(status int, body []byte) error {
	var eb errorBody
	detail := ""
	if err := json.Unmarshal(body, &eb); err == nil {
		detail = eb.Detail
	}

	if status == http.StatusUnauthorized {
		if detail != "" {
			// Both errors are retrievable: errors.Is for the auth check,
			// errors.As for the verbatim detail.
			return fmt.Errorf("%w: %w", ErrNotAuthenticated, &APIError{Status: status, Detail: detail})
		}
		return ErrNotAuthenticated
	}

	return &APIError{Status: status, Detail: detail}
}
