package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrNotConfigured is returned when no remote URL is set.
	ErrNotConfigured = errors.New("remote store not configured")
	// ErrInFlight is returned when a push or pull is already running. The
	// request is dropped, not queued.
	ErrInFlight = errors.New("sync already in progress")
)

// StatusError reports a non-2xx answer from the remote store.
type StatusError struct {
	Method string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote %s: unexpected status %d", e.Method, e.Code)
}

// Client talks to a single-document JSON store keyed by an API key header.
type Client struct {
	url    string
	apiKey string
	http   *http.Client
}

// NewClient returns a client for url. A zero timeout keeps the transport
// default.
func NewClient(url, apiKey string, timeout time.Duration) *Client {
	return &Client{url: url, apiKey: apiKey, http: &http.Client{Timeout: timeout}}
}

// Push replaces the remote document with body.
func (c *Client) Push(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Master-Key", c.apiKey)
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &StatusError{Method: http.MethodPut, Code: res.StatusCode}
	}
	return nil
}

// Pull fetches the remote document and returns its record member, which is
// nil when the store holds nothing.
func (c *Client) Pull(ctx context.Context) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Master-Key", c.apiKey)
	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil, &StatusError{Method: http.MethodGet, Code: res.StatusCode}
	}
	var env struct {
		Record json.RawMessage `json:"record"`
	}
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode remote document: %w", err)
	}
	return env.Record, nil
}
