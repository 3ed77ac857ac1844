// Package eventlog talks to the external event log service over HTTP. The
// log is an optional integration: callers degrade when it is unreachable.
package eventlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// ErrUnavailable reports that the event log did not answer.
var ErrUnavailable = errors.New("event log unavailable")

const (
	probeTimeout   = 5 * time.Second
	requestTimeout = 30 * time.Second
)

// Event is one raw event as stored by the log. Fields beyond the envelope
// are event-type specific and kept as loose JSON.
type Event struct {
	ID        string         `json:"id,omitempty"`
	Type      string         `json:"type"`
	Actor     string         `json:"actor,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// Client is an HTTP client for the event log.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the given base URL. An empty URL yields a
// nil client, which callers treat as "no event log configured".
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		return nil
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// Probe checks the log's /health endpoint. Non-fatal: callers log and move on.
func (c *Client) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to build probe request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health returned %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}

// Append posts one event to the session's stream.
func (c *Client) Append(ctx context.Context, sessionID string, event map[string]any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	endpoint := fmt.Sprintf("%s/sessions/%s/events", c.baseURL, url.PathEscape(sessionID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build append request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: append returned %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}

// List fetches every event recorded for the session.
func (c *Client) List(ctx context.Context, sessionID string) ([]Event, error) {
	endpoint := fmt.Sprintf("%s/sessions/%s/events", c.baseURL, url.PathEscape(sessionID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build list request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: list returned %d", ErrUnavailable, resp.StatusCode)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read event list: %w", err)
	}

	var events []Event
	if err := json.Unmarshal(payload, &events); err != nil {
		// Some deployments wrap the list in an envelope.
		var wrapped struct {
			Events []Event `json:"events"`
		}
		if err2 := json.Unmarshal(payload, &wrapped); err2 != nil {
			return nil, fmt.Errorf("failed to decode event list: %w", err)
		}
		events = wrapped.Events
	}
	slog.Debug("Fetched events", "session_id", sessionID, "count", len(events))
	return events, nil
}
