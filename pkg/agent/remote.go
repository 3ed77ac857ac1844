package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// RemoteExecutor invokes an out-of-process agent over HTTP. The agent's
// endpoint receives the task as JSON and answers with
// {"success": bool, "data": {...}, "error": "..."}.
type RemoteExecutor struct {
	endpoint string
	http     *http.Client
}

// NewRemoteExecutor creates an executor for the given endpoint.
func NewRemoteExecutor(endpoint string, timeout time.Duration) *RemoteExecutor {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &RemoteExecutor{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

type remoteResponse struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Execute implements Executor.
func (e *RemoteExecutor) Execute(ctx context.Context, task Task) (map[string]any, error) {
	body, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("failed to encode task: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build agent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("agent endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("agent endpoint returned %d", resp.StatusCode)
	}

	var parsed remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode agent response: %w", err)
	}
	if !parsed.Success {
		msg := parsed.Error
		if msg == "" {
			msg = "agent reported failure without detail"
		}
		return nil, fmt.Errorf("%s", msg)
	}
	return parsed.Data, nil
}
