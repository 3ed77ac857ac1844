package database

import (
	"context"
	"time"
)

// HealthStatus reports database connectivity and the engine's own integrity
// verdict.
type HealthStatus struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
	JournalMode  string `json:"journal_mode"`
	Integrity    string `json:"integrity"`
}

// Health pings the database and runs a quick integrity check.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	start := time.Now()

	if err := c.db.PingContext(ctx); err != nil {
		return &HealthStatus{
			Status:       "unhealthy",
			ResponseTime: time.Since(start).Milliseconds(),
		}, err
	}

	var mode string
	if err := c.db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode); err != nil {
		mode = "unknown"
	}

	var integrity string
	if err := c.db.QueryRowContext(ctx, "PRAGMA quick_check").Scan(&integrity); err != nil {
		integrity = "unknown"
	}

	status := "healthy"
	if integrity != "ok" && integrity != "unknown" {
		status = "degraded"
	}

	return &HealthStatus{
		Status:       status,
		ResponseTime: time.Since(start).Milliseconds(),
		JournalMode:  mode,
		Integrity:    integrity,
	}, nil
}
