package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jesforart/traceos-sub000/pkg/database"
)

// CleanupService removes a session's footprint from every table. Session
// purge is the only path that deletes memory blocks.
type CleanupService struct {
	client *database.Client
}

// NewCleanupService creates a new CleanupService.
func NewCleanupService(client *database.Client) *CleanupService {
	return &CleanupService{client: client}
}

// PurgeResult reports per-table delete counts.
type PurgeResult struct {
	Blocks   int `json:"blocks"`
	StyleDNA int `json:"style_dna"`
	Intents  int `json:"intents"`
	Chunks   int `json:"chunks"`

	Contracts int `json:"contracts"`
}

// PurgeSession deletes everything the session owns. StyleDNA rows are keyed
// by artifact only, so they are resolved through the session's blocks first.
func (s *CleanupService) PurgeSession(ctx context.Context, sessionID string) (*PurgeResult, error) {
	db := s.client.DB()
	result := &PurgeResult{}

	res, err := db.ExecContext(ctx,
		`DELETE FROM style_dna WHERE id IN
			(SELECT style_dna_id FROM memory_blocks
			 WHERE session_id = ? AND style_dna_id IS NOT NULL)`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to purge style dna: %w", err)
	}
	result.StyleDNA = affected(res)

	deletes := []struct {
		table string
		count *int
	}{
		{"memory_blocks", &result.Blocks},
		{"intent_profiles", &result.Intents},
		{"telemetry_chunks", &result.Chunks},
		{"contracts", &result.Contracts},
	}
	for _, d := range deletes {
		res, err := db.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE session_id = ?`, d.table), sessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to purge %s: %w", d.table, err)
		}
		*d.count = affected(res)
	}

	slog.Info("Purged session",
		"session_id", sessionID,
		"blocks", result.Blocks,
		"style_dna", result.StyleDNA,
		"intents", result.Intents,
		"chunks", result.Chunks,
		"contracts", result.Contracts)
	return result, nil
}

func affected(res interface{ RowsAffected() (int64, error) }) int {
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return int(n)
}
