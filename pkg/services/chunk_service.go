package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/jesforart/traceos-sub000/pkg/database"
	"github.com/jesforart/traceos-sub000/pkg/models"
)

// ChunkService manages TelemetryChunk metadata.
type ChunkService struct {
	client *database.Client
}

// NewChunkService creates a new ChunkService.
func NewChunkService(client *database.Client) *ChunkService {
	return &ChunkService{client: client}
}

// SaveChunk persists one chunk record.
func (s *ChunkService) SaveChunk(ctx context.Context, chunk *models.TelemetryChunk) error {
	if chunk.SessionID == "" {
		return NewValidationError("session_id", "required")
	}
	if chunk.ID == "" {
		chunk.ID = uuid.New().String()
	}

	_, err := s.client.DB().ExecContext(ctx,
		`INSERT INTO telemetry_chunks
			(id, session_id, artifact_id, parquet_path, chunk_row_count,
			 total_session_rows, created_at, schema_version)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		chunk.ID, chunk.SessionID, chunk.ArtifactID, chunk.ParquetPath,
		chunk.ChunkRowCount, chunk.TotalSessionRows, chunk.CreatedAt, chunk.SchemaVersion)
	if err != nil {
		return fmt.Errorf("failed to save telemetry chunk: %w", err)
	}
	return nil
}

// GetChunk reads a chunk by id. Returns ErrNotFound when absent.
func (s *ChunkService) GetChunk(ctx context.Context, id string) (*models.TelemetryChunk, error) {
	var chunk models.TelemetryChunk
	err := s.client.DB().QueryRowContext(ctx,
		`SELECT id, session_id, artifact_id, parquet_path, chunk_row_count,
			total_session_rows, created_at, schema_version
		 FROM telemetry_chunks WHERE id = ?`, id).
		Scan(&chunk.ID, &chunk.SessionID, &chunk.ArtifactID, &chunk.ParquetPath,
			&chunk.ChunkRowCount, &chunk.TotalSessionRows, &chunk.CreatedAt, &chunk.SchemaVersion)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read telemetry chunk: %w", err)
	}
	return &chunk, nil
}

// ChunksBySession returns a session's chunks in creation order. The order is
// enforced by the query, backed by the (session_id, created_at) index.
func (s *ChunkService) ChunksBySession(ctx context.Context, sessionID string) ([]*models.TelemetryChunk, error) {
	rows, err := s.client.DB().QueryContext(ctx,
		`SELECT id, session_id, artifact_id, parquet_path, chunk_row_count,
			total_session_rows, created_at, schema_version
		 FROM telemetry_chunks WHERE session_id = ?
		 ORDER BY created_at, id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list telemetry chunks: %w", err)
	}
	defer rows.Close()

	var out []*models.TelemetryChunk
	for rows.Next() {
		var chunk models.TelemetryChunk
		if err := rows.Scan(&chunk.ID, &chunk.SessionID, &chunk.ArtifactID,
			&chunk.ParquetPath, &chunk.ChunkRowCount, &chunk.TotalSessionRows,
			&chunk.CreatedAt, &chunk.SchemaVersion); err != nil {
			return nil, fmt.Errorf("failed to scan telemetry chunk: %w", err)
		}
		out = append(out, &chunk)
	}
	return out, rows.Err()
}
