package models

import "time"

// StrokeSample is one raw pen/pointer sample as received from the boundary.
type StrokeSample struct {
	X         float32 `json:"x"`
	Y         float32 `json:"y"`
	Pressure  float32 `json:"pressure"`
	Timestamp float64 `json:"timestamp"`
	Tilt      float32 `json:"tilt"`
	TiltX     float32 `json:"tilt_x"`
	TiltY     float32 `json:"tilt_y"`
}

// TelemetryChunk describes one row-group append to a session's columnar file.
// For a given session, the sum of ChunkRowCount over all chunks equals the
// last written TotalSessionRows.
type TelemetryChunk struct {
	ID               string    `json:"id"`
	SessionID        string    `json:"session_id"`
	ArtifactID       string    `json:"artifact_id"`
	ParquetPath      string    `json:"parquet_path"`
	ChunkRowCount    int       `json:"chunk_row_count"`
	TotalSessionRows int       `json:"total_session_rows"`
	CreatedAt        time.Time `json:"created_at"`
	SchemaVersion    int       `json:"schema_version"`
}
