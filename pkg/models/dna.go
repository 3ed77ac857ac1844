package models

import "time"

// StyleDNA is the Vibe-layer record. Each present vector has exactly
// vector.Dim float32 elements. Checksum, when set, is the hex SHA-256 of the
// packed concatenation stroke‖image‖temporal (absent vectors skipped) and is
// re-verified on every load.
type StyleDNA struct {
	ID          string    `json:"id"`
	ArtifactID  string    `json:"artifact_id"`
	StrokeDNA   []float32 `json:"stroke_dna,omitempty"`
	ImageDNA    []float32 `json:"image_dna,omitempty"`
	TemporalDNA []float32 `json:"temporal_dna,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	L2Norm      *float64  `json:"l2_norm,omitempty"`
	Checksum    string    `json:"checksum,omitempty"`
}
