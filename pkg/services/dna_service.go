package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jesforart/traceos-sub000/pkg/database"
	"github.com/jesforart/traceos-sub000/pkg/models"
	"github.com/jesforart/traceos-sub000/pkg/vector"
)

// DNAService manages StyleDNA persistence. Records are immutable after save;
// the checksum is computed here at save time and re-verified on every load.
type DNAService struct {
	client *database.Client
}

// NewDNAService creates a new DNAService.
func NewDNAService(client *database.Client) *DNAService {
	return &DNAService{client: client}
}

// SaveDNA persists a StyleDNA. Present vectors must have exactly vector.Dim
// elements. The checksum covers the packed concatenation of present vectors
// in the fixed stroke, image, temporal order; L2Norm is taken from the
// stroke vector when present.
func (s *DNAService) SaveDNA(ctx context.Context, dna *models.StyleDNA) error {
	if dna.ArtifactID == "" {
		return NewValidationError("artifact_id", "required")
	}
	if dna.ID == "" {
		dna.ID = uuid.New().String()
	}
	if dna.CreatedAt.IsZero() {
		dna.CreatedAt = time.Now().UTC()
	}

	checksum, err := vector.Checksum(dna.StrokeDNA, dna.ImageDNA, dna.TemporalDNA)
	if err != nil {
		return fmt.Errorf("failed to checksum style dna: %w", err)
	}
	dna.Checksum = checksum
	if dna.StrokeDNA != nil {
		norm := vector.L2Norm(dna.StrokeDNA)
		dna.L2Norm = &norm
	}

	stroke, err := packOptional(dna.StrokeDNA)
	if err != nil {
		return err
	}
	image, err := packOptional(dna.ImageDNA)
	if err != nil {
		return err
	}
	temporal, err := packOptional(dna.TemporalDNA)
	if err != nil {
		return err
	}

	_, err = s.client.DB().ExecContext(ctx,
		`INSERT INTO style_dna
			(id, artifact_id, stroke_dna, image_dna, temporal_dna, created_at, l2_norm, checksum)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			artifact_id = excluded.artifact_id,
			stroke_dna = excluded.stroke_dna,
			image_dna = excluded.image_dna,
			temporal_dna = excluded.temporal_dna,
			l2_norm = excluded.l2_norm,
			checksum = excluded.checksum`,
		dna.ID, dna.ArtifactID, stroke, image, temporal,
		dna.CreatedAt, dna.L2Norm, nullable(dna.Checksum))
	if err != nil {
		return fmt.Errorf("failed to save style dna: %w", err)
	}
	return nil
}

// GetDNA reads a StyleDNA by id, unpacking the vectors and re-verifying the
// stored checksum. A mismatch is a hard ChecksumMismatchError. Returns
// ErrNotFound when absent.
func (s *DNAService) GetDNA(ctx context.Context, id string) (*models.StyleDNA, error) {
	var (
		dna                     models.StyleDNA
		stroke, image, temporal []byte
		l2norm                  sql.NullFloat64
		checksum                sql.NullString
	)
	err := s.client.DB().QueryRowContext(ctx,
		`SELECT id, artifact_id, stroke_dna, image_dna, temporal_dna, created_at, l2_norm, checksum
		 FROM style_dna WHERE id = ?`, id).
		Scan(&dna.ID, &dna.ArtifactID, &stroke, &image, &temporal,
			&dna.CreatedAt, &l2norm, &checksum)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read style dna: %w", err)
	}

	if dna.StrokeDNA, err = unpackOptional(stroke); err != nil {
		return nil, err
	}
	if dna.ImageDNA, err = unpackOptional(image); err != nil {
		return nil, err
	}
	if dna.TemporalDNA, err = unpackOptional(temporal); err != nil {
		return nil, err
	}
	if l2norm.Valid {
		dna.L2Norm = &l2norm.Float64
	}
	dna.Checksum = checksum.String

	if dna.Checksum != "" {
		computed, err := vector.Checksum(dna.StrokeDNA, dna.ImageDNA, dna.TemporalDNA)
		if err != nil {
			return nil, fmt.Errorf("failed to recompute checksum: %w", err)
		}
		if computed != dna.Checksum {
			return nil, &ChecksumMismatchError{ID: dna.ID, Stored: dna.Checksum, Computed: computed}
		}
	}
	return &dna, nil
}

func packOptional(v []float32) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	packed, err := vector.Pack(v)
	if err != nil {
		return nil, fmt.Errorf("failed to pack vector: %w", err)
	}
	return packed, nil
}

func unpackOptional(data []byte) ([]float32, error) {
	if data == nil {
		return nil, nil
	}
	return vector.Unpack(data)
}
