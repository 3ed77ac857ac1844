package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jesforart/traceos-sub000/pkg/database"
	"github.com/jesforart/traceos-sub000/pkg/models"
)

// BlockService manages CognitiveMemoryBlock persistence.
type BlockService struct {
	client *database.Client
}

// NewBlockService creates a new BlockService.
func NewBlockService(client *database.Client) *BlockService {
	return &BlockService{client: client}
}

// SaveBlock upserts a block by id. A missing id is generated; timestamps are
// set for new blocks and UpdatedAt is refreshed on every save. Saving a
// block whose (session_id, artifact_id) pair belongs to a different id
// returns a UniquenessViolationError and writes nothing.
func (s *BlockService) SaveBlock(ctx context.Context, block *models.CognitiveMemoryBlock) error {
	if block.SessionID == "" {
		return NewValidationError("session_id", "required")
	}
	if block.ID == "" {
		block.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if block.CreatedAt.IsZero() {
		block.CreatedAt = now
	}
	block.UpdatedAt = now

	ldContext, err := marshalJSON(block.LDContext)
	if err != nil {
		return err
	}
	metadata, err := marshalJSON(block.Metadata)
	if err != nil {
		return err
	}
	tags := block.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := marshalJSON(tags)
	if err != nil {
		return err
	}

	_, err = s.client.DB().ExecContext(ctx,
		`INSERT INTO memory_blocks
			(id, session_id, artifact_id, created_at, updated_at, ld_context,
			 derived_from, intent_profile_id, style_dna_id, tags, notes, metadata)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			session_id = excluded.session_id,
			artifact_id = excluded.artifact_id,
			updated_at = excluded.updated_at,
			ld_context = excluded.ld_context,
			derived_from = excluded.derived_from,
			intent_profile_id = excluded.intent_profile_id,
			style_dna_id = excluded.style_dna_id,
			tags = excluded.tags,
			notes = excluded.notes,
			metadata = excluded.metadata`,
		block.ID, block.SessionID, nullable(block.ArtifactID),
		block.CreatedAt, block.UpdatedAt, ldContext,
		nullable(block.DerivedFrom), nullable(block.IntentProfileID),
		nullable(block.StyleDNAID), tagsJSON, block.Notes, metadata)
	if err != nil {
		if isUniqueConstraint(err) {
			existing, lookupErr := s.GetBlockByArtifact(ctx, block.SessionID, block.ArtifactID)
			uv := &UniquenessViolationError{
				SessionID:  block.SessionID,
				ArtifactID: block.ArtifactID,
			}
			if lookupErr == nil && existing != nil {
				uv.ExistingID = existing.ID
			}
			return uv
		}
		return fmt.Errorf("failed to save block: %w", err)
	}
	return nil
}

// GetBlock reads a block by id. Returns ErrNotFound when absent.
func (s *BlockService) GetBlock(ctx context.Context, id string) (*models.CognitiveMemoryBlock, error) {
	row := s.client.DB().QueryRowContext(ctx,
		`SELECT id, session_id, artifact_id, created_at, updated_at, ld_context,
			derived_from, intent_profile_id, style_dna_id, tags, notes, metadata
		 FROM memory_blocks WHERE id = ?`, id)
	return scanBlock(row)
}

// GetBlockByArtifact does the composite-key lookup. Returns ErrNotFound when
// absent.
func (s *BlockService) GetBlockByArtifact(ctx context.Context, sessionID, artifactID string) (*models.CognitiveMemoryBlock, error) {
	row := s.client.DB().QueryRowContext(ctx,
		`SELECT id, session_id, artifact_id, created_at, updated_at, ld_context,
			derived_from, intent_profile_id, style_dna_id, tags, notes, metadata
		 FROM memory_blocks WHERE session_id = ? AND artifact_id = ?`,
		sessionID, artifactID)
	return scanBlock(row)
}

// ListBlocksBySession returns a session's blocks in creation order.
func (s *BlockService) ListBlocksBySession(ctx context.Context, sessionID string) ([]*models.CognitiveMemoryBlock, error) {
	rows, err := s.client.DB().QueryContext(ctx,
		`SELECT id, session_id, artifact_id, created_at, updated_at, ld_context,
			derived_from, intent_profile_id, style_dna_id, tags, notes, metadata
		 FROM memory_blocks WHERE session_id = ? ORDER BY created_at, id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocks: %w", err)
	}
	defer rows.Close()

	var out []*models.CognitiveMemoryBlock
	for rows.Next() {
		block, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, block)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBlock(row rowScanner) (*models.CognitiveMemoryBlock, error) {
	var (
		block                                          models.CognitiveMemoryBlock
		artifactID, derivedFrom, intentID, styleID     sql.NullString
		ldContext, metadata                            []byte
		tags                                           []byte
	)
	err := row.Scan(&block.ID, &block.SessionID, &artifactID,
		&block.CreatedAt, &block.UpdatedAt, &ldContext,
		&derivedFrom, &intentID, &styleID, &tags, &block.Notes, &metadata)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan block: %w", err)
	}

	block.ArtifactID = artifactID.String
	block.DerivedFrom = derivedFrom.String
	block.IntentProfileID = intentID.String
	block.StyleDNAID = styleID.String
	if block.LDContext, err = unmarshalMap(ldContext); err != nil {
		return nil, err
	}
	if block.Metadata, err = unmarshalMap(metadata); err != nil {
		return nil, err
	}
	if block.Tags, err = unmarshalStrings(tags); err != nil {
		return nil, err
	}
	return &block, nil
}

// nullable maps "" to NULL so optional string columns stay out of unique
// indexes and joins.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
