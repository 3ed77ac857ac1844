// Package ingest runs the artifact ingestion pipeline: telemetry, style
// vectors, intent, then the memory block that links them.
package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jesforart/traceos-sub000/pkg/models"
	"github.com/jesforart/traceos-sub000/pkg/services"
	"github.com/jesforart/traceos-sub000/pkg/telemetry"
	"github.com/jesforart/traceos-sub000/pkg/vector"
)

// Engine wires the ingestion pipeline. The telemetry pool is optional; with
// none configured, stroke batches are encoded but not persisted to disk.
type Engine struct {
	telemetry *telemetry.WriterPool
	chunks    *services.ChunkService
	dnas      *services.DNAService
	intents   *services.IntentService
	blocks    *services.BlockService
}

// NewEngine creates an ingestion engine.
func NewEngine(pool *telemetry.WriterPool, chunks *services.ChunkService,
	dnas *services.DNAService, intents *services.IntentService,
	blocks *services.BlockService) *Engine {
	return &Engine{telemetry: pool, chunks: chunks, dnas: dnas, intents: intents, blocks: blocks}
}

// Ingest runs the pipeline for one artifact. Steps are ordered so a partial
// failure leaves orphan vectors or intents a retry can re-link, never a block
// pointing at missing children.
func (e *Engine) Ingest(ctx context.Context, req *models.IngestRequest) (*models.IngestResult, error) {
	if req.SessionID == "" {
		return nil, services.NewValidationError("session_id", "required")
	}
	if req.ArtifactID == "" {
		return nil, services.NewValidationError("artifact_id", "required")
	}

	if len(req.Strokes) > 0 && e.telemetry != nil {
		chunk, err := e.telemetry.SaveStrokes(req.SessionID, req.ArtifactID, req.Strokes)
		if err != nil {
			return nil, fmt.Errorf("failed to persist telemetry: %w", err)
		}
		if err := e.chunks.SaveChunk(ctx, chunk); err != nil {
			return nil, fmt.Errorf("failed to record telemetry chunk: %w", err)
		}
	}

	// Each vector exists iff its input does. An empty ingestion yields a
	// StyleDNA with no vectors at all, not zero-padded ones.
	dna := &models.StyleDNA{ArtifactID: req.ArtifactID}
	if len(req.Strokes) > 0 {
		dna.StrokeDNA = vector.EncodeStrokes(req.Strokes)
		dna.TemporalDNA = vector.EncodeTemporal(req.Strokes)
	}
	if len(req.Image) > 0 {
		dna.ImageDNA = vector.EncodeImage(req.Image)
	}
	if err := e.dnas.SaveDNA(ctx, dna); err != nil {
		return nil, fmt.Errorf("failed to save style dna: %w", err)
	}

	intentID := ""
	if req.Intent != nil {
		intent := *req.Intent
		if intent.SessionID == "" {
			intent.SessionID = req.SessionID
		}
		if intent.ArtifactID == "" {
			intent.ArtifactID = req.ArtifactID
		}
		if err := e.intents.SaveIntent(ctx, &intent); err != nil {
			return nil, fmt.Errorf("failed to save intent profile: %w", err)
		}
		intentID = intent.ID
	}

	block := &models.CognitiveMemoryBlock{
		SessionID:       req.SessionID,
		ArtifactID:      req.ArtifactID,
		StyleDNAID:      dna.ID,
		IntentProfileID: intentID,
		Tags:            req.Tags,
		Notes:           req.Notes,
		Metadata:        req.Metadata,
	}
	if req.SVG != "" {
		block.LDContext = map[string]any{"svg": req.SVG}
	}
	if err := e.blocks.SaveBlock(ctx, block); err != nil {
		return nil, err
	}

	slog.Info("Ingested artifact",
		"session_id", req.SessionID,
		"artifact_id", req.ArtifactID,
		"block_id", block.ID,
		"strokes", len(req.Strokes),
		"has_image", len(req.Image) > 0,
		"has_intent", req.Intent != nil)

	return &models.IngestResult{
		BlockID:         block.ID,
		StyleDNAID:      dna.ID,
		IntentProfileID: intentID,
	}, nil
}
