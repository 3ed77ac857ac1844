package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jesforart/traceos-sub000/pkg/models"
)

func TestBlockService_SaveAndGet(t *testing.T) {
	svc := NewBlockService(newTestDB(t))
	ctx := context.Background()

	block := &models.CognitiveMemoryBlock{
		SessionID:  "s1",
		ArtifactID: "a1",
		Tags:       []string{"sketch", "draft"},
		Notes:      "first pass",
		LDContext:  map[string]any{"tool": "pen", "layer": float64(2)},
		Metadata:   map[string]any{"source": "test"},
	}
	require.NoError(t, svc.SaveBlock(ctx, block))
	require.NotEmpty(t, block.ID)
	require.False(t, block.CreatedAt.IsZero())

	got, err := svc.GetBlock(ctx, block.ID)
	require.NoError(t, err)
	assert.Equal(t, block.SessionID, got.SessionID)
	assert.Equal(t, block.ArtifactID, got.ArtifactID)
	assert.Equal(t, []string{"sketch", "draft"}, got.Tags)
	assert.Equal(t, "first pass", got.Notes)
	assert.Equal(t, block.LDContext, got.LDContext)
}

func TestBlockService_GetMissing(t *testing.T) {
	svc := NewBlockService(newTestDB(t))

	_, err := svc.GetBlock(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetBlockByArtifact(context.Background(), "s", "a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBlockService_CompositeUniqueness(t *testing.T) {
	svc := NewBlockService(newTestDB(t))
	ctx := context.Background()

	first := &models.CognitiveMemoryBlock{ID: "b1", SessionID: "S", ArtifactID: "A"}
	require.NoError(t, svc.SaveBlock(ctx, first))

	// A different id for the same (session, artifact) must be rejected.
	second := &models.CognitiveMemoryBlock{ID: "b2", SessionID: "S", ArtifactID: "A"}
	err := svc.SaveBlock(ctx, second)
	require.Error(t, err)
	require.True(t, IsUniquenessViolation(err))
	var uv *UniquenessViolationError
	require.ErrorAs(t, err, &uv)
	assert.Equal(t, "b1", uv.ExistingID)

	got, err := svc.GetBlockByArtifact(ctx, "S", "A")
	require.NoError(t, err)
	assert.Equal(t, "b1", got.ID)
}

func TestBlockService_UpsertSameID(t *testing.T) {
	svc := NewBlockService(newTestDB(t))
	ctx := context.Background()

	block := &models.CognitiveMemoryBlock{ID: "b1", SessionID: "S", ArtifactID: "A", Notes: "v1"}
	require.NoError(t, svc.SaveBlock(ctx, block))
	created := block.CreatedAt

	block.Notes = "v2"
	block.StyleDNAID = "dna-1"
	require.NoError(t, svc.SaveBlock(ctx, block))

	got, err := svc.GetBlock(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Notes)
	assert.Equal(t, "dna-1", got.StyleDNAID)
	assert.Equal(t, created.Unix(), got.CreatedAt.Unix())

	blocks, err := svc.ListBlocksBySession(ctx, "S")
	require.NoError(t, err)
	assert.Len(t, blocks, 1, "upsert must not duplicate")
}

func TestBlockService_NilArtifactOutsideConstraint(t *testing.T) {
	svc := NewBlockService(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, svc.SaveBlock(ctx, &models.CognitiveMemoryBlock{SessionID: "S"}))
	require.NoError(t, svc.SaveBlock(ctx, &models.CognitiveMemoryBlock{SessionID: "S"}))

	blocks, err := svc.ListBlocksBySession(ctx, "S")
	require.NoError(t, err)
	assert.Len(t, blocks, 2)
}

func TestBlockService_RequiresSession(t *testing.T) {
	svc := NewBlockService(newTestDB(t))
	err := svc.SaveBlock(context.Background(), &models.CognitiveMemoryBlock{})
	require.Error(t, err)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}
