package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jesforart/traceos-sub000/pkg/models"
	"github.com/jesforart/traceos-sub000/pkg/vector"
)

func dnaVector(seed float32) []float32 {
	v := make([]float32, vector.Dim)
	for i := range v {
		v[i] = seed + float32(i)*0.5
	}
	return v
}

func TestDNAService_RoundTrip(t *testing.T) {
	svc := NewDNAService(newTestDB(t))
	ctx := context.Background()

	dna := &models.StyleDNA{
		ArtifactID:  "a1",
		StrokeDNA:   dnaVector(1),
		TemporalDNA: dnaVector(2),
	}
	require.NoError(t, svc.SaveDNA(ctx, dna))
	require.NotEmpty(t, dna.ID)
	require.Len(t, dna.Checksum, 64, "checksum is computed at save time")
	require.NotNil(t, dna.L2Norm)
	assert.InDelta(t, vector.L2Norm(dnaVector(1)), *dna.L2Norm, 1e-9)

	got, err := svc.GetDNA(ctx, dna.ID)
	require.NoError(t, err)
	assert.Equal(t, dna.StrokeDNA, got.StrokeDNA)
	assert.Nil(t, got.ImageDNA)
	assert.Equal(t, dna.TemporalDNA, got.TemporalDNA)
	assert.Equal(t, dna.Checksum, got.Checksum)
}

func TestDNAService_AllVectorsAbsent(t *testing.T) {
	svc := NewDNAService(newTestDB(t))
	ctx := context.Background()

	dna := &models.StyleDNA{ArtifactID: "a1"}
	require.NoError(t, svc.SaveDNA(ctx, dna))
	assert.Empty(t, dna.Checksum)
	assert.Nil(t, dna.L2Norm)

	got, err := svc.GetDNA(ctx, dna.ID)
	require.NoError(t, err)
	assert.Nil(t, got.StrokeDNA)
	assert.Nil(t, got.ImageDNA)
	assert.Nil(t, got.TemporalDNA)
}

func TestDNAService_ChecksumDetectsCorruption(t *testing.T) {
	client := newTestDB(t)
	svc := NewDNAService(client)
	ctx := context.Background()

	dna := &models.StyleDNA{ArtifactID: "a1", StrokeDNA: dnaVector(3)}
	require.NoError(t, svc.SaveDNA(ctx, dna))

	// Flip one byte of the stored blob.
	var blob []byte
	require.NoError(t, client.DB().QueryRowContext(ctx,
		`SELECT stroke_dna FROM style_dna WHERE id = ?`, dna.ID).Scan(&blob))
	blob[17] ^= 0xFF
	_, err := client.DB().ExecContext(ctx,
		`UPDATE style_dna SET stroke_dna = ? WHERE id = ?`, blob, dna.ID)
	require.NoError(t, err)

	_, err = svc.GetDNA(ctx, dna.ID)
	require.Error(t, err)
	assert.True(t, IsChecksumMismatch(err))
}

func TestDNAService_TruncatedBlobIsDimensionError(t *testing.T) {
	client := newTestDB(t)
	svc := NewDNAService(client)
	ctx := context.Background()

	dna := &models.StyleDNA{ArtifactID: "a1", StrokeDNA: dnaVector(4)}
	require.NoError(t, svc.SaveDNA(ctx, dna))

	_, err := client.DB().ExecContext(ctx,
		`UPDATE style_dna SET stroke_dna = X'00010203' WHERE id = ?`, dna.ID)
	require.NoError(t, err)

	_, err = svc.GetDNA(ctx, dna.ID)
	require.Error(t, err)
	var de *vector.DimensionError
	assert.ErrorAs(t, err, &de)
}

func TestDNAService_GetMissing(t *testing.T) {
	svc := NewDNAService(newTestDB(t))
	_, err := svc.GetDNA(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDNAService_WrongDimensionRejected(t *testing.T) {
	svc := NewDNAService(newTestDB(t))
	dna := &models.StyleDNA{ArtifactID: "a1", StrokeDNA: make([]float32, 12)}
	err := svc.SaveDNA(context.Background(), dna)
	require.Error(t, err)
}
