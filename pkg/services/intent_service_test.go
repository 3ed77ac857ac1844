package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jesforart/traceos-sub000/pkg/models"
)

func TestIntentService_RoundTrip(t *testing.T) {
	svc := NewIntentService(newTestDB(t))
	ctx := context.Background()

	intent := &models.IntentProfile{
		SessionID:         "s1",
		ArtifactID:        "a1",
		EmotionalRegister: map[string]float64{"melancholy": 0.7, "warmth": 0.2},
		TargetAudience:    "gallery",
		Constraints:       []string{"monochrome"},
		NarrativePrompt:   "winter harbor at dusk",
		StyleKeywords:     []string{"ink", "wash"},
		Source:            models.IntentSourceCriticInferred,
	}
	require.NoError(t, svc.SaveIntent(ctx, intent))
	require.NotEmpty(t, intent.ID)

	got, err := svc.GetIntent(ctx, intent.ID)
	require.NoError(t, err)
	assert.Equal(t, intent.EmotionalRegister, got.EmotionalRegister)
	assert.Equal(t, "gallery", got.TargetAudience)
	assert.Equal(t, []string{"monochrome"}, got.Constraints)
	assert.Equal(t, models.IntentSourceCriticInferred, got.Source)
}

func TestIntentService_DefaultsAndUpsert(t *testing.T) {
	svc := NewIntentService(newTestDB(t))
	ctx := context.Background()

	intent := &models.IntentProfile{ID: "i1", SessionID: "s1"}
	require.NoError(t, svc.SaveIntent(ctx, intent))
	assert.Equal(t, models.IntentSourceUserPrompt, intent.Source)

	got, err := svc.GetIntent(ctx, "i1")
	require.NoError(t, err)
	assert.Empty(t, got.EmotionalRegister)
	assert.Empty(t, got.Constraints)

	intent.NarrativePrompt = "revised"
	require.NoError(t, svc.SaveIntent(ctx, intent))
	got, err = svc.GetIntent(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, "revised", got.NarrativePrompt)
}

func TestIntentService_GetMissing(t *testing.T) {
	svc := NewIntentService(newTestDB(t))
	_, err := svc.GetIntent(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}
