package gut

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jesforart/traceos-sub000/pkg/models"
)

func TestAdjustCreativity(t *testing.T) {
	tests := []struct {
		name string
		base float64
		gut  *models.GutState
		want float64
	}{
		{"nil gut passes through", 5.0, nil, 5.0},
		{"frustration halves", 1.0, &models.GutState{Mood: models.MoodFrustration, FrustrationIndex: 0.8}, 0.5},
		{"flow boosts", 1.0, &models.GutState{Mood: models.MoodFlow, FlowProbability: 0.9}, 1.3},
		{"chaos collapses", 1.0, &models.GutState{Mood: models.MoodChaos, FrustrationIndex: 0.95}, 0.15},
		{"exploration nudges up", 1.0, &models.GutState{Mood: models.MoodExploration, FrustrationIndex: 0.2, FlowProbability: 0.6}, 1.15},
		{"clamped high", 1.9, &models.GutState{Mood: models.MoodFlow, FlowProbability: 0.9}, 2.0},
		{"calm is identity", 0.7, &models.GutState{Mood: models.MoodCalm, FrustrationIndex: 0.3, FlowProbability: 0.3}, 0.7},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, AdjustCreativity(tc.base, tc.gut), 1e-9)
		})
	}
}

func TestAdjustStyleDistance(t *testing.T) {
	tests := []struct {
		name string
		base float64
		gut  *models.GutState
		want float64
	}{
		{"nil gut passes through", 0.9, nil, 0.9},
		{"flow widens", 0.3, &models.GutState{Mood: models.MoodFlow, FlowProbability: 0.9}, 0.39},
		{"frustration tightens", 0.3, &models.GutState{Mood: models.MoodFrustration, FrustrationIndex: 0.8}, 0.21},
		{"exploration widens", 0.3, &models.GutState{Mood: models.MoodExploration, FlowProbability: 0.6}, 0.36},
		{"clamped high", 0.45, &models.GutState{Mood: models.MoodFlow, FlowProbability: 0.9}, 0.5},
		{"clamped low", 0.12, &models.GutState{Mood: models.MoodFrustration, FrustrationIndex: 0.8}, 0.1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, AdjustStyleDistance(tc.base, tc.gut), 1e-9)
		})
	}
}

func TestShouldRouteToShadow(t *testing.T) {
	assert.False(t, ShouldRouteToShadow(nil))
	assert.True(t, ShouldRouteToShadow(&models.GutState{Mood: models.MoodChaos}))
	assert.True(t, ShouldRouteToShadow(&models.GutState{Mood: models.MoodCalm, FrustrationIndex: 0.95}))
	assert.False(t, ShouldRouteToShadow(&models.GutState{Mood: models.MoodFrustration, FrustrationIndex: 0.75}))
}

func TestCouplingNeverMutatesState(t *testing.T) {
	c, _ := newFakeCritic()
	c.IngestBatch(eventsOf(10, models.ResonanceUndo, ms(100), false))
	before := c.Snapshot()

	snapshot := c.Snapshot()
	AdjustCreativity(1.0, &snapshot)
	AdjustStyleDistance(0.3, &snapshot)
	ShouldRouteToShadow(&snapshot)

	require.Equal(t, before, c.Snapshot(), "adjustment functions must not write state")
	assert.Equal(t, before, snapshot, "even the caller's snapshot stays untouched")
}
