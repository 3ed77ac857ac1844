package gut

import "github.com/jesforart/traceos-sub000/pkg/models"

// Pure read-only consumers of GutState. They take a snapshot by value and
// can never mutate the critic's state.

// AdjustCreativity scales an oracle temperature by the session's mood.
// The result is clamped to [0.1, 2.0]. A nil gut leaves base unchanged.
func AdjustCreativity(base float64, gut *models.GutState) float64 {
	if gut == nil {
		return base
	}
	temp := base
	if gut.FrustrationIndex > 0.7 {
		temp *= 0.5
	}
	if gut.FlowProbability > 0.8 {
		temp *= 1.3
	}
	if gut.Mood == models.MoodChaos {
		temp *= 0.3
	}
	if gut.Mood == models.MoodExploration && gut.FrustrationIndex < 0.4 {
		temp *= 1.15
	}
	return clamp(temp, 0.1, 2.0)
}

// AdjustStyleDistance scales how far generated variations may stray from the
// user's style. The result is clamped to [0.1, 0.5].
func AdjustStyleDistance(base float64, gut *models.GutState) float64 {
	if gut == nil {
		return base
	}
	distance := base
	if gut.FlowProbability > 0.8 {
		distance *= 1.3
	}
	if gut.FrustrationIndex > 0.7 {
		distance *= 0.7
	}
	if gut.Mood == models.MoodExploration {
		distance *= 1.2
	}
	return clamp(distance, 0.1, 0.5)
}

// ShouldRouteToShadow reports whether work should be diverted to the shadow
// path instead of interrupting the user.
func ShouldRouteToShadow(gut *models.GutState) bool {
	if gut == nil {
		return false
	}
	return gut.Mood == models.MoodChaos || gut.FrustrationIndex > 0.9
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
