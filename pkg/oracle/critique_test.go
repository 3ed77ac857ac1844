package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validCritique = `{
	"overall_score": 0.82,
	"overall_feedback": "Confident linework with a slightly crowded center.",
	"composition": {"score": 0.8, "rationale": "Strong diagonal flow."},
	"color_harmony": {"score": 0.7, "rationale": "Restrained palette."},
	"balance": {"score": 0.75, "rationale": "Weight pulls left."},
	"visual_interest": {"score": 0.9, "rationale": "Texture variety."},
	"technical_execution": {"score": 0.85, "rationale": "Clean curves."},
	"strengths": ["linework"],
	"areas_for_improvement": ["negative space"],
	"style_tags": ["ink", "gestural"]
}`

func TestParseCritique_Valid(t *testing.T) {
	critique, err := ParseCritique(validCritique)
	require.NoError(t, err)
	assert.InDelta(t, 0.82, critique.OverallScore, 1e-9)
	assert.Equal(t, "Strong diagonal flow.", critique.Composition.Rationale)
	assert.Equal(t, []string{"ink", "gestural"}, critique.StyleTags)
}

func TestParseCritique_Fenced(t *testing.T) {
	critique, err := ParseCritique("```json\n" + validCritique + "\n```")
	require.NoError(t, err)
	assert.InDelta(t, 0.85, critique.TechnicalExecution.Score, 1e-9)
}

func TestParseCritique_MissingDimension(t *testing.T) {
	raw := `{
		"overall_score": 0.5,
		"overall_feedback": "meh",
		"composition": {"score": 0.5, "rationale": "ok"},
		"strengths": [], "areas_for_improvement": [], "style_tags": []
	}`
	_, err := ParseCritique(raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation")
}

func TestParseCritique_ScoreOutOfRange(t *testing.T) {
	raw := `{
		"overall_score": 1.4,
		"overall_feedback": "x",
		"composition": {"score": 0.5, "rationale": "r"},
		"color_harmony": {"score": 0.5, "rationale": "r"},
		"balance": {"score": 0.5, "rationale": "r"},
		"visual_interest": {"score": 0.5, "rationale": "r"},
		"technical_execution": {"score": 0.5, "rationale": "r"},
		"strengths": [], "areas_for_improvement": [], "style_tags": []
	}`
	_, err := ParseCritique(raw)
	assert.Error(t, err)
}

func TestParseCritique_NotJSON(t *testing.T) {
	_, err := ParseCritique("I liked it")
	assert.Error(t, err)
}

func TestCritiquePrompt(t *testing.T) {
	prompt := CritiquePrompt("<svg/>", "rough draft")
	assert.Contains(t, prompt, "<svg/>")
	assert.Contains(t, prompt, "rough draft")
	assert.Contains(t, prompt, "overall_score")
}
