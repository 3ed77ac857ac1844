package oracle

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ScoredDimension is one judged axis of a critique.
type ScoredDimension struct {
	Score     float64 `json:"score"`
	Rationale string  `json:"rationale"`
}

// Critique is the structured aesthetic evaluation returned by the oracle.
// All six scored fields are required.
type Critique struct {
	OverallScore        float64         `json:"overall_score"`
	OverallFeedback     string          `json:"overall_feedback"`
	Composition         ScoredDimension `json:"composition"`
	ColorHarmony        ScoredDimension `json:"color_harmony"`
	Balance             ScoredDimension `json:"balance"`
	VisualInterest      ScoredDimension `json:"visual_interest"`
	TechnicalExecution  ScoredDimension `json:"technical_execution"`
	Strengths           []string        `json:"strengths"`
	AreasForImprovement []string        `json:"areas_for_improvement"`
	StyleTags           []string        `json:"style_tags"`
}

const critiqueSchemaJSON = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": [
		"overall_score", "overall_feedback", "composition", "color_harmony",
		"balance", "visual_interest", "technical_execution",
		"strengths", "areas_for_improvement", "style_tags"
	],
	"properties": {
		"overall_score": {"type": "number", "minimum": 0, "maximum": 1},
		"overall_feedback": {"type": "string"},
		"composition": {"$ref": "#/$defs/dimension"},
		"color_harmony": {"$ref": "#/$defs/dimension"},
		"balance": {"$ref": "#/$defs/dimension"},
		"visual_interest": {"$ref": "#/$defs/dimension"},
		"technical_execution": {"$ref": "#/$defs/dimension"},
		"strengths": {"type": "array", "items": {"type": "string"}},
		"areas_for_improvement": {"type": "array", "items": {"type": "string"}},
		"style_tags": {"type": "array", "items": {"type": "string"}}
	},
	"$defs": {
		"dimension": {
			"type": "object",
			"required": ["score", "rationale"],
			"properties": {
				"score": {"type": "number", "minimum": 0, "maximum": 1},
				"rationale": {"type": "string"}
			}
		}
	}
}`

var (
	critiqueSchemaOnce sync.Once
	critiqueSchema     *jsonschema.Schema
	critiqueSchemaErr  error
)

func compiledCritiqueSchema() (*jsonschema.Schema, error) {
	critiqueSchemaOnce.Do(func() {
		var doc any
		if err := json.Unmarshal([]byte(critiqueSchemaJSON), &doc); err != nil {
			critiqueSchemaErr = fmt.Errorf("unmarshal critique schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("critique.json", doc); err != nil {
			critiqueSchemaErr = fmt.Errorf("add critique schema resource: %w", err)
			return
		}
		critiqueSchema, critiqueSchemaErr = c.Compile("critique.json")
	})
	return critiqueSchema, critiqueSchemaErr
}

// ParseCritique decodes and schema-validates an oracle critique reply.
// Unlike compression there is no degraded path: an invalid critique is an
// error the boundary reports as-is.
func ParseCritique(raw string) (*Critique, error) {
	cleaned := StripFences(raw)

	var doc any
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return nil, fmt.Errorf("critique is not valid JSON: %w", err)
	}

	schema, err := compiledCritiqueSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("critique failed schema validation: %w", err)
	}

	var critique Critique
	if err := json.Unmarshal([]byte(cleaned), &critique); err != nil {
		return nil, fmt.Errorf("failed to decode critique: %w", err)
	}
	return &critique, nil
}

// CritiquePrompt builds the deterministic prompt for one artifact critique.
func CritiquePrompt(svg, notes string) string {
	prompt := "You are an art critic evaluating a vector drawing.\n" +
		"Return ONLY a JSON object with fields: overall_score (0..1), overall_feedback, " +
		"composition {score, rationale}, color_harmony {score, rationale}, " +
		"balance {score, rationale}, visual_interest {score, rationale}, " +
		"technical_execution {score, rationale}, strengths [], " +
		"areas_for_improvement [], style_tags [].\n\nSVG:\n" + svg
	if notes != "" {
		prompt += "\n\nArtist notes:\n" + notes
	}
	return prompt
}
