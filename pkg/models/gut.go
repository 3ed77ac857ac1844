package models

import "time"

// Mood is one of five discrete labels summarising the continuous
// frustration/flow indices.
type Mood string

// Mood values.
const (
	MoodCalm        Mood = "Calm"
	MoodFlow        Mood = "Flow"
	MoodFrustration Mood = "Frustration"
	MoodChaos       Mood = "Chaos"
	MoodExploration Mood = "Exploration"
)

// GutState is the emotional snapshot of one session. It is mutated only
// inside the valuation engine; everything else receives a copy.
type GutState struct {
	Mood             Mood      `json:"mood"`
	FrustrationIndex float64   `json:"frustration_index"`
	FlowProbability  float64   `json:"flow_probability"`
	LastUpdated      time.Time `json:"last_updated"`
}

// ResonanceEventType classifies one interaction micro-event.
type ResonanceEventType string

// Resonance event types.
const (
	ResonanceStrokeAccept  ResonanceEventType = "stroke_accept"
	ResonanceStrokeReject  ResonanceEventType = "stroke_reject"
	ResonanceGhostAccept   ResonanceEventType = "ghost_accept"
	ResonanceGhostReject   ResonanceEventType = "ghost_reject"
	ResonanceUndo          ResonanceEventType = "undo"
	ResonanceRedo          ResonanceEventType = "redo"
	ResonancePauseDetected ResonanceEventType = "pause_detected"
)

// ResonanceEvent is one interaction micro-event the valuation engine tastes.
type ResonanceEvent struct {
	Type         ResonanceEventType `json:"type"`
	Timestamp    time.Time          `json:"timestamp"`
	SessionID    string             `json:"session_id,omitempty"`
	LatencyMs    *float64           `json:"latency_ms,omitempty"`
	ErraticInput bool               `json:"erratic_input,omitempty"`
	Context      map[string]any     `json:"context,omitempty"`
}
