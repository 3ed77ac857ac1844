package models

// IntentSource identifies who authored an intent profile.
type IntentSource string

// Intent source values.
const (
	IntentSourceUserPrompt     IntentSource = "user_prompt"
	IntentSourceCriticInferred IntentSource = "critic_inferred"
	IntentSourceDerived        IntentSource = "derived"
)

// IntentProfile is the Mind-layer record: the declared or inferred creative
// intent behind an artifact. Mutable only by re-save with the same id.
type IntentProfile struct {
	ID                string             `json:"id"`
	SessionID         string             `json:"session_id"`
	ArtifactID        string             `json:"artifact_id"`
	EmotionalRegister map[string]float64 `json:"emotional_register,omitempty"`
	TargetAudience    string             `json:"target_audience,omitempty"`
	Constraints       []string           `json:"constraints,omitempty"`
	NarrativePrompt   string             `json:"narrative_prompt,omitempty"`
	StyleKeywords     []string           `json:"style_keywords,omitempty"`
	Source            IntentSource       `json:"source"`
}
