package models

// IngestRequest carries one artifact into the ingestion engine. Any subset of
// SVG, Image, Strokes and Intent may be present.
type IngestRequest struct {
	SessionID  string         `json:"session_id"`
	ArtifactID string         `json:"artifact_id"`
	SVG        string         `json:"svg,omitempty"`
	Image      []byte         `json:"image,omitempty"`
	Strokes    []StrokeSample `json:"strokes,omitempty"`
	Intent     *IntentProfile `json:"intent,omitempty"`
	Tags       []string       `json:"tags,omitempty"`
	Notes      string         `json:"notes,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// IngestResult reports the ids created by one ingestion.
type IngestResult struct {
	BlockID         string `json:"block_id"`
	StyleDNAID      string `json:"style_dna_id"`
	IntentProfileID string `json:"intent_profile_id,omitempty"`
}

// TaskRequest is one capability-typed task submitted to the dispatcher.
type TaskRequest struct {
	SessionID  string         `json:"session_id"`
	Capability string         `json:"capability"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Context    map[string]any `json:"context,omitempty"`
	FromAgent  string         `json:"from_agent,omitempty"`
}

// TaskResult is the dispatcher's return payload, augmented with the ids of
// the REQUEST contract and the agent that served it.
type TaskResult struct {
	Data       map[string]any `json:"data,omitempty"`
	ContractID string         `json:"contract_id"`
	AgentID    string         `json:"agent_id"`
}
