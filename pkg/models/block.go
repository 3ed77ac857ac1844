// Package models defines the core entities of the tri-state memory runtime
// and the request/filter types exchanged between the API and service layers.
package models

import "time"

// CognitiveMemoryBlock is the Logic-layer record. It links an artifact to its
// style DNA and intent profile within a session. For any non-empty ArtifactID,
// the pair (SessionID, ArtifactID) is unique across the repository, enforced
// by a schema constraint rather than application code.
type CognitiveMemoryBlock struct {
	ID              string         `json:"id"`
	SessionID       string         `json:"session_id"`
	ArtifactID      string         `json:"artifact_id,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	LDContext       map[string]any `json:"ld_context,omitempty"`
	DerivedFrom     string         `json:"derived_from,omitempty"`
	IntentProfileID string         `json:"intent_profile_id,omitempty"`
	StyleDNAID      string         `json:"style_dna_id,omitempty"`
	Tags            []string       `json:"tags,omitempty"`
	Notes           string         `json:"notes,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}
