package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/jesforart/traceos-sub000/pkg/database"
	"github.com/jesforart/traceos-sub000/pkg/models"
)

// IntentService manages IntentProfile persistence. Profiles are mutable only
// by re-save with the same id.
type IntentService struct {
	client *database.Client
}

// NewIntentService creates a new IntentService.
func NewIntentService(client *database.Client) *IntentService {
	return &IntentService{client: client}
}

// SaveIntent upserts an intent profile by id.
func (s *IntentService) SaveIntent(ctx context.Context, intent *models.IntentProfile) error {
	if intent.SessionID == "" {
		return NewValidationError("session_id", "required")
	}
	if intent.ID == "" {
		intent.ID = uuid.New().String()
	}
	if intent.Source == "" {
		intent.Source = models.IntentSourceUserPrompt
	}

	register, err := marshalJSON(orEmptyMap(intent.EmotionalRegister))
	if err != nil {
		return err
	}
	constraints, err := marshalJSON(orEmptyList(intent.Constraints))
	if err != nil {
		return err
	}
	keywords, err := marshalJSON(orEmptyList(intent.StyleKeywords))
	if err != nil {
		return err
	}

	_, err = s.client.DB().ExecContext(ctx,
		`INSERT INTO intent_profiles
			(id, session_id, artifact_id, emotional_register, target_audience,
			 constraints, narrative_prompt, style_keywords, source)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			session_id = excluded.session_id,
			artifact_id = excluded.artifact_id,
			emotional_register = excluded.emotional_register,
			target_audience = excluded.target_audience,
			constraints = excluded.constraints,
			narrative_prompt = excluded.narrative_prompt,
			style_keywords = excluded.style_keywords,
			source = excluded.source`,
		intent.ID, intent.SessionID, intent.ArtifactID, register,
		nullable(intent.TargetAudience), constraints,
		nullable(intent.NarrativePrompt), keywords, string(intent.Source))
	if err != nil {
		return fmt.Errorf("failed to save intent profile: %w", err)
	}
	return nil
}

// GetIntent reads an intent profile by id. Returns ErrNotFound when absent.
func (s *IntentService) GetIntent(ctx context.Context, id string) (*models.IntentProfile, error) {
	var (
		intent                          models.IntentProfile
		register, constraints, keywords []byte
		audience, narrative             sql.NullString
		source                          string
	)
	err := s.client.DB().QueryRowContext(ctx,
		`SELECT id, session_id, artifact_id, emotional_register, target_audience,
			constraints, narrative_prompt, style_keywords, source
		 FROM intent_profiles WHERE id = ?`, id).
		Scan(&intent.ID, &intent.SessionID, &intent.ArtifactID, &register,
			&audience, &constraints, &narrative, &keywords, &source)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read intent profile: %w", err)
	}

	intent.TargetAudience = audience.String
	intent.NarrativePrompt = narrative.String
	intent.Source = models.IntentSource(source)
	if intent.EmotionalRegister, err = unmarshalFloats(register); err != nil {
		return nil, err
	}
	if intent.Constraints, err = unmarshalStrings(constraints); err != nil {
		return nil, err
	}
	if intent.StyleKeywords, err = unmarshalStrings(keywords); err != nil {
		return nil, err
	}
	return &intent, nil
}

func orEmptyMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return map[string]float64{}
	}
	return m
}

func orEmptyList(l []string) []string {
	if l == nil {
		return []string{}
	}
	return l
}
