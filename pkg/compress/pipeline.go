package compress

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jesforart/traceos-sub000/pkg/eventlog"
	"github.com/jesforart/traceos-sub000/pkg/models"
	"github.com/jesforart/traceos-sub000/pkg/oracle"
	"github.com/jesforart/traceos-sub000/pkg/services"
)

// EventSource fetches a session's raw events.
type EventSource interface {
	List(ctx context.Context, sessionID string) ([]eventlog.Event, error)
}

// Pipeline compresses a session's event history into one memory block.
type Pipeline struct {
	events EventSource
	oracle oracle.Oracle
	blocks *services.BlockService

	// devFallback substitutes deterministic mock events when the event log
	// is unreachable. Production keeps it off and reports the error.
	devFallback bool
}

// NewPipeline creates a compression pipeline. events may be nil only when
// devFallback is set.
func NewPipeline(events EventSource, llm oracle.Oracle, blocks *services.BlockService, devFallback bool) *Pipeline {
	return &Pipeline{events: events, oracle: llm, blocks: blocks, devFallback: devFallback}
}

// Result reports one compression run.
type Result struct {
	BlockID          string                    `json:"block_id"`
	Compressed       *oracle.CompressedSession `json:"compressed"`
	Degraded         bool                      `json:"degraded"`
	EventsIn         int                       `json:"events_in"`
	EventsKept       int                       `json:"events_kept"`
	CompressionRatio float64                   `json:"compression_ratio"`
}

// Run executes the pipeline for one session.
func (p *Pipeline) Run(ctx context.Context, sessionID string, intent *models.IntentProfile) (*Result, error) {
	if sessionID == "" {
		return nil, services.NewValidationError("session_id", "required")
	}

	events, err := p.fetchEvents(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	survivors := filterByPriority(events)
	prompt := p.buildPrompt(sessionID, survivors, intent)

	reply, err := p.oracle.Complete(ctx, prompt, 0)
	if err != nil {
		return nil, fmt.Errorf("compression oracle call failed: %w", err)
	}

	compressed, degraded := oracle.ParseCompressedSession(reply)
	if degraded {
		slog.Warn("Compression degraded to raw summary", "session_id", sessionID)
	}

	block := &models.CognitiveMemoryBlock{
		SessionID: sessionID,
		Notes:     compressed.Summary,
		Tags:      []string{"compressed_session"},
		Metadata: map[string]any{
			"summary":          compressed.Summary,
			"key_decisions":    compressed.KeyDecisions,
			"active_modifiers": compressed.ActiveModifiers,
			"user_preferences": compressed.UserPreferences,
			"design_intent":    compressed.DesignIntent,
			"degraded":         degraded,
			"events_in":        len(events),
			"events_kept":      len(survivors),
		},
	}
	if intent != nil {
		block.IntentProfileID = intent.ID
	}
	if err := p.blocks.SaveBlock(ctx, block); err != nil {
		return nil, fmt.Errorf("failed to persist compressed block: %w", err)
	}

	ratio := 0.0
	if out := estimateTokens(reply); out > 0 {
		ratio = float64(estimateTokens(prompt)) / float64(out)
	}
	slog.Info("Compressed session",
		"session_id", sessionID,
		"block_id", block.ID,
		"events_in", len(events),
		"events_kept", len(survivors),
		"degraded", degraded,
		"ratio", fmt.Sprintf("%.1f", ratio))

	return &Result{
		BlockID:          block.ID,
		Compressed:       compressed,
		Degraded:         degraded,
		EventsIn:         len(events),
		EventsKept:       len(survivors),
		CompressionRatio: ratio,
	}, nil
}

func (p *Pipeline) fetchEvents(ctx context.Context, sessionID string) ([]eventlog.Event, error) {
	if p.events == nil {
		if p.devFallback {
			return mockEvents(sessionID), nil
		}
		return nil, eventlog.ErrUnavailable
	}
	events, err := p.events.List(ctx, sessionID)
	if err != nil {
		if p.devFallback {
			slog.Warn("Event log unreachable, using mock events",
				"session_id", sessionID, "error", err)
			return mockEvents(sessionID), nil
		}
		return nil, fmt.Errorf("failed to fetch session events: %w", err)
	}
	return events, nil
}

func (p *Pipeline) buildPrompt(sessionID string, events []eventlog.Event, intent *models.IntentProfile) string {
	var b strings.Builder
	b.WriteString("Compress this creative session's event history into a JSON object with ")
	b.WriteString("fields {summary, key_decisions[], active_modifiers{}, user_preferences[], design_intent}. ")
	b.WriteString("Return ONLY the JSON object.\n")
	if intent != nil && intent.NarrativePrompt != "" {
		b.WriteString("\nDeclared intent: ")
		b.WriteString(intent.NarrativePrompt)
		b.WriteString("\n")
	}
	b.WriteString("\nSession ")
	b.WriteString(sessionID)
	b.WriteString(" events:\n")
	b.WriteString(formatEvents(events))
	return b.String()
}

// mockEvents is the deterministic development substitute for a missing
// event log.
func mockEvents(sessionID string) []eventlog.Event {
	base := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	return []eventlog.Event{
		{Type: "session.created", Actor: "user", Timestamp: base,
			Data: map[string]any{"session_id": sessionID}},
		{Type: "variation.accepted", Actor: "user", Timestamp: base.Add(2 * time.Minute),
			Data: map[string]any{"variation_id": "v1"}},
		{Type: "user_note.added", Actor: "user", Timestamp: base.Add(5 * time.Minute),
			Data: map[string]any{"text": "keep the loose linework"}},
		{Type: "task.completed", Actor: "orchestrator", Timestamp: base.Add(7 * time.Minute),
			Data: map[string]any{"capability": "render"}},
	}
}

// estimateTokens is the usual rough 4-chars-per-token heuristic.
func estimateTokens(s string) int {
	return len(s) / 4
}
