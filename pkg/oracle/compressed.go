package oracle

import (
	"encoding/json"
	"strings"
)

const fallbackSummaryLimit = 500

// CompressedSession is the structured digest the oracle produces for one
// session's event history.
type CompressedSession struct {
	Summary         string         `json:"summary"`
	KeyDecisions    []string       `json:"key_decisions"`
	ActiveModifiers map[string]any `json:"active_modifiers"`
	UserPreferences []string       `json:"user_preferences"`
	DesignIntent    string         `json:"design_intent"`
}

// ParseCompressedSession decodes an oracle reply. On any parse failure it
// degrades: the raw reply's first 500 characters become the summary and
// every collection field is empty. The second return reports degradation.
func ParseCompressedSession(raw string) (*CompressedSession, bool) {
	cleaned := StripFences(raw)

	var out CompressedSession
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil || out.Summary == "" {
		summary := strings.TrimSpace(raw)
		if len(summary) > fallbackSummaryLimit {
			summary = summary[:fallbackSummaryLimit]
		}
		return &CompressedSession{
			Summary:         summary,
			KeyDecisions:    []string{},
			ActiveModifiers: map[string]any{},
			UserPreferences: []string{},
			DesignIntent:    "",
		}, true
	}

	if out.KeyDecisions == nil {
		out.KeyDecisions = []string{}
	}
	if out.ActiveModifiers == nil {
		out.ActiveModifiers = map[string]any{}
	}
	if out.UserPreferences == nil {
		out.UserPreferences = []string{}
	}
	return &out, false
}

// StripFences removes a surrounding markdown code fence, with or without a
// language tag, from an oracle reply.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		// Drop the language tag line ("json", "JSON", or empty).
		first := strings.TrimSpace(s[:idx])
		if len(first) <= 8 {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
