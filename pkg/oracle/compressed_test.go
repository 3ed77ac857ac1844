package oracle

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCompressedSession_WellFormed(t *testing.T) {
	raw := `{
		"summary": "User sketched a harbor scene.",
		"key_decisions": ["kept monochrome palette"],
		"active_modifiers": {"brush": "ink"},
		"user_preferences": ["thin lines"],
		"design_intent": "calm winter mood"
	}`
	result, degraded := ParseCompressedSession(raw)
	require.False(t, degraded)
	assert.Equal(t, "User sketched a harbor scene.", result.Summary)
	assert.Equal(t, []string{"kept monochrome palette"}, result.KeyDecisions)
	assert.Equal(t, "calm winter mood", result.DesignIntent)
}

func TestParseCompressedSession_Fenced(t *testing.T) {
	raw := "```json\n{\"summary\": \"fenced\", \"design_intent\": \"x\"}\n```"
	result, degraded := ParseCompressedSession(raw)
	require.False(t, degraded)
	assert.Equal(t, "fenced", result.Summary)
	assert.NotNil(t, result.KeyDecisions)
	assert.NotNil(t, result.ActiveModifiers)
	assert.NotNil(t, result.UserPreferences)
}

func TestParseCompressedSession_NonJSONFallsBack(t *testing.T) {
	result, degraded := ParseCompressedSession("hello world")
	require.True(t, degraded)
	assert.Equal(t, "hello world", result.Summary)
	assert.Empty(t, result.KeyDecisions)
	assert.Empty(t, result.ActiveModifiers)
	assert.Empty(t, result.UserPreferences)
	assert.Empty(t, result.DesignIntent)
}

func TestParseCompressedSession_FallbackTruncates(t *testing.T) {
	raw := strings.Repeat("x", 800)
	result, degraded := ParseCompressedSession(raw)
	require.True(t, degraded)
	assert.Len(t, result.Summary, 500)
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"no fence", `{"a":1}`, `{"a":1}`},
		{"json tag", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"leading whitespace", "  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripFences(tc.in))
		})
	}
}
