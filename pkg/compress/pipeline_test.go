package compress

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jesforart/traceos-sub000/pkg/database"
	"github.com/jesforart/traceos-sub000/pkg/eventlog"
	"github.com/jesforart/traceos-sub000/pkg/oracle"
	"github.com/jesforart/traceos-sub000/pkg/services"
)

func newBlockService(t *testing.T) *services.BlockService {
	t.Helper()
	client, err := database.NewClient(context.Background(), database.Config{
		Path: filepath.Join(t.TempDir(), "traceos_memory.db"),
	})
	require.NoError(t, err)
	require.NoError(t, client.Migrate(context.Background()))
	t.Cleanup(func() { _ = client.Close() })
	return services.NewBlockService(client)
}

type staticEvents []eventlog.Event

func (s staticEvents) List(context.Context, string) ([]eventlog.Event, error) {
	return s, nil
}

type failingEvents struct{}

func (failingEvents) List(context.Context, string) ([]eventlog.Event, error) {
	return nil, eventlog.ErrUnavailable
}

func staticOracle(reply string) oracle.Oracle {
	return oracle.CompleteFunc(func(_ context.Context, _ string, temp float32) (string, error) {
		if temp != 0 {
			return "", fmt.Errorf("compression must be deterministic, got temperature %f", temp)
		}
		return reply, nil
	})
}

func TestPipeline_WellFormedReply(t *testing.T) {
	blocks := newBlockService(t)
	events := staticEvents{
		{Type: "session.created", Actor: "user", Timestamp: time.Now().UTC()},
		{Type: "cursor.moved", Actor: "user", Timestamp: time.Now().UTC()},
		{Type: "user_note.added", Actor: "user", Timestamp: time.Now().UTC(),
			Data: map[string]any{"text": "more contrast"}},
	}
	reply := `{"summary":"Short sketch session.","key_decisions":["contrast up"],` +
		`"active_modifiers":{"brush":"ink"},"user_preferences":["contrast"],"design_intent":"bold"}`
	p := NewPipeline(events, staticOracle(reply), blocks, false)

	result, err := p.Run(context.Background(), "s1", nil)
	require.NoError(t, err)
	assert.False(t, result.Degraded)
	assert.Equal(t, 3, result.EventsIn)
	assert.Equal(t, 2, result.EventsKept, "LOW events are discarded")
	assert.Equal(t, "Short sketch session.", result.Compressed.Summary)

	block, err := blocks.GetBlock(context.Background(), result.BlockID)
	require.NoError(t, err)
	assert.Equal(t, "Short sketch session.", block.Notes)
	assert.Equal(t, "bold", block.Metadata["design_intent"])
	assert.Contains(t, block.Tags, "compressed_session")
}

func TestPipeline_NonJSONReplyDegrades(t *testing.T) {
	blocks := newBlockService(t)
	p := NewPipeline(staticEvents{}, staticOracle("hello world"), blocks, false)

	result, err := p.Run(context.Background(), "s1", nil)
	require.NoError(t, err)
	assert.True(t, result.Degraded)
	assert.Equal(t, "hello world", result.Compressed.Summary)
	assert.Empty(t, result.Compressed.KeyDecisions)
	assert.Empty(t, result.Compressed.ActiveModifiers)

	// Persistence still succeeds for a degraded result.
	block, err := blocks.GetBlock(context.Background(), result.BlockID)
	require.NoError(t, err)
	assert.Equal(t, "hello world", block.Notes)
	assert.Equal(t, true, block.Metadata["degraded"])
}

func TestPipeline_EventLogDownInProduction(t *testing.T) {
	p := NewPipeline(failingEvents{}, staticOracle("{}"), newBlockService(t), false)

	_, err := p.Run(context.Background(), "s1", nil)
	assert.ErrorIs(t, err, eventlog.ErrUnavailable)
}

func TestPipeline_EventLogDownInDev(t *testing.T) {
	reply := `{"summary":"mock run","key_decisions":[],"active_modifiers":{},` +
		`"user_preferences":[],"design_intent":""}`
	p := NewPipeline(failingEvents{}, staticOracle(reply), newBlockService(t), true)

	result, err := p.Run(context.Background(), "s1", nil)
	require.NoError(t, err)
	assert.Equal(t, len(mockEvents("s1")), result.EventsIn)
}

func TestPipeline_OracleFailureSurfaces(t *testing.T) {
	failing := oracle.CompleteFunc(func(context.Context, string, float32) (string, error) {
		return "", oracle.ErrTimeout
	})
	p := NewPipeline(staticEvents{}, failing, newBlockService(t), false)

	_, err := p.Run(context.Background(), "s1", nil)
	assert.ErrorIs(t, err, oracle.ErrTimeout)
}

func TestPipeline_RequiresSession(t *testing.T) {
	p := NewPipeline(staticEvents{}, staticOracle("{}"), newBlockService(t), false)
	_, err := p.Run(context.Background(), "", nil)
	var ve *services.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestFilterByPriority_Cap(t *testing.T) {
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	var events []eventlog.Event
	for i := 0; i < 300; i++ {
		events = append(events, eventlog.Event{
			Type: "variation.accepted", Timestamp: base.Add(time.Duration(i) * time.Second),
		})
	}
	for i := 0; i < 400; i++ {
		events = append(events, eventlog.Event{
			Type: "task.completed", Timestamp: base.Add(time.Duration(1000+i) * time.Second),
		})
	}
	for i := 0; i < 100; i++ {
		events = append(events, eventlog.Event{
			Type: "cursor.moved", Timestamp: base.Add(time.Duration(5000+i) * time.Second),
		})
	}

	survivors := filterByPriority(events)
	require.Len(t, survivors, maxSurvivors)

	high, medium := 0, 0
	for i, ev := range survivors {
		if highPriority[ev.Type] {
			high++
		} else {
			medium++
		}
		if i > 0 {
			assert.False(t, ev.Timestamp.Before(survivors[i-1].Timestamp),
				"survivors are re-sorted by timestamp")
		}
	}
	assert.Equal(t, 300, high, "all HIGH events survive")
	assert.Equal(t, 200, medium, "only the most recent MEDIUM events fill the budget")
	assert.Equal(t, base.Add(1200*time.Second), survivors[300].Timestamp,
		"the oldest 200 MEDIUM events were dropped")
}

func TestFilterByPriority_HighOverflowDropsAllMedium(t *testing.T) {
	base := time.Now().UTC()
	var events []eventlog.Event
	for i := 0; i < 600; i++ {
		events = append(events, eventlog.Event{Type: "user_note.added", Timestamp: base})
	}
	events = append(events, eventlog.Event{Type: "task.completed", Timestamp: base})

	survivors := filterByPriority(events)
	assert.Len(t, survivors, 600)
	for _, ev := range survivors {
		assert.Equal(t, "user_note.added", ev.Type)
	}
}

func TestFormatEvent(t *testing.T) {
	ts := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)

	line := formatEvent(eventlog.Event{
		Type: "user_note.added", Actor: "user", Timestamp: ts,
		Data: map[string]any{"text": "looser lines"},
	})
	assert.Equal(t, `[2026-01-15 10:30:00] user_note.added by user → "looser lines"`, line)

	line = formatEvent(eventlog.Event{Type: "schema.updated", Timestamp: ts,
		Data: map[string]any{"schema_id": "sch-9"}})
	assert.Contains(t, line, "by system")
	assert.Contains(t, line, "schema sch-9")
}

func TestPipeline_ErrorPersistsNothing(t *testing.T) {
	blocks := newBlockService(t)
	failing := oracle.CompleteFunc(func(context.Context, string, float32) (string, error) {
		return "", errors.New("boom")
	})
	p := NewPipeline(staticEvents{}, failing, blocks, false)

	_, err := p.Run(context.Background(), "s1", nil)
	require.Error(t, err)

	stored, err := blocks.ListBlocksBySession(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, stored)
}
