package compress

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jesforart/traceos-sub000/pkg/eventlog"
)

// formatEvent renders one survivor as a single prompt line. The key fragment
// is chosen by event type so the oracle sees what mattered, not raw JSON.
func formatEvent(ev eventlog.Event) string {
	actor := ev.Actor
	if actor == "" {
		actor = "system"
	}
	ts := ev.Timestamp.UTC().Format("2006-01-02 15:04:05")

	var fragment string
	switch ev.Type {
	case "user_note.added":
		fragment = fmt.Sprintf("%q", str(ev.Data, "text"))
	case "schema.updated":
		fragment = "schema " + str(ev.Data, "schema_id")
	case "asset.created":
		fragment = "asset type " + str(ev.Data, "asset_type")
	case "variation.accepted", "variation.rejected", "variation.applied":
		fragment = "variation " + str(ev.Data, "variation_id")
	case "task.completed":
		fragment = "capability " + str(ev.Data, "capability")
	default:
		fragment = keyValues(ev.Data)
	}

	line := fmt.Sprintf("[%s] %s by %s", ts, ev.Type, actor)
	if fragment != "" {
		line += " → " + fragment
	}
	return line
}

func formatEvents(events []eventlog.Event) string {
	lines := make([]string, len(events))
	for i, ev := range events {
		lines[i] = formatEvent(ev)
	}
	return strings.Join(lines, "\n")
}

func str(data map[string]any, key string) string {
	if data == nil {
		return ""
	}
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

// keyValues renders up to three data entries as key=value pairs.
func keyValues(data map[string]any) string {
	if len(data) == 0 {
		return ""
	}
	pairs := make([]string, 0, 3)
	for _, k := range sortedKeys(data) {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, data[k]))
		if len(pairs) == 3 {
			break
		}
	}
	return strings.Join(pairs, " ")
}

func sortedKeys(data map[string]any) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
