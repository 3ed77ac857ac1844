// Package compress turns a session's raw event history into one compact
// memory block via the LLM oracle.
package compress

import (
	"sort"

	"github.com/jesforart/traceos-sub000/pkg/eventlog"
)

// maxSurvivors caps how many events reach the oracle prompt.
const maxSurvivors = 500

var highPriority = map[string]bool{
	"session.created":    true,
	"session.updated":    true,
	"provenance.stored":  true,
	"schema.updated":     true,
	"variation.accepted": true,
	"variation.rejected": true,
	"user_note.added":    true,
}

var mediumPriority = map[string]bool{
	"variation.applied": true,
	"task.completed":    true,
	"asset.created":     true,
}

// filterByPriority keeps HIGH events unconditionally and fills the remaining
// budget with the most recent MEDIUM events. Everything else is discarded.
// Survivors come back sorted by timestamp.
func filterByPriority(events []eventlog.Event) []eventlog.Event {
	var high, medium []eventlog.Event
	for _, ev := range events {
		switch {
		case highPriority[ev.Type]:
			high = append(high, ev)
		case mediumPriority[ev.Type]:
			medium = append(medium, ev)
		}
	}

	if len(high)+len(medium) > maxSurvivors {
		budget := maxSurvivors - len(high)
		if budget < 0 {
			budget = 0
		}
		if len(medium) > budget {
			sort.SliceStable(medium, func(i, j int) bool {
				return medium[i].Timestamp.Before(medium[j].Timestamp)
			})
			medium = medium[len(medium)-budget:]
		}
	}

	survivors := append(append([]eventlog.Event{}, high...), medium...)
	sort.SliceStable(survivors, func(i, j int) bool {
		return survivors[i].Timestamp.Before(survivors[j].Timestamp)
	})
	return survivors
}
