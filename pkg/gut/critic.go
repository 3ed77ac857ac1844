package gut

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jesforart/traceos-sub000/pkg/models"
)

const (
	// DefaultDecay is the per-batch decay applied to both indices.
	DefaultDecay = 0.95
	// DefaultMinDwell is the minimum time between mood changes.
	DefaultMinDwell = 2 * time.Second

	eventWindowCap   = 100
	erraticWindowCap = 10

	erraticSlidingWindow = 5 * time.Second
	chaosSustain         = 10 * time.Second
)

// Critic is the per-session valuation engine. IngestBatch is the only method
// that writes GutState; every other caller gets a copy. Consumers such as the
// creativity adjustments read snapshots and can never reach the live state.
type Critic struct {
	mu sync.Mutex

	decay    float64
	minDwell time.Duration
	now      func() time.Time

	window       *ring[models.ResonanceEvent]
	erraticTimes *ring[time.Time]

	state            models.GutState
	lastMoodChange   time.Time
	chaosWindowStart *time.Time
}

// Option configures a Critic.
type Option func(*Critic)

// WithDecay overrides the per-batch decay factor.
func WithDecay(decay float64) Option {
	return func(c *Critic) {
		if decay > 0 && decay <= 1 {
			c.decay = decay
		}
	}
}

// WithMinDwell overrides the mood hysteresis window.
func WithMinDwell(d time.Duration) Option {
	return func(c *Critic) {
		if d >= 0 {
			c.minDwell = d
		}
	}
}

// withClock injects a deterministic clock for tests.
func withClock(now func() time.Time) Option {
	return func(c *Critic) { c.now = now }
}

// NewCritic creates a critic in the initial Calm state.
func NewCritic(opts ...Option) *Critic {
	c := &Critic{
		decay:        DefaultDecay,
		minDwell:     DefaultMinDwell,
		now:          time.Now,
		window:       newRing[models.ResonanceEvent](eventWindowCap),
		erraticTimes: newRing[time.Time](erraticWindowCap),
		state:        models.GutState{Mood: models.MoodCalm},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IngestBatch tastes one batch of resonance events and returns the new state.
// Events are consumed in arrival order.
func (c *Critic) IngestBatch(events []models.ResonanceEvent) models.GutState {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now().UTC()
	batchErratic := false
	var dFrustration, dFlow float64

	for _, ev := range events {
		c.window.push(ev)
		if ev.ErraticInput {
			batchErratic = true
			ts := ev.Timestamp
			if ts.IsZero() {
				ts = now
			}
			c.erraticTimes.push(ts.UTC())
		}

		switch ev.Type {
		case models.ResonanceUndo:
			switch {
			case latencyBelow(ev, 500):
				dFrustration += 0.10
			case latencyBelow(ev, 1000):
				dFrustration += 0.05
			}
		case models.ResonanceGhostReject:
			dFrustration += 0.08
		case models.ResonanceStrokeReject:
			dFrustration += 0.05
		case models.ResonanceStrokeAccept, models.ResonanceGhostAccept:
			if latencyBelow(ev, 200) {
				dFlow += 0.12
			} else {
				dFlow += 0.05
			}
		case models.ResonancePauseDetected:
			dFlow += 0.03
		}
	}

	hasErratic := batchErratic || c.erraticBurst(now)
	frustration := clamp01(c.state.FrustrationIndex*c.decay + dFrustration)
	flow := clamp01(c.state.FlowProbability*c.decay + dFlow)
	mood := c.deriveMood(now, frustration, flow, hasErratic)

	if mood != c.state.Mood {
		slog.Debug("Mood change",
			"from", c.state.Mood,
			"to", mood,
			"frustration", frustration,
			"flow", flow)
		c.lastMoodChange = now
	}
	c.state = models.GutState{
		Mood:             mood,
		FrustrationIndex: frustration,
		FlowProbability:  flow,
		LastUpdated:      now,
	}
	return c.state
}

// erraticBurst reports a full erratic ring inside the sliding window.
func (c *Critic) erraticBurst(now time.Time) bool {
	if c.erraticTimes.len() < erraticWindowCap {
		return false
	}
	cutoff := now.Add(-erraticSlidingWindow)
	inWindow := 0
	c.erraticTimes.each(func(ts time.Time) {
		if !ts.Before(cutoff) {
			inWindow++
		}
	})
	return inWindow >= erraticWindowCap
}

func (c *Critic) deriveMood(now time.Time, frustration, flow float64, hasErratic bool) models.Mood {
	// Chaos needs its precondition sustained; the window resets as soon as
	// either half of the condition drops.
	chaosEligible := false
	if frustration > 0.8 && hasErratic {
		if c.chaosWindowStart == nil {
			start := now
			c.chaosWindowStart = &start
		} else if now.Sub(*c.chaosWindowStart) > chaosSustain {
			chaosEligible = true
		}
	} else {
		c.chaosWindowStart = nil
	}

	dwelling := !c.lastMoodChange.IsZero() && now.Sub(c.lastMoodChange) < c.minDwell
	if dwelling && !chaosEligible {
		return c.state.Mood
	}

	switch {
	case chaosEligible:
		return models.MoodChaos
	case frustration > 0.7:
		return models.MoodFrustration
	case flow > 0.8:
		return models.MoodFlow
	case flow >= 0.5 && flow <= 0.8 && frustration < 0.4:
		return models.MoodExploration
	default:
		return models.MoodCalm
	}
}

// Snapshot returns a copy of the current state.
func (c *Critic) Snapshot() models.GutState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Clear resets the critic to its initial Calm state. Called on session end so
// no emotion leaks across sessions.
func (c *Critic) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.window.reset()
	c.erraticTimes.reset()
	c.state = models.GutState{Mood: models.MoodCalm}
	c.lastMoodChange = time.Time{}
	c.chaosWindowStart = nil
}

// WindowLen reports how many events the bounded window currently holds.
func (c *Critic) WindowLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.window.len()
}

func latencyBelow(ev models.ResonanceEvent, ms float64) bool {
	return ev.LatencyMs != nil && *ev.LatencyMs < ms
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
