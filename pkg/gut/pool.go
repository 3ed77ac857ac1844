package gut

import (
	"sync"
	"time"
)

// Pool hands out one Critic per session. Entries live until Drop or Reset;
// a socket disconnect alone never clears a critic, sessions may reconnect.
type Pool struct {
	mu       sync.Mutex
	critics  map[string]*Critic
	decay    float64
	minDwell time.Duration
}

// NewPool creates a pool whose critics use the given parameters.
func NewPool(decay float64, minDwell time.Duration) *Pool {
	if decay <= 0 || decay > 1 {
		decay = DefaultDecay
	}
	if minDwell < 0 {
		minDwell = DefaultMinDwell
	}
	return &Pool{
		critics:  make(map[string]*Critic),
		decay:    decay,
		minDwell: minDwell,
	}
}

// Get returns the session's critic, creating it on first use.
func (p *Pool) Get(sessionID string) *Critic {
	p.mu.Lock()
	defer p.mu.Unlock()
	critic, ok := p.critics[sessionID]
	if !ok {
		critic = NewCritic(WithDecay(p.decay), WithMinDwell(p.minDwell))
		p.critics[sessionID] = critic
	}
	return critic
}

// Peek returns the session's critic without creating one.
func (p *Pool) Peek(sessionID string) (*Critic, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	critic, ok := p.critics[sessionID]
	return critic, ok
}

// Drop removes the session's critic entirely. Returns false when none exists.
func (p *Pool) Drop(sessionID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.critics[sessionID]; !ok {
		return false
	}
	delete(p.critics, sessionID)
	return true
}

// Sessions returns the ids with a live critic.
func (p *Pool) Sessions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.critics))
	for id := range p.critics {
		out = append(out, id)
	}
	return out
}
