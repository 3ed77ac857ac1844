package agent

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jesforart/traceos-sub000/pkg/models"
)

type registered struct {
	agent    *models.Agent
	executor Executor
}

// Registry is the process-local map of live agents. All status transitions go
// through the registry mutex so that at most one task owns a busy agent.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]*registered
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{agents: make(map[string]*registered)}
}

// Register adds an agent with its executor. Duplicate ids are rejected.
func (r *Registry) Register(agent *models.Agent, executor Executor) error {
	if agent == nil || agent.AgentID == "" {
		return fmt.Errorf("agent id is required")
	}
	if executor == nil {
		return fmt.Errorf("agent %q has no executor", agent.AgentID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.agents[agent.AgentID]; exists {
		return &DuplicateAgentError{AgentID: agent.AgentID}
	}

	copied := *agent
	if copied.Status == "" {
		copied.Status = models.AgentStatusAvailable
	}
	copied.LastHeartbeat = time.Now().UTC()
	r.agents[agent.AgentID] = &registered{agent: &copied, executor: executor}

	slog.Info("Registered agent",
		"agent_id", copied.AgentID,
		"name", copied.Name,
		"capabilities", len(copied.Capabilities))
	return nil
}

// Deregister removes an agent. Removing an unknown id is a no-op.
func (r *Registry) Deregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.agents[id]; exists {
		delete(r.agents, id)
		slog.Info("Deregistered agent", "agent_id", id)
	}
}

// Get returns a copy of the agent descriptor.
func (r *Registry) Get(id string) (*models.Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.agents[id]
	if !ok {
		return nil, false
	}
	copied := *reg.agent
	return &copied, true
}

// List returns copies of every registered agent descriptor.
func (r *Registry) List() []*models.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.Agent, 0, len(r.agents))
	for _, reg := range r.agents {
		copied := *reg.agent
		out = append(out, &copied)
	}
	return out
}

// FindByCapability returns the id of any available agent advertising the
// capability. No load balancing, no queueing.
func (r *Registry) FindByCapability(capability string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, reg := range r.agents {
		if reg.agent.Status == models.AgentStatusAvailable && reg.agent.HasCapability(capability) {
			return id, true
		}
	}
	return "", false
}

// AcquireByCapability finds an available agent for the capability and marks
// it busy in the same critical section, so two concurrent dispatches can
// never both claim the same agent.
func (r *Registry) AcquireByCapability(capability string) (string, Executor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, reg := range r.agents {
		if reg.agent.Status == models.AgentStatusAvailable && reg.agent.HasCapability(capability) {
			reg.agent.Status = models.AgentStatusBusy
			return id, reg.executor, nil
		}
	}
	return "", nil, &NoCapableAgentError{Capability: capability}
}

// ReleaseSuccess returns a busy agent to available and bumps tasks_completed.
func (r *Registry) ReleaseSuccess(id string) {
	r.release(id, models.AgentStatusAvailable, 1, 0)
}

// ReleaseFailure marks the agent errored and bumps tasks_failed.
func (r *Registry) ReleaseFailure(id string) {
	r.release(id, models.AgentStatusError, 0, 1)
}

// ReleaseAbort returns the agent to available without touching counters.
// Used when the dispatch fails before the executor ever runs.
func (r *Registry) ReleaseAbort(id string) {
	r.release(id, models.AgentStatusAvailable, 0, 0)
}

func (r *Registry) release(id string, status models.AgentStatus, completed, failed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.agents[id]
	if !ok {
		return
	}
	reg.agent.Status = status
	reg.agent.TasksCompleted += completed
	reg.agent.TasksFailed += failed
	reg.agent.LastHeartbeat = time.Now().UTC()
}

// Heartbeat refreshes the agent's liveness timestamp. An errored agent is
// brought back to available.
func (r *Registry) Heartbeat(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.agents[id]
	if !ok {
		return false
	}
	reg.agent.LastHeartbeat = time.Now().UTC()
	if reg.agent.Status == models.AgentStatusError {
		reg.agent.Status = models.AgentStatusAvailable
	}
	return true
}

// Count returns the number of registered agents.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}
