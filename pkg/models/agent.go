package models

import "time"

// AgentStatus is the live availability state of a registered agent.
type AgentStatus string

// Agent status values.
const (
	AgentStatusAvailable AgentStatus = "available"
	AgentStatusBusy      AgentStatus = "busy"
	AgentStatusOffline   AgentStatus = "offline"
	AgentStatusError     AgentStatus = "error"
)

// Capability is a named operation an agent advertises and the dispatcher
// routes against.
type Capability struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// Agent is the descriptor of a runtime worker. At any instant at most one
// task owns Status == busy for a given AgentID; the registry serializes the
// transition.
type Agent struct {
	AgentID        string       `json:"agent_id"`
	Name           string       `json:"name"`
	Description    string       `json:"description,omitempty"`
	Capabilities   []Capability `json:"capabilities"`
	Status         AgentStatus  `json:"status"`
	TasksCompleted int          `json:"tasks_completed"`
	TasksFailed    int          `json:"tasks_failed"`
	LastHeartbeat  time.Time    `json:"last_heartbeat"`
	Endpoint       string       `json:"endpoint,omitempty"`
}

// HasCapability reports whether the agent advertises the named capability.
func (a *Agent) HasCapability(name string) bool {
	for _, c := range a.Capabilities {
		if c.Name == name {
			return true
		}
	}
	return false
}
