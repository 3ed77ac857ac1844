package agent

import (
	"context"
	"errors"
	"fmt"
)

// Task is the unit of work handed to an executor.
type Task struct {
	TaskID     string         `json:"task_id"`
	SessionID  string         `json:"session_id"`
	Capability string         `json:"capability"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Context    map[string]any `json:"context,omitempty"`
}

// Executor is implemented by runtime agents. Execute may block on arbitrary
// I/O; the caller holds no registry locks while it runs.
type Executor interface {
	Execute(ctx context.Context, task Task) (map[string]any, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, task Task) (map[string]any, error)

// Execute implements Executor.
func (f ExecutorFunc) Execute(ctx context.Context, task Task) (map[string]any, error) {
	return f(ctx, task)
}

// NoCapableAgentError reports that no available agent advertises the
// requested capability. No contract is created when this is returned.
type NoCapableAgentError struct {
	Capability string
}

func (e *NoCapableAgentError) Error() string {
	return fmt.Sprintf("no available agent for capability %q", e.Capability)
}

// IsNoCapableAgent reports whether err is a NoCapableAgentError.
func IsNoCapableAgent(err error) bool {
	var target *NoCapableAgentError
	return errors.As(err, &target)
}

// ExecutionError wraps a failure raised by an agent's executor.
type ExecutionError struct {
	AgentID string
	Err     error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("agent %s failed: %v", e.AgentID, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// DuplicateAgentError reports a register call reusing an existing agent id.
type DuplicateAgentError struct {
	AgentID string
}

func (e *DuplicateAgentError) Error() string {
	return fmt.Sprintf("agent %q is already registered", e.AgentID)
}
