package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jesforart/traceos-sub000/pkg/models"
	"github.com/jesforart/traceos-sub000/pkg/services"
)

// OrchestratorID is the well-known from_agent identifier used when the caller
// does not name one.
const OrchestratorID = "orchestrator"

// EventEmitter appends one event to the external event log. Emission is best
// effort; the dispatcher logs failures and keeps going.
type EventEmitter interface {
	Append(ctx context.Context, sessionID string, event map[string]any) error
}

// Dispatcher routes capability-typed tasks to registered agents and records
// each exchange as a REQUEST/RESPONSE contract pair.
type Dispatcher struct {
	registry  *Registry
	contracts *services.ContractService
	events    EventEmitter
}

// NewDispatcher creates a dispatcher. events may be nil when no event log is
// configured.
func NewDispatcher(registry *Registry, contracts *services.ContractService, events EventEmitter) *Dispatcher {
	return &Dispatcher{registry: registry, contracts: contracts, events: events}
}

// Dispatch runs one task end to end. The agent is reserved before any
// contract exists and released on every exit path.
func (d *Dispatcher) Dispatch(ctx context.Context, req *models.TaskRequest) (*models.TaskResult, error) {
	if req.SessionID == "" {
		return nil, services.NewValidationError("session_id", "required")
	}
	if req.Capability == "" {
		return nil, services.NewValidationError("capability", "required")
	}
	fromAgent := req.FromAgent
	if fromAgent == "" {
		fromAgent = OrchestratorID
	}

	agentID, executor, err := d.registry.AcquireByCapability(req.Capability)
	if err != nil {
		return nil, err
	}

	request := &models.Contract{
		SessionID:    req.SessionID,
		ContractType: models.ContractTypeRequest,
		FromAgent:    fromAgent,
		ToAgent:      agentID,
		Capability:   req.Capability,
		Payload:      req.Parameters,
	}
	if err := d.contracts.CreateContract(ctx, request); err != nil {
		d.registry.ReleaseAbort(agentID)
		return nil, fmt.Errorf("failed to create request contract: %w", err)
	}
	d.emit(ctx, req.SessionID, "task.requested", request)

	inProgress := models.ContractStatusInProgress
	if _, err := d.contracts.UpdateContract(ctx, request.ContractID, models.ContractUpdate{Status: &inProgress}); err != nil {
		d.registry.ReleaseAbort(agentID)
		return nil, fmt.Errorf("failed to start request contract: %w", err)
	}

	slog.Info("Dispatching task",
		"session_id", req.SessionID,
		"capability", req.Capability,
		"agent_id", agentID,
		"contract_id", request.ContractID)

	started := time.Now()
	data, execErr := executor.Execute(ctx, Task{
		TaskID:     request.ContractID,
		SessionID:  req.SessionID,
		Capability: req.Capability,
		Parameters: req.Parameters,
		Context:    req.Context,
	})
	if execErr != nil {
		return nil, d.failDispatch(ctx, request, agentID, execErr)
	}

	completed := models.ContractStatusCompleted
	if _, err := d.contracts.UpdateContract(ctx, request.ContractID, models.ContractUpdate{
		Status: &completed,
		Result: data,
	}); err != nil {
		d.registry.ReleaseFailure(agentID)
		return nil, fmt.Errorf("failed to complete request contract: %w", err)
	}

	response := &models.Contract{
		SessionID:    req.SessionID,
		ContractType: models.ContractTypeResponse,
		FromAgent:    agentID,
		ToAgent:      fromAgent,
		Capability:   req.Capability,
		Payload:      data,
		Status:       models.ContractStatusCompleted,
	}
	if err := d.contracts.CreateContract(ctx, response); err != nil {
		slog.Warn("Failed to record response contract",
			"session_id", req.SessionID,
			"contract_id", request.ContractID,
			"error", err)
	} else {
		d.emit(ctx, req.SessionID, "task.completed", response)
	}

	d.registry.ReleaseSuccess(agentID)
	slog.Info("Task completed",
		"session_id", req.SessionID,
		"agent_id", agentID,
		"contract_id", request.ContractID,
		"duration_ms", time.Since(started).Milliseconds())

	return &models.TaskResult{
		Data:       data,
		ContractID: request.ContractID,
		AgentID:    agentID,
	}, nil
}

func (d *Dispatcher) failDispatch(ctx context.Context, request *models.Contract, agentID string, execErr error) error {
	failed := models.ContractStatusFailed
	msg := execErr.Error()
	if _, err := d.contracts.UpdateContract(ctx, request.ContractID, models.ContractUpdate{
		Status: &failed,
		Error:  &msg,
	}); err != nil {
		slog.Warn("Failed to mark request contract failed",
			"contract_id", request.ContractID, "error", err)
	}
	d.registry.ReleaseFailure(agentID)
	slog.Warn("Task failed",
		"session_id", request.SessionID,
		"agent_id", agentID,
		"contract_id", request.ContractID,
		"error", execErr)
	return &ExecutionError{AgentID: agentID, Err: execErr}
}

func (d *Dispatcher) emit(ctx context.Context, sessionID, eventType string, contract *models.Contract) {
	if d.events == nil {
		return
	}
	err := d.events.Append(ctx, sessionID, map[string]any{
		"type":          eventType,
		"contract_id":   contract.ContractID,
		"contract_type": string(contract.ContractType),
		"from_agent":    contract.FromAgent,
		"to_agent":      contract.ToAgent,
		"capability":    contract.Capability,
	})
	if err != nil {
		slog.Warn("Event log emission failed",
			"session_id", sessionID,
			"event_type", eventType,
			"error", err)
	}
}
