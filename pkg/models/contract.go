package models

import "time"

// ContractType distinguishes the two legs of an agent exchange.
type ContractType string

// Contract types.
const (
	ContractTypeRequest  ContractType = "REQUEST"
	ContractTypeResponse ContractType = "RESPONSE"
)

// ContractStatus is the lifecycle state of a contract.
type ContractStatus string

// Contract status values.
const (
	ContractStatusPending    ContractStatus = "pending"
	ContractStatusInProgress ContractStatus = "in_progress"
	ContractStatusCompleted  ContractStatus = "completed"
	ContractStatusFailed     ContractStatus = "failed"
	ContractStatusCancelled  ContractStatus = "cancelled"
)

// Terminal reports whether s is a terminal contract status.
func (s ContractStatus) Terminal() bool {
	switch s {
	case ContractStatusCompleted, ContractStatusFailed, ContractStatusCancelled:
		return true
	}
	return false
}

// Contract is one persisted REQUEST or RESPONSE leg of an agent exchange.
// ContractID is a ULID: lexicographic order equals creation order, which is
// what keeps a session's conversation stable under concurrent inserts.
type Contract struct {
	ContractID   string         `json:"contract_id"`
	SessionID    string         `json:"session_id"`
	ContractType ContractType   `json:"contract_type"`
	FromAgent    string         `json:"from_agent"`
	ToAgent      string         `json:"to_agent"`
	Capability   string         `json:"capability,omitempty"`
	Payload      map[string]any `json:"payload,omitempty"`
	Status       ContractStatus `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	Result       map[string]any `json:"result,omitempty"`
	Error        string         `json:"error,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// ContractFilter selects contracts for listing. Zero-value fields are ignored.
type ContractFilter struct {
	SessionID    string         `json:"session_id,omitempty"`
	FromAgent    string         `json:"from_agent,omitempty"`
	ToAgent      string         `json:"to_agent,omitempty"`
	ContractType ContractType   `json:"contract_type,omitempty"`
	Status       ContractStatus `json:"status,omitempty"`
	Limit        int            `json:"limit,omitempty"`
}

// ContractUpdate carries the mutable fields of a contract. Nil fields are
// left unchanged.
type ContractUpdate struct {
	Status *ContractStatus `json:"status,omitempty"`
	Result map[string]any  `json:"result,omitempty"`
	Error  *string         `json:"error,omitempty"`
}
