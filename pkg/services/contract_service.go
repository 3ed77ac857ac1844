package services

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jesforart/traceos-sub000/pkg/database"
	"github.com/jesforart/traceos-sub000/pkg/models"
)

// ContractService is the durable per-session ordered log of agent exchange
// contracts. Contract ids are ULIDs generated from a monotonic entropy
// source, so lexicographic id order equals creation order even for
// contracts created within the same millisecond.
type ContractService struct {
	client *database.Client

	entropyMu sync.Mutex
	entropy   *ulid.MonotonicEntropy
}

// NewContractService creates a new ContractService.
func NewContractService(client *database.Client) *ContractService {
	return &ContractService{
		client:  client,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

func (s *ContractService) newContractID(t time.Time) string {
	s.entropyMu.Lock()
	defer s.entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

// CreateContract appends a contract to the session's log. ID, CreatedAt and
// a default pending status are filled in when missing.
func (s *ContractService) CreateContract(ctx context.Context, contract *models.Contract) error {
	if contract.SessionID == "" {
		return NewValidationError("session_id", "required")
	}
	if contract.ContractType != models.ContractTypeRequest &&
		contract.ContractType != models.ContractTypeResponse {
		return NewValidationError("contract_type", "must be REQUEST or RESPONSE")
	}
	now := time.Now().UTC()
	if contract.CreatedAt.IsZero() {
		contract.CreatedAt = now
	}
	if contract.ContractID == "" {
		contract.ContractID = s.newContractID(contract.CreatedAt)
	}
	if contract.Status == "" {
		contract.Status = models.ContractStatusPending
	}

	payload, err := marshalJSON(contract.Payload)
	if err != nil {
		return err
	}
	result, err := marshalJSON(contract.Result)
	if err != nil {
		return err
	}
	metadata, err := marshalJSON(contract.Metadata)
	if err != nil {
		return err
	}

	_, err = s.client.DB().ExecContext(ctx,
		`INSERT INTO contracts
			(contract_id, session_id, contract_type, from_agent, to_agent, capability,
			 payload, status, created_at, completed_at, result, error, metadata)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		contract.ContractID, contract.SessionID, string(contract.ContractType),
		contract.FromAgent, contract.ToAgent, nullable(contract.Capability),
		payload, string(contract.Status), contract.CreatedAt,
		contract.CompletedAt, result, nullable(contract.Error), metadata)
	if err != nil {
		return fmt.Errorf("failed to create contract: %w", err)
	}
	return nil
}

// UpdateContract applies the non-nil fields of update. When status becomes
// terminal, completed_at is set automatically.
func (s *ContractService) UpdateContract(ctx context.Context, contractID string, update models.ContractUpdate) (*models.Contract, error) {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)

	if update.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*update.Status))
		if update.Status.Terminal() {
			sets = append(sets, "completed_at = ?")
			args = append(args, time.Now().UTC())
		}
	}
	if update.Result != nil {
		result, err := marshalJSON(update.Result)
		if err != nil {
			return nil, err
		}
		sets = append(sets, "result = ?")
		args = append(args, result)
	}
	if update.Error != nil {
		sets = append(sets, "error = ?")
		args = append(args, *update.Error)
	}
	if len(sets) == 0 {
		return s.GetContract(ctx, contractID)
	}

	args = append(args, contractID)
	res, err := s.client.DB().ExecContext(ctx,
		`UPDATE contracts SET `+strings.Join(sets, ", ")+` WHERE contract_id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update contract: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetContract(ctx, contractID)
}

// GetContract reads a contract by id. Returns ErrNotFound when absent.
func (s *ContractService) GetContract(ctx context.Context, contractID string) (*models.Contract, error) {
	row := s.client.DB().QueryRowContext(ctx, selectContracts+` WHERE contract_id = ?`, contractID)
	contract, err := scanContract(row)
	if err != nil {
		return nil, err
	}
	return contract, nil
}

// ListContracts returns contracts matching the filter, ordered by creation.
func (s *ContractService) ListContracts(ctx context.Context, filter models.ContractFilter) ([]*models.Contract, error) {
	where := make([]string, 0, 5)
	args := make([]any, 0, 6)
	add := func(clause string, v any) {
		where = append(where, clause)
		args = append(args, v)
	}
	if filter.SessionID != "" {
		add("session_id = ?", filter.SessionID)
	}
	if filter.FromAgent != "" {
		add("from_agent = ?", filter.FromAgent)
	}
	if filter.ToAgent != "" {
		add("to_agent = ?", filter.ToAgent)
	}
	if filter.ContractType != "" {
		add("contract_type = ?", string(filter.ContractType))
	}
	if filter.Status != "" {
		add("status = ?", string(filter.Status))
	}

	query := selectContracts
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, contract_id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	defer rows.Close()

	var out []*models.Contract
	for rows.Next() {
		contract, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, contract)
	}
	return out, rows.Err()
}

// GetConversation returns every contract of a session sorted by creation,
// contract_id breaking ties so the order is stable under concurrent inserts.
func (s *ContractService) GetConversation(ctx context.Context, sessionID string) ([]*models.Contract, error) {
	return s.ListContracts(ctx, models.ContractFilter{SessionID: sessionID})
}

// Counts returns the total number of contracts and a breakdown by status.
func (s *ContractService) Counts(ctx context.Context) (int, map[string]int, error) {
	rows, err := s.client.DB().QueryContext(ctx,
		`SELECT status, COUNT(*) FROM contracts GROUP BY status`)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to count contracts: %w", err)
	}
	defer rows.Close()

	total := 0
	byStatus := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return 0, nil, fmt.Errorf("failed to scan contract count: %w", err)
		}
		byStatus[status] = n
		total += n
	}
	return total, byStatus, rows.Err()
}

const selectContracts = `SELECT contract_id, session_id, contract_type, from_agent,
	to_agent, capability, payload, status, created_at, completed_at, result, error, metadata
	FROM contracts`

func scanContract(row rowScanner) (*models.Contract, error) {
	var (
		contract                  models.Contract
		contractType, status      string
		capability, errText       sql.NullString
		completedAt               sql.NullTime
		payload, result, metadata []byte
	)
	err := row.Scan(&contract.ContractID, &contract.SessionID, &contractType,
		&contract.FromAgent, &contract.ToAgent, &capability, &payload,
		&status, &contract.CreatedAt, &completedAt, &result, &errText, &metadata)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan contract: %w", err)
	}

	contract.ContractType = models.ContractType(contractType)
	contract.Status = models.ContractStatus(status)
	contract.Capability = capability.String
	contract.Error = errText.String
	if completedAt.Valid {
		t := completedAt.Time
		contract.CompletedAt = &t
	}
	if contract.Payload, err = unmarshalMap(payload); err != nil {
		return nil, err
	}
	if contract.Result, err = unmarshalMap(result); err != nil {
		return nil, err
	}
	if contract.Metadata, err = unmarshalMap(metadata); err != nil {
		return nil, err
	}
	return &contract, nil
}
