package services

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jesforart/traceos-sub000/pkg/models"
)

func TestContractService_CreateAndGet(t *testing.T) {
	svc := NewContractService(newTestDB(t))
	ctx := context.Background()

	contract := &models.Contract{
		SessionID:    "s1",
		ContractType: models.ContractTypeRequest,
		FromAgent:    "orchestrator",
		ToAgent:      "painter",
		Capability:   "render",
		Payload:      map[string]any{"width": float64(800)},
	}
	require.NoError(t, svc.CreateContract(ctx, contract))
	require.NotEmpty(t, contract.ContractID)
	assert.Equal(t, models.ContractStatusPending, contract.Status)

	got, err := svc.GetContract(ctx, contract.ContractID)
	require.NoError(t, err)
	assert.Equal(t, "painter", got.ToAgent)
	assert.Equal(t, contract.Payload, got.Payload)
	assert.Nil(t, got.CompletedAt)
}

func TestContractService_UpdateTerminalSetsCompletedAt(t *testing.T) {
	svc := NewContractService(newTestDB(t))
	ctx := context.Background()

	contract := &models.Contract{
		SessionID:    "s1",
		ContractType: models.ContractTypeRequest,
		FromAgent:    "orchestrator",
		ToAgent:      "painter",
	}
	require.NoError(t, svc.CreateContract(ctx, contract))

	inProgress := models.ContractStatusInProgress
	got, err := svc.UpdateContract(ctx, contract.ContractID, models.ContractUpdate{Status: &inProgress})
	require.NoError(t, err)
	assert.Nil(t, got.CompletedAt, "non-terminal status must not set completed_at")

	completed := models.ContractStatusCompleted
	got, err = svc.UpdateContract(ctx, contract.ContractID, models.ContractUpdate{
		Status: &completed,
		Result: map[string]any{"ok": true},
	})
	require.NoError(t, err)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, map[string]any{"ok": true}, got.Result)
}

func TestContractService_UpdateMissing(t *testing.T) {
	svc := NewContractService(newTestDB(t))
	status := models.ContractStatusFailed
	_, err := svc.UpdateContract(context.Background(), "nope", models.ContractUpdate{Status: &status})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestContractService_ConversationOrdering(t *testing.T) {
	svc := NewContractService(newTestDB(t))
	ctx := context.Background()

	// Create many contracts back-to-back; ULID ids must keep them in
	// creation order even when created within the same millisecond.
	var ids []string
	for i := 0; i < 50; i++ {
		contractType := models.ContractTypeRequest
		if i%2 == 1 {
			contractType = models.ContractTypeResponse
		}
		c := &models.Contract{
			SessionID:    "s1",
			ContractType: contractType,
			FromAgent:    "orchestrator",
			ToAgent:      "echo",
		}
		require.NoError(t, svc.CreateContract(ctx, c))
		ids = append(ids, c.ContractID)
	}

	conversation, err := svc.GetConversation(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, conversation, 50)

	gotIDs := make([]string, len(conversation))
	for i, c := range conversation {
		gotIDs[i] = c.ContractID
		if i > 0 {
			assert.False(t, c.CreatedAt.Before(conversation[i-1].CreatedAt),
				"created_at must be nondecreasing")
		}
	}
	assert.Equal(t, ids, gotIDs, "conversation order equals creation order")
	assert.True(t, sort.StringsAreSorted(gotIDs), "ULIDs sort lexicographically by creation")
}

func TestContractService_Filters(t *testing.T) {
	svc := NewContractService(newTestDB(t))
	ctx := context.Background()

	seed := []models.Contract{
		{SessionID: "s1", ContractType: models.ContractTypeRequest, FromAgent: "orchestrator", ToAgent: "a"},
		{SessionID: "s1", ContractType: models.ContractTypeResponse, FromAgent: "a", ToAgent: "orchestrator"},
		{SessionID: "s2", ContractType: models.ContractTypeRequest, FromAgent: "orchestrator", ToAgent: "b"},
	}
	for i := range seed {
		require.NoError(t, svc.CreateContract(ctx, &seed[i]))
	}

	got, err := svc.ListContracts(ctx, models.ContractFilter{SessionID: "s1"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = svc.ListContracts(ctx, models.ContractFilter{FromAgent: "a"})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = svc.ListContracts(ctx, models.ContractFilter{ContractType: models.ContractTypeRequest})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	total, byStatus, err := svc.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, 3, byStatus[string(models.ContractStatusPending)])
}
