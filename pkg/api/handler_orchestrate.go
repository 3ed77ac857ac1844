package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jesforart/traceos-sub000/pkg/models"
)

// OrchestrateRequest is the body of POST /v1/orchestrate.
type OrchestrateRequest struct {
	SessionID  string         `json:"session_id" binding:"required"`
	Capability string         `json:"capability" binding:"required"`
	Parameters map[string]any `json:"parameters"`
	Context    map[string]any `json:"context"`
	FromAgent  string         `json:"from_agent"`
}

// Orchestrate handles POST /v1/orchestrate.
func (s *Server) Orchestrate(c *gin.Context) {
	var req OrchestrateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("validation_error", err.Error()))
		return
	}

	result, err := s.dispatcher.Dispatch(c.Request.Context(), &models.TaskRequest{
		SessionID:  req.SessionID,
		Capability: req.Capability,
		Parameters: req.Parameters,
		Context:    req.Context,
		FromAgent:  req.FromAgent,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"data":        result.Data,
		"contract_id": result.ContractID,
		"agent_id":    result.AgentID,
	})
}

// ListContracts handles GET /v1/contracts with optional filters.
func (s *Server) ListContracts(c *gin.Context) {
	filter := models.ContractFilter{
		SessionID:    c.Query("session_id"),
		FromAgent:    c.Query("from_agent"),
		ToAgent:      c.Query("to_agent"),
		ContractType: models.ContractType(c.Query("type")),
		Status:       models.ContractStatus(c.Query("status")),
	}

	contracts, err := s.contracts.ListContracts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contracts": contracts, "count": len(contracts)})
}
