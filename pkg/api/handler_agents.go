package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jesforart/traceos-sub000/pkg/agent"
	"github.com/jesforart/traceos-sub000/pkg/models"
)

// ListAgents handles GET /v1/agents.
func (s *Server) ListAgents(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"agents": s.registry.List()})
}

// RegisterAgentRequest registers an out-of-process agent reachable at an
// HTTP endpoint.
type RegisterAgentRequest struct {
	AgentID      string              `json:"agent_id" binding:"required"`
	Name         string              `json:"name"`
	Description  string              `json:"description"`
	Capabilities []models.Capability `json:"capabilities" binding:"required"`
	Endpoint     string              `json:"endpoint" binding:"required"`
	TimeoutSec   int                 `json:"timeout_sec"`
}

// RegisterAgent handles POST /v1/agents/register.
func (s *Server) RegisterAgent(c *gin.Context) {
	var req RegisterAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("validation_error", err.Error()))
		return
	}

	descriptor := &models.Agent{
		AgentID:      req.AgentID,
		Name:         req.Name,
		Description:  req.Description,
		Capabilities: req.Capabilities,
		Endpoint:     req.Endpoint,
	}
	executor := agent.NewRemoteExecutor(req.Endpoint, time.Duration(req.TimeoutSec)*time.Second)
	if err := s.registry.Register(descriptor, executor); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"agent_id": req.AgentID})
}
