package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jesforart/traceos-sub000/pkg/version"
)

// Health handles GET /v1/health.
func (s *Server) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	dbHealth, err := s.db.Health(ctx)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": dbHealth,
			"error":    err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"version":  version.Full(),
		"database": dbHealth,
	})
}

// Status handles GET /v1/status: agents, contract counts, integration health.
func (s *Server) Status(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	total, byStatus, err := s.contracts.Counts(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	eventLog := "not_configured"
	if s.events != nil {
		if err := s.events.Probe(ctx); err != nil {
			eventLog = "unreachable"
		} else {
			eventLog = "healthy"
		}
	}

	status := gin.H{
		"agents": s.registry.List(),
		"contracts": gin.H{
			"total":     total,
			"by_status": byStatus,
		},
		"gut_sessions": s.guts.Sessions(),
		"event_log":    eventLog,
	}
	if s.telemetry != nil {
		status["telemetry_sessions"] = s.telemetry.OpenSessions()
	}
	c.JSON(http.StatusOK, status)
}
