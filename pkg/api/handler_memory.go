package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jesforart/traceos-sub000/pkg/gut"
	"github.com/jesforart/traceos-sub000/pkg/models"
	"github.com/jesforart/traceos-sub000/pkg/oracle"
)

// critiqueBaseTemperature is nudged by the session's mood before each
// critique call.
const critiqueBaseTemperature = 0.2

// Ingest handles POST /v1/ingest.
func (s *Server) Ingest(c *gin.Context) {
	var req models.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("validation_error", err.Error()))
		return
	}

	result, err := s.engine.Ingest(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// CompressRequest is the body of POST /v1/compress.
type CompressRequest struct {
	SessionID string                `json:"session_id" binding:"required"`
	Intent    *models.IntentProfile `json:"intent"`
}

// Compress handles POST /v1/compress.
func (s *Server) Compress(c *gin.Context) {
	var req CompressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("validation_error", err.Error()))
		return
	}

	result, err := s.pipeline.Run(c.Request.Context(), req.SessionID, req.Intent)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CritiqueRequest is the body of POST /v1/critique.
type CritiqueRequest struct {
	SessionID  string `json:"session_id" binding:"required"`
	ArtifactID string `json:"artifact_id"`
	SVG        string `json:"svg" binding:"required"`
	Notes      string `json:"notes"`
}

// Critique handles POST /v1/critique.
func (s *Server) Critique(c *gin.Context) {
	var req CritiqueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("validation_error", err.Error()))
		return
	}

	critique, err := s.runCritique(c, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, critique)
}

// CritiqueAndIngest handles POST /v1/critique-and-ingest: one round trip that
// evaluates the artifact and stores it with the critique attached.
func (s *Server) CritiqueAndIngest(c *gin.Context) {
	var req CritiqueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("validation_error", err.Error()))
		return
	}

	critique, err := s.runCritique(c, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := s.engine.Ingest(c.Request.Context(), &models.IngestRequest{
		SessionID:  req.SessionID,
		ArtifactID: req.ArtifactID,
		SVG:        req.SVG,
		Notes:      req.Notes,
		Tags:       critique.StyleTags,
		Metadata: map[string]any{
			"critique":      critique,
			"overall_score": critique.OverallScore,
		},
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"critique": critique, "ingest": result})
}

// runCritique asks the oracle for a structured evaluation, with the
// temperature shaped by the session's current mood.
func (s *Server) runCritique(c *gin.Context, req *CritiqueRequest) (*oracle.Critique, error) {
	temperature := critiqueBaseTemperature
	if critic, ok := s.guts.Peek(req.SessionID); ok {
		snapshot := critic.Snapshot()
		temperature = gut.AdjustCreativity(critiqueBaseTemperature, &snapshot)
	}

	reply, err := s.oracle.Complete(c.Request.Context(),
		oracle.CritiquePrompt(req.SVG, req.Notes), float32(temperature))
	if err != nil {
		return nil, err
	}
	return oracle.ParseCritique(reply)
}

// PurgeSession handles POST /v1/sessions/:id/purge. Closes the session's
// telemetry writer and gut critic, then deletes its rows.
func (s *Server) PurgeSession(c *gin.Context) {
	sessionID := c.Param("id")

	if s.telemetry != nil {
		if err := s.telemetry.CloseSession(sessionID); err != nil {
			respondError(c, err)
			return
		}
	}
	s.guts.Drop(sessionID)

	result, err := s.cleanup.PurgeSession(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
