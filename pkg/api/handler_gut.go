package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GutState handles GET /v1/gut/state?session=. Read-only snapshot; a session
// without a critic reads as the initial Calm state.
func (s *Server) GutState(c *gin.Context) {
	sessionID := c.Query("session")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, errorBody("validation_error", "session query parameter is required"))
		return
	}

	critic, ok := s.guts.Peek(sessionID)
	if !ok {
		critic = s.guts.Get(sessionID)
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"state":      critic.Snapshot(),
	})
}

// GutClear handles POST /v1/gut/clear?session=. Drops the session's critic;
// the next event batch starts from Calm.
func (s *Server) GutClear(c *gin.Context) {
	sessionID := c.Query("session")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, errorBody("validation_error", "session query parameter is required"))
		return
	}

	dropped := s.guts.Drop(sessionID)
	c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "cleared": dropped})
}
