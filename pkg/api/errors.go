package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jesforart/traceos-sub000/pkg/agent"
	"github.com/jesforart/traceos-sub000/pkg/eventlog"
	"github.com/jesforart/traceos-sub000/pkg/oracle"
	"github.com/jesforart/traceos-sub000/pkg/services"
	"github.com/jesforart/traceos-sub000/pkg/vector"
)

// errorBody is the single error envelope every failure returns.
func errorBody(code, message string) gin.H {
	return gin.H{"error": gin.H{"code": code, "message": message}}
}

// respondError maps core errors to the HTTP taxonomy.
func respondError(c *gin.Context, err error) {
	var (
		validErr    *services.ValidationError
		uniqueErr   *services.UniquenessViolationError
		checksumErr *services.ChecksumMismatchError
		dimErr      *vector.DimensionError
		noAgentErr  *agent.NoCapableAgentError
		dupAgentErr *agent.DuplicateAgentError
		execErr     *agent.ExecutionError
	)
	switch {
	case errors.As(err, &validErr):
		c.JSON(http.StatusBadRequest, errorBody("validation_error", validErr.Error()))
	case errors.As(err, &noAgentErr):
		c.JSON(http.StatusServiceUnavailable, errorBody("no_capable_agent", noAgentErr.Error()))
	case errors.As(err, &dupAgentErr):
		c.JSON(http.StatusConflict, errorBody("duplicate_agent", dupAgentErr.Error()))
	case errors.As(err, &execErr):
		c.JSON(http.StatusBadGateway, errorBody("agent_execution_failed", execErr.Error()))
	case errors.As(err, &uniqueErr):
		c.JSON(http.StatusConflict, errorBody("uniqueness_violation", uniqueErr.Error()))
	case errors.As(err, &checksumErr):
		c.JSON(http.StatusInternalServerError, errorBody("checksum_mismatch", checksumErr.Error()))
	case errors.As(err, &dimErr):
		c.JSON(http.StatusInternalServerError, errorBody("vector_dimension_error", dimErr.Error()))
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, errorBody("not_found", "resource not found"))
	case errors.Is(err, oracle.ErrTimeout):
		c.JSON(http.StatusGatewayTimeout, errorBody("oracle_timeout", err.Error()))
	case errors.Is(err, oracle.ErrUnavailable):
		c.JSON(http.StatusBadGateway, errorBody("oracle_unavailable", err.Error()))
	case errors.Is(err, eventlog.ErrUnavailable):
		c.JSON(http.StatusBadGateway, errorBody("event_log_unavailable", err.Error()))
	default:
		slog.Error("Unexpected error", "error", err)
		c.JSON(http.StatusInternalServerError, errorBody("internal_error", "internal server error"))
	}
}
