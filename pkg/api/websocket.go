package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"

	"github.com/jesforart/traceos-sub000/pkg/models"
)

const wsWriteTimeout = 10 * time.Second

// resonanceFrame is the only recognized inbound frame.
type resonanceFrame struct {
	Type   string            `json:"type"`
	Events []json.RawMessage `json:"events"`
}

// GutStream handles WS /v1/gut/ws?session=. Each inbound resonance_batch is
// fed to the session's critic and answered with a gut_state frame. A
// malformed frame yields an error frame, never a disconnect, and a
// disconnect never clears the critic.
func (s *Server) GutStream(c *gin.Context) {
	sessionID := c.Query("session")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, errorBody("validation_error", "session query parameter is required"))
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		slog.Warn("WebSocket upgrade failed", "session_id", sessionID, "error", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	critic := s.guts.Get(sessionID)
	ctx := c.Request.Context()
	slog.Info("Gut stream connected", "session_id", sessionID)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			slog.Info("Gut stream closed", "session_id", sessionID)
			return
		}

		var frame resonanceFrame
		if err := json.Unmarshal(data, &frame); err != nil || frame.Type != "resonance_batch" {
			s.sendFrame(ctx, conn, map[string]any{
				"type":    "error",
				"message": "expected a resonance_batch frame",
			})
			continue
		}

		// Tolerant decode: malformed elements are skipped, not fatal.
		events := make([]models.ResonanceEvent, 0, len(frame.Events))
		for _, raw := range frame.Events {
			var ev models.ResonanceEvent
			if err := json.Unmarshal(raw, &ev); err != nil || ev.Type == "" {
				slog.Warn("Skipping malformed resonance event",
					"session_id", sessionID, "error", err)
				continue
			}
			events = append(events, ev)
		}

		state := critic.IngestBatch(events)
		s.sendFrame(ctx, conn, map[string]any{
			"type":  "gut_state",
			"state": state,
		})
	}
}

func (s *Server) sendFrame(ctx context.Context, conn *websocket.Conn, frame map[string]any) {
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}
	writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	if err := conn.Write(writeCtx, websocket.MessageText, data); err != nil {
		slog.Warn("Failed to write gut frame", "error", err)
	}
}
