package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/ukm-labs/advisor/internal/pipeline"
)

// HandleWebSocket handles GET /api/session/{sessionID}/ws: the same event
// feed as the SSE stream, one JSON text message per event. The connection
// closes normally after the done event.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	sess := h.sessions.Get(sessionID)
	if sess == nil {
		Error(w, http.StatusNotFound, "session not found")
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // CORS middleware gates origins upstream
	})
	if err != nil {
		slog.Warn("WebSocket accept failed", "session_id", sessionID, "error", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream aborted")

	ctx := r.Context()
	slog.Info("WebSocket stream connected", "session_id", sessionID)

	for {
		if ctx.Err() != nil {
			slog.Info("WebSocket stream disconnected", "session_id", sessionID)
			return
		}

		event, pollErr := sess.Bridge.Poll(h.pollTimeout)
		if pollErr != nil {
			event = pipeline.Event{Type: pipeline.EventPing}
		}

		data, err := json.Marshal(event)
		if err != nil {
			slog.Warn("Failed to marshal event", "session_id", sessionID, "error", err)
			return
		}
		if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
			slog.Info("WebSocket write failed", "session_id", sessionID, "error", err)
			return
		}

		if event.Type == pipeline.EventDone {
			h.sessions.Remove(sessionID)
			_ = conn.Close(websocket.StatusNormalClosure, "done")
			slog.Info("WebSocket stream complete", "session_id", sessionID)
			return
		}
	}
}
