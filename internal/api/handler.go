// Package api provides HTTP handlers for the advisor API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ukm-labs/advisor/internal/catalog"
	"github.com/ukm-labs/advisor/internal/pipeline"
	"github.com/ukm-labs/advisor/internal/session"
)

// maxRequestBodySize caps inbound JSON bodies (1MB).
const maxRequestBodySize = 1 << 20

// Handler exposes the recommendation pipeline over HTTP: a fire-and-forget
// start endpoint and a server-push event stream per session.
type Handler struct {
	sessions    *session.Manager
	runner      *pipeline.Runner
	repo        catalog.Repository
	pollTimeout time.Duration
}

// NewHandler creates the API handler.
func NewHandler(sessions *session.Manager, runner *pipeline.Runner, repo catalog.Repository, pollTimeout time.Duration) *Handler {
	if pollTimeout <= 0 {
		pollTimeout = time.Second
	}
	return &Handler{
		sessions:    sessions,
		runner:      runner,
		repo:        repo,
		pollTimeout: pollTimeout,
	}
}

// RegisterRoutes registers the session routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/session", func(r chi.Router) {
		r.Post("/start", h.HandleStart)
		r.Get("/{sessionID}/stream", h.HandleStream)
		r.Get("/{sessionID}/ws", h.HandleWebSocket)
	})
	r.Get("/api/health", h.HandleHealth)
}

type startRequest struct {
	Story string `json:"story"`
}

// HandleStart handles POST /api/session/start. It validates the story,
// registers a session, launches the pipeline on a background goroutine, and
// returns immediately.
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Story == "" {
		Error(w, http.StatusBadRequest, "Cerita kosong")
		return
	}

	sess := h.sessions.Create(req.Story)

	// The run is detached from the request: the session keeps going after
	// this response is written, and the stream endpoint picks up its events.
	go h.runner.Run(context.Background(), req.Story, sess.Bridge)

	slog.Info("Pipeline started", "session_id", sess.ID)
	JSON(w, http.StatusAccepted, map[string]string{
		"status":     "started",
		"session_id": sess.ID,
	})
}

// HandleStream handles GET /api/session/{sessionID}/stream. It drains the
// session's bridge as SSE frames, synthesizing a ping frame on idle gaps,
// and returns after delivering the done event.
func (h *Handler) HandleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	sess := h.sessions.Get(sessionID)
	if sess == nil {
		Error(w, http.StatusNotFound, "session not found")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		Error(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	slog.Info("Event stream connected", "session_id", sessionID)

	for {
		if r.Context().Err() != nil {
			slog.Info("Event stream disconnected", "session_id", sessionID)
			return
		}

		event, err := sess.Bridge.Poll(h.pollTimeout)
		if err != nil {
			// Idle gap: keep the connection alive.
			if writeErr := writeSSEEvent(w, pipeline.Event{Type: pipeline.EventPing}); writeErr != nil {
				slog.Warn("Failed to write ping frame", "session_id", sessionID, "error", writeErr)
				return
			}
			flusher.Flush()
			continue
		}

		if err := writeSSEEvent(w, event); err != nil {
			slog.Warn("Failed to write event frame", "session_id", sessionID, "error", err)
			return
		}
		flusher.Flush()

		if event.Type == pipeline.EventDone {
			h.sessions.Remove(sessionID)
			slog.Info("Event stream complete", "session_id", sessionID)
			return
		}
	}
}

// HandleHealth handles GET /api/health.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Ping(r.Context()); err != nil {
		Error(w, http.StatusServiceUnavailable, "catalog unavailable")
		return
	}

	count, err := h.repo.Count(r.Context())
	if err != nil {
		Error(w, http.StatusServiceUnavailable, "catalog unavailable")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"clubs":    count,
		"sessions": h.sessions.Count(),
	})
}

func writeSSEEvent(w io.Writer, event pipeline.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
