// Package session provides the in-memory registry of live pipeline sessions.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ukm-labs/advisor/internal/domain"
	"github.com/ukm-labs/advisor/internal/pipeline"
)

// Session pairs one pipeline run with the bridge its consumer drains.
type Session struct {
	domain.PipelineSession
	Bridge *pipeline.Bridge
}

// Manager tracks active sessions by ID. Sessions live for one pipeline run:
// the stream consumer removes them after delivering the done event, and the
// TTL worker reaps any session whose consumer never showed up.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
}

// NewManager creates a session manager with the given abandonment TTL.
func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Create registers a new session for the given story and returns it.
func (m *Manager) Create(story string) *Session {
	s := &Session{
		PipelineSession: domain.PipelineSession{
			ID:        uuid.NewString(),
			Story:     story,
			CreatedAt: time.Now(),
		},
		Bridge: pipeline.NewBridge(),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	slog.Info("Session created", "session_id", s.ID, "story_length", len(story))
	return s
}

// Get returns the session with the given ID, or nil.
func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// Remove drops a session from the registry.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; ok {
		delete(m.sessions, id)
		slog.Info("Session removed", "session_id", id)
	}
}

// Count returns the number of registered sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// StartTTLWorker reaps sessions older than the TTL until ctx is done. A
// session normally disappears when its consumer delivers done; the worker
// only covers sessions whose stream was never opened or never drained.
func (m *Manager) StartTTLWorker(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.reapExpired()
			}
		}
	}()
}

func (m *Manager) reapExpired() {
	cutoff := time.Now().Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if s.CreatedAt.Before(cutoff) {
			delete(m.sessions, id)
			slog.Info("Session expired", "session_id", id, "created_at", s.CreatedAt)
		}
	}
}
