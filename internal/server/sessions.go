package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"salesdesk/internal/orchestration"
)

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("session not found")

// ConversationFactory creates the pipeline for a new session.
// *orchestration.Assistant satisfies it.
type ConversationFactory interface {
	NewConversation() *orchestration.Pipeline
}

type sessionEntry struct {
	pipeline *orchestration.Pipeline
	lastSeen time.Time
}

// SessionManager owns one conversation per browser or API session.
// Sessions idle for longer than the TTL are dropped by Sweep.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
	factory  ConversationFactory
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionManager creates an empty manager. A non-positive ttl disables expiry.
func NewSessionManager(factory ConversationFactory, ttl time.Duration) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*sessionEntry),
		factory:  factory,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create starts a new session and returns its ID.
func (m *SessionManager) Create() (string, *orchestration.Pipeline) {
	id := uuid.New().String()
	pipeline := m.factory.NewConversation()

	m.mu.Lock()
	m.sessions[id] = &sessionEntry{pipeline: pipeline, lastSeen: m.now()}
	count := len(m.sessions)
	m.mu.Unlock()

	activeSessions.Set(float64(count))
	return id, pipeline
}

// Get returns the pipeline for id and marks the session as used.
func (m *SessionManager) Get(id string) (*orchestration.Pipeline, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	entry.lastSeen = m.now()
	return entry.pipeline, nil
}

// GetOrCreate returns the session for id, or a new session when id is unknown.
// The returned ID is the one the caller must use from now on.
func (m *SessionManager) GetOrCreate(id string) (string, *orchestration.Pipeline) {
	if id != "" {
		if pipeline, err := m.Get(id); err == nil {
			return id, pipeline
		}
	}
	return m.Create()
}

// Len returns the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep drops sessions idle for longer than the TTL and returns how many were removed.
// Sessions with a turn in flight are kept.
func (m *SessionManager) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}

	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	removed := 0
	for id, entry := range m.sessions {
		if entry.lastSeen.Before(cutoff) && entry.pipeline.State() == orchestration.StateIdle {
			delete(m.sessions, id)
			removed++
		}
	}
	count := len(m.sessions)
	m.mu.Unlock()

	activeSessions.Set(float64(count))
	return removed
}

// StartJanitor sweeps expired sessions every interval until ctx is done.
func (m *SessionManager) StartJanitor(ctx context.Context, interval time.Duration) {
	if m.ttl <= 0 || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Sweep()
			}
		}
	}()
}
