package review

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

// Manager tracks active review sessions by id.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Create starts a new session and returns it.
func (m *Manager) Create() *Session {
	session := NewSession(uuid.NewString())
	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()
	return session
}

// Get looks up a session by id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Remove drops a session from the manager.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Sweep removes terminal sessions older than maxAge and returns how many
// were dropped.
func (m *Manager) Sweep(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, session := range m.sessions {
		if session.CreatedAt.Before(cutoff) && session.State().Terminal() {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}
