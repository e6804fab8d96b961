package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Manager tracks the live session per identity. A reconnect replaces the
// previous session; the old one is closed first so its subscriptions and
// markers never leak.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	log      zerolog.Logger
}

func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		log:      log.With().Str("component", "sessions").Logger(),
	}
}

// Attach registers and starts s for its identity, closing any prior
// session for the same identity.
func (m *Manager) Attach(ctx context.Context, s *Session) {
	m.mu.Lock()
	prev := m.sessions[s.identity]
	m.sessions[s.identity] = s
	m.mu.Unlock()
	if prev != nil {
		prev.Close()
	}
	s.Start(ctx)
}

// Get returns the live session for identity, if any.
func (m *Manager) Get(identity string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[identity]
	return s, ok
}

// Detach closes and forgets s if it is still the registered session for
// its identity.
func (m *Manager) Detach(s *Session) {
	m.mu.Lock()
	if m.sessions[s.identity] == s {
		delete(m.sessions, s.identity)
	}
	m.mu.Unlock()
	s.Close()
}

// CloseAll tears down every live session (server shutdown).
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}
