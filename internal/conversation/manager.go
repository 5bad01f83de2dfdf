package conversation

import (
	"strings"
	"sync"
)

// Manager owns the sessions of all connected users, keyed by a
// caller-supplied session ID. Each interaction step is processed one at a
// time; long-running pipeline work never happens under the manager lock.
type Manager struct {
	mu       sync.Mutex
	hosts    []string
	sessions map[string]*Session
}

// NewManager returns an empty session manager.
func NewManager(allowedHosts []string) *Manager {
	return &Manager{
		hosts:    allowedHosts,
		sessions: make(map[string]*Session),
	}
}

// Input routes one line of text to the named session, creating it on first
// contact. A new session is greeted before its first line is processed.
func (m *Manager) Input(sessionID, text string) (string, *Request) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[strings.TrimSpace(sessionID)]
	if !ok {
		session = NewSession(m.hosts)
		m.sessions[strings.TrimSpace(sessionID)] = session
		if strings.TrimSpace(text) == "" {
			return session.Greeting(), nil
		}
	}

	reply, req := session.Input(text)
	if req != nil {
		// The emitted request is immutable; the session is immediately
		// recycled for the next interaction.
		session.Reset()
	}
	return reply, req
}

// Cancel discards the named session's scratch state.
func (m *Manager) Cancel(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[strings.TrimSpace(sessionID)]
	if !ok {
		return false
	}
	session.Reset()
	return true
}
