package editor

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/postcraft-io/template-studio/internal/logger"
	"github.com/postcraft-io/template-studio/internal/services"
)

// Manager tracks live editing sessions by id. Each template working copy
// is owned exclusively by its session; there is no cross-session
// coordination. History is private to a session and never persisted: a
// new session starts fresh from the server's current state.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	templates services.TemplateService
	elements  services.ElementService
	debounce  time.Duration
	log       *logger.Logger
}

// NewManager creates a session manager.
func NewManager(templates services.TemplateService, elements services.ElementService, debounce time.Duration, log *logger.Logger) *Manager {
	return &Manager{
		sessions:  make(map[string]*Session),
		templates: templates,
		elements:  elements,
		debounce:  debounce,
		log:       log.With("component", "sessions"),
	}
}

// Open loads the template and starts a new session over it.
func (m *Manager) Open(templateID uint, callbacks Callbacks) (*Session, error) {
	t, err := m.templates.GetTemplateByID(templateID)
	if err != nil {
		return nil, err
	}

	session := NewSession(uuid.NewString(), t, m.elements, m.debounce, callbacks, m.log)

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	m.log.Info("session opened", "session", session.ID, "template", templateID)
	return session, nil
}

// Get returns a live session by id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s not found", id)
	}
	return session, nil
}

// Close flushes and removes a session.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	session, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("session %s not found", id)
	}
	session.Close()
	m.log.Info("session closed", "session", id)
	return nil
}

// CloseAll shuts down every live session, used on server shutdown.
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
