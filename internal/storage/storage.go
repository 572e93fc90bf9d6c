package storage

import (
	"sync"
	"time"

	"github.com/compumarket/catalogadmin/internal/form"
	"github.com/google/uuid"
)

// Session is an open product form in the web console. Callers hold Mu while
// touching Form.
type Session struct {
	ID        string
	CreatedAt time.Time
	Mu        sync.Mutex
	Form      *form.Form
}

type SessionStore struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

func New() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
	}
}

// Add registers a form and returns its new session.
func (s *SessionStore) Add(f *form.Form) *Session {
	session := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		Form:      f,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return session
}

func (s *SessionStore) Get(sessionID string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[sessionID]
	return session, exists
}

func (s *SessionStore) GetAll() map[string]*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*Session, len(s.sessions))
	for k, v := range s.sessions {
		result[k] = v
	}
	return result
}

// Delete removes the session and releases its form's previews.
func (s *SessionStore) Delete(sessionID string) bool {
	s.mu.Lock()
	session, exists := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if !exists {
		return false
	}
	session.Mu.Lock()
	session.Form.Close()
	session.Mu.Unlock()
	return true
}

// Close releases every open session.
func (s *SessionStore) Close() {
	for id := range s.GetAll() {
		s.Delete(id)
	}
}

// Len returns the number of open sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
