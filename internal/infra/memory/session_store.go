package memory

import (
	"sync"

	"classical-music-quiz/internal/app"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Replace(playerID string, session *app.Session) *app.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous := s.sessions[playerID]
	s.sessions[playerID] = session
	return previous
}

func (s *SessionStore) Get(playerID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[playerID]
	return session, ok
}

func (s *SessionStore) Delete(playerID string, session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.sessions[playerID]; ok && current == session {
		delete(s.sessions, playerID)
	}
}
