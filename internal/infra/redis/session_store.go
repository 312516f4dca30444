package redis

import (
	"context"
	"sync"
	"time"

	"classical-music-quiz/internal/app"
	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of SessionRepository.
// Notes:
//   - Sessions own timers and playback, so they stay in a local map.
//   - Redis marks which players have a game running, with a TTL so a crashed
//     instance does not leave markers behind. Every lookup of a live session
//     extends the TTL, so an active game keeps its marker.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Replace(playerID string, session *app.Session) *app.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous := s.sessions[playerID]
	s.sessions[playerID] = session
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(playerID), session.ID(), s.ttl).Err()
	return previous
}

func (s *SessionStore) Get(playerID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[playerID]
	if ok {
		// re-set rather than expire so a marker lost to eviction comes back
		_ = s.client.Set(context.Background(), s.key(playerID), session.ID(), s.ttl).Err()
	}
	return session, ok
}

func (s *SessionStore) Delete(playerID string, session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.sessions[playerID]
	if !ok || current != session {
		return
	}
	delete(s.sessions, playerID)
	_ = s.client.Del(context.Background(), s.key(playerID)).Err()
}

func (s *SessionStore) key(playerID string) string {
	return "quiz:session:" + playerID
}
