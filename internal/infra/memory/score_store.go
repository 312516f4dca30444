package memory

import (
	"context"
	"sync"

	"classical-music-quiz/internal/app"
)

// ScoreRepository keeps player scores in process memory.
type ScoreRepository struct {
	mu     sync.Mutex
	scores map[string]map[string]int
}

func NewScoreRepository() *ScoreRepository {
	return &ScoreRepository{scores: make(map[string]map[string]int)}
}

func (r *ScoreRepository) Scores(playerID string) app.ScoreStore {
	return &scoreStore{repo: r, playerID: playerID}
}

type scoreStore struct {
	repo     *ScoreRepository
	playerID string
}

func (s *scoreStore) GetInt(_ context.Context, key string) (int, error) {
	s.repo.mu.Lock()
	defer s.repo.mu.Unlock()
	return s.repo.scores[s.playerID][key], nil
}

func (s *scoreStore) SetInt(_ context.Context, key string, value int) error {
	s.repo.mu.Lock()
	defer s.repo.mu.Unlock()
	values, ok := s.repo.scores[s.playerID]
	if !ok {
		values = make(map[string]int)
		s.repo.scores[s.playerID] = values
	}
	values[key] = value
	return nil
}
