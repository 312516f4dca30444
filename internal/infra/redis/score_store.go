package redis

import (
	"context"
	"errors"
	"fmt"

	"classical-music-quiz/internal/app"
	"github.com/redis/go-redis/v9"
)

// ScoreRepository persists player scores in Redis.
// Scores are stored as: HSET quiz:scores:{playerID} current_score {n} high_score {n}
type ScoreRepository struct {
	client *redis.Client
}

func NewScoreRepository(client *redis.Client) *ScoreRepository {
	return &ScoreRepository{client: client}
}

func (r *ScoreRepository) Scores(playerID string) app.ScoreStore {
	return &scoreStore{client: r.client, key: "quiz:scores:" + playerID}
}

type scoreStore struct {
	client *redis.Client
	key    string
}

// GetInt returns 0 for a key that was never written.
func (s *scoreStore) GetInt(ctx context.Context, key string) (int, error) {
	value, err := s.client.HGet(ctx, s.key, key).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

func (s *scoreStore) SetInt(ctx context.Context, key string, value int) error {
	if err := s.client.HSet(ctx, s.key, key, value).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
