package cli

import (
	"context"
	"time"

	"classical-music-quiz/internal/app"
	"classical-music-quiz/internal/config"
	"classical-music-quiz/internal/infra/file"
	"classical-music-quiz/internal/infra/memory"
	pgloader "classical-music-quiz/internal/infra/postgres"
	infraredis "classical-music-quiz/internal/infra/redis"
	"classical-music-quiz/internal/logger"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultCatalogPath = "config/catalog.yaml"

// backend holds the infrastructure a QuizService is assembled from.
type backend struct {
	service *app.QuizService
	log     *zap.Logger
	closers []func()
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func newLogger(cfg config.Config) *zap.Logger {
	return logger.New(logger.Options{File: cfg.Log.File, Production: cfg.Log.Production})
}

// buildBackend picks Postgres or the YAML file for the catalog and Redis or memory for state.
func buildBackend(ctx context.Context, cfg config.Config, log *zap.Logger) (*backend, error) {
	b := &backend{log: log}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		b.closers = append(b.closers, func() { _ = redisClient.Close() })
	}
	redisTTL := config.Duration(cfg.Redis.TTL, 10*time.Minute)

	catalogPath := cfg.Quiz.CatalogPath
	if catalogPath == "" {
		catalogPath = defaultCatalogPath
	}
	var loader memory.CatalogLoader = file.NewCatalogLoader(catalogPath)
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, pool.Close)
		loader = pgloader.NewCatalogLoader(pool)
	}

	catalogTTL := config.Duration(cfg.Quiz.CatalogTTL, 10*time.Minute)
	var catalogs app.CatalogRepository
	var sessions app.SessionRepository
	var scores app.ScoreRepository
	if redisClient != nil {
		catalogs = infraredis.NewCatalogRepository(redisClient, loader, catalogTTL)
		sessions = infraredis.NewSessionStore(redisClient, redisTTL)
		scores = infraredis.NewScoreRepository(redisClient)
	} else {
		catalogs = memory.NewCatalogRepository(loader, catalogTTL)
		sessions = memory.NewSessionStore()
		scores = memory.NewScoreRepository()
	}

	b.service = app.NewQuizService(sessions, catalogs, scores,
		app.WithFeedbackDelay(config.Duration(cfg.Quiz.FeedbackDelay, app.DefaultFeedbackDelay)),
		app.WithLogger(log),
	)
	return b, nil
}
