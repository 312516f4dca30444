package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"time"

	"classical-music-quiz/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// CatalogLoader fetches the sample catalog from a backing store (file, Postgres, ...).
type CatalogLoader interface {
	LoadCatalog(ctx context.Context) (domain.Catalog, error)
}

// CatalogRepository caches the sample catalog in Redis and falls back to a loader on cache miss.
// Samples are stored as: HSET quiz:catalog {sampleID} {sample JSON}
type CatalogRepository struct {
	client *redis.Client
	loader CatalogLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

const catalogKey = "quiz:catalog"

func NewCatalogRepository(client *redis.Client, loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CatalogRepository) GetCatalog(ctx context.Context) (domain.Catalog, error) {
	if catalog, ok := r.cached(ctx); ok {
		return catalog, nil
	}

	result, err, _ := r.sf.Do(catalogKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if catalog, ok := r.cached(ctx); ok {
			return catalog, nil
		}

		catalog, err := r.loader.LoadCatalog(ctx)
		if err != nil {
			return domain.Catalog{}, err
		}

		pipe := r.client.TxPipeline()
		pipe.Del(ctx, catalogKey)
		for _, sample := range catalog.Samples {
			raw, err := json.Marshal(sample)
			if err != nil {
				return domain.Catalog{}, fmt.Errorf("marshal sample %d: %w", sample.ID, err)
			}
			pipe.HSet(ctx, catalogKey, strconv.Itoa(sample.ID), raw)
		}
		if ttl := r.ttlWithJitter(); ttl > 0 {
			pipe.Expire(ctx, catalogKey, ttl)
		}
		// a failed cache write only costs a reload next time
		_, _ = pipe.Exec(ctx)

		return catalog, nil
	})
	if err != nil {
		return domain.Catalog{}, err
	}
	return result.(domain.Catalog), nil
}

func (r *CatalogRepository) cached(ctx context.Context) (domain.Catalog, bool) {
	entries, err := r.client.HGetAll(ctx, catalogKey).Result()
	if err != nil || len(entries) == 0 {
		return domain.Catalog{}, false
	}
	catalog, err := buildCatalogFromCache(entries)
	if err != nil {
		return domain.Catalog{}, false
	}
	return catalog, true
}

func buildCatalogFromCache(entries map[string]string) (domain.Catalog, error) {
	samples := make([]domain.Sample, 0, len(entries))
	for field, raw := range entries {
		var sample domain.Sample
		if err := json.Unmarshal([]byte(raw), &sample); err != nil {
			return domain.Catalog{}, fmt.Errorf("decode cached sample %s: %w", field, err)
		}
		samples = append(samples, sample)
	}
	// hash iteration order is random; keep catalog order stable
	sort.Slice(samples, func(i, j int) bool { return samples[i].ID < samples[j].ID })
	return domain.Catalog{Samples: samples}, nil
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
