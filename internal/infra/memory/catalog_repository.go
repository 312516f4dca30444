package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"classical-music-quiz/internal/domain"
	"golang.org/x/sync/singleflight"
)

// CatalogLoader fetches the sample catalog from a backing store (file, Postgres, ...).
type CatalogLoader interface {
	LoadCatalog(ctx context.Context) (domain.Catalog, error)
}

// CatalogRepository caches the catalog with a TTL to avoid repeated loads.
type CatalogRepository struct {
	loader CatalogLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	catalog   domain.Catalog
	expiresAt time.Time
	loaded    bool
}

func NewCatalogRepository(loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CatalogRepository) GetCatalog(ctx context.Context) (domain.Catalog, error) {
	if catalog, ok := r.cached(r.clock()); ok {
		return catalog, nil
	}

	result, err, _ := r.sf.Do("catalog", func() (interface{}, error) {
		now := r.clock()
		if catalog, ok := r.cached(now); ok {
			return catalog, nil
		}

		catalog, err := r.loader.LoadCatalog(ctx)
		if err != nil {
			return domain.Catalog{}, err
		}

		r.mu.Lock()
		r.catalog = catalog
		r.expiresAt = now.Add(r.ttlWithJitter())
		r.loaded = true
		r.mu.Unlock()
		return catalog, nil
	})
	if err != nil {
		return domain.Catalog{}, err
	}
	return result.(domain.Catalog), nil
}

func (r *CatalogRepository) cached(now time.Time) (domain.Catalog, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.loaded && r.expiresAt.After(now) {
		return r.catalog, true
	}
	return domain.Catalog{}, false
}

// StaticCatalogLoader serves a fixed catalog (useful for tests/demos).
type StaticCatalogLoader struct {
	catalog domain.Catalog
}

func NewStaticCatalogLoader(samples []domain.Sample) *StaticCatalogLoader {
	return &StaticCatalogLoader{catalog: domain.Catalog{Samples: samples}}
}

func (l *StaticCatalogLoader) LoadCatalog(_ context.Context) (domain.Catalog, error) {
	if len(l.catalog.Samples) == 0 {
		return domain.Catalog{}, domain.ErrCatalogEmpty
	}
	return l.catalog, nil
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
