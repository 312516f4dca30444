package redis

import (
	"context"
	"testing"
	"time"

	"classical-music-quiz/internal/domain"
	"classical-music-quiz/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestCatalogRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{CatalogLoader: memory.NewStaticCatalogLoader(sampleCatalog())}
	repo := NewCatalogRepository(client, loader, time.Minute)

	catalog, err := repo.GetCatalog(context.Background())
	if err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if len(catalog.Samples) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(catalog.Samples))
	}
	if !mr.Exists(catalogKey) {
		t.Fatalf("expected catalog hash in redis")
	}

	// Second call should hit cache, loader not incremented.
	cached, err := repo.GetCatalog(context.Background())
	if err != nil {
		t.Fatalf("get cached catalog: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	for i, sample := range cached.Samples {
		if sample != catalog.Samples[i] {
			t.Fatalf("cached sample %d mismatch: %+v vs %+v", i, sample, catalog.Samples[i])
		}
	}
}

func TestCatalogRepositoryReloadsAfterExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{CatalogLoader: memory.NewStaticCatalogLoader(sampleCatalog())}
	repo := NewCatalogRepository(newClient(mr), loader, time.Minute)

	_, _ = repo.GetCatalog(context.Background())
	mr.FastForward(2 * time.Minute)
	_, _ = repo.GetCatalog(context.Background())
	if loader.calls != 2 {
		t.Fatalf("expected reload after ttl, loader calls=%d", loader.calls)
	}
}

type countingLoader struct {
	memory.CatalogLoader
	calls int
}

func (l *countingLoader) LoadCatalog(ctx context.Context) (domain.Catalog, error) {
	l.calls++
	return l.CatalogLoader.LoadCatalog(ctx)
}

func sampleCatalog() []domain.Sample {
	return []domain.Sample{
		{ID: 0, Composer: "Antonio Vivaldi", Artwork: "vivaldi.png", URI: "audio/vivaldi.mp3"},
		{ID: 1, Composer: "Frédéric Chopin", Artwork: "chopin.png", URI: "audio/chopin.mp3"},
		{ID: 2, Composer: "Pyotr Ilyich Tchaikovsky", Artwork: "tchaikovsky.png", URI: "audio/tchaikovsky.mp3"},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
