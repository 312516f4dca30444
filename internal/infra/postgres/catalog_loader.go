package postgres

import (
	"context"
	"fmt"

	"classical-music-quiz/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// CatalogLoader loads the sample catalog from Postgres.
type CatalogLoader struct {
	pool *pgxpool.Pool
}

func NewCatalogLoader(pool *pgxpool.Pool) *CatalogLoader {
	return &CatalogLoader{pool: pool}
}

func (l *CatalogLoader) LoadCatalog(ctx context.Context) (domain.Catalog, error) {
	rows, err := l.pool.Query(ctx, `SELECT id, composer, artwork, uri FROM samples ORDER BY id`)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("load samples: %w", err)
	}
	defer rows.Close()

	var samples []domain.Sample
	for rows.Next() {
		var s domain.Sample
		if err := rows.Scan(&s.ID, &s.Composer, &s.Artwork, &s.URI); err != nil {
			return domain.Catalog{}, fmt.Errorf("scan sample: %w", err)
		}
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return domain.Catalog{}, fmt.Errorf("iterate samples: %w", err)
	}
	if len(samples) == 0 {
		return domain.Catalog{}, domain.ErrCatalogEmpty
	}
	return domain.Catalog{Samples: samples}, nil
}
