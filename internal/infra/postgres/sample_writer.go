package postgres

import (
	"context"
	"fmt"

	"classical-music-quiz/internal/domain"
	"github.com/uptrace/bun"
)

// SeedSamples upserts catalog samples into the samples table.
func SeedSamples(ctx context.Context, db *bun.DB, samples []domain.Sample) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, s := range samples {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO samples (id, composer, artwork, uri) VALUES (?, ?, ?, ?)
				 ON CONFLICT (id) DO UPDATE SET composer=EXCLUDED.composer, artwork=EXCLUDED.artwork, uri=EXCLUDED.uri`,
				s.ID, s.Composer, s.Artwork, s.URI)
			if err != nil {
				return fmt.Errorf("seed sample %d: %w", s.ID, err)
			}
		}
		return nil
	})
}
