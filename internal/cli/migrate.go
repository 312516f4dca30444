package cli

import (
	"context"
	"database/sql"
	"fmt"

	"classical-music-quiz/internal/config"
	"classical-music-quiz/internal/infra/file"
	pgstore "classical-music-quiz/internal/infra/postgres"
	pgmigrations "classical-music-quiz/internal/infra/postgres/migrations"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"
)

// NewMigrateCmd applies database migrations and optionally seeds the samples table.
func NewMigrateCmd(configPath *string) *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), *configPath, seed)
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "load the YAML catalog into the samples table")
	return cmd
}

func runMigrations(ctx context.Context, configPath string, seed bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	defer func() { _ = log.Sync() }()

	if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
		return err
	}
	if !seed {
		return nil
	}
	return seedCatalog(ctx, cfg, log)
}

func openDB(cfg config.Config) (*bun.DB, error) {
	if cfg.Postgres.URL == "" {
		return nil, fmt.Errorf("postgres url not configured")
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	return bun.NewDB(sqldb, pgdialect.New()), nil
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)

	if err := migrator.Init(ctx); err != nil {
		return err
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}
	log.Info("migrations applied", zap.String("group", group.String()))
	return nil
}

func seedCatalog(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	path := cfg.Quiz.CatalogPath
	if path == "" {
		path = defaultCatalogPath
	}
	catalog, err := file.NewCatalogLoader(path).LoadCatalog(ctx)
	if err != nil {
		return err
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := pgstore.SeedSamples(ctx, db, catalog.Samples); err != nil {
		return err
	}
	log.Info("catalog seeded", zap.Int("samples", len(catalog.Samples)), zap.String("path", path))
	return nil
}
