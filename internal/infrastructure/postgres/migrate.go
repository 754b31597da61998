package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/lock"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/pkg/logger"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate aplica con goose las migraciones embebidas que falten.
// El session locker de goose (advisory lock) serializa la ejecución entre réplicas.
func Migrate(ctx context.Context, pool *pgxpool.Pool, log *logger.Logger) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := newMigrationProvider(db)
	if err != nil {
		return err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, r := range results {
		log.Info().
			Int64("version", r.Source.Version).
			Str("file", r.Source.Path).
			Dur("duration", r.Duration).
			Msg("migración aplicada")
	}
	return nil
}

func newMigrationProvider(db *sql.DB) (*goose.Provider, error) {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	locker, err := lock.NewPostgresSessionLocker()
	if err != nil {
		return nil, fmt.Errorf("migration locker: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, db, sub, goose.WithSessionLocker(locker))
	if err != nil {
		return nil, fmt.Errorf("migration provider: %w", err)
	}
	return provider, nil
}
