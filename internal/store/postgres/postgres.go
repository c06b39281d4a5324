// Package postgres implements the subscription and record stores on
// PostgreSQL through a pgx pool.
package postgres

import (
	"context"
	"embed"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/palletepro/palletepro/pkg/pg"
)

//go:embed migrations/*.sql
var migrations embed.FS

// MigrationsDir is the directory inside Migrations holding the goose files.
const MigrationsDir = "migrations"

// Migrations returns the embedded schema migrations.
func Migrations() embed.FS {
	return migrations
}

// Migrate applies the embedded migrations.
func Migrate(ctx context.Context, pool *pgxpool.Pool, cfg pg.Config, log *slog.Logger) error {
	return pg.Migrate(ctx, pool, cfg, migrations, MigrationsDir, log)
}

// Status logs the applied state of the embedded migrations.
func Status(ctx context.Context, pool *pgxpool.Pool, cfg pg.Config, log *slog.Logger) error {
	return pg.MigrationStatus(ctx, pool, cfg, migrations, MigrationsDir, log)
}
