package pg

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrate applies the goose migrations found at dir inside fsys.
func Migrate(ctx context.Context, pool *pgxpool.Pool, cfg Config, fsys fs.FS, dir string, log *slog.Logger) error {
	if fsys == nil {
		return errors.Join(ErrFailedToApplyMigrations, ErrMigrationsNotProvided)
	}

	// goose needs database/sql; this shares the pool's connections.
	db := stdlib.OpenDBFromPool(pool)
	defer func() {
		if err := db.Close(); err != nil {
			log.ErrorContext(ctx, "failed to close migration db handle", "error", err)
		}
	}()

	goose.SetBaseFS(fsys)
	goose.SetLogger(gooseLogger{log: log})
	goose.SetTableName(cfg.MigrationsTable)

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	if err := goose.UpContext(ctx, db, dir); err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	return nil
}

// MigrationStatus logs the applied state of every migration.
func MigrationStatus(ctx context.Context, pool *pgxpool.Pool, cfg Config, fsys fs.FS, dir string, log *slog.Logger) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(fsys)
	goose.SetLogger(gooseLogger{log: log})
	goose.SetTableName(cfg.MigrationsTable)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.StatusContext(ctx, db, dir)
}

// gooseLogger routes goose's printf output through slog.
type gooseLogger struct {
	log *slog.Logger
}

func (a gooseLogger) Fatalf(format string, v ...any) {
	a.log.Error(fmt.Sprintf(format, v...))
}

func (a gooseLogger) Printf(format string, v ...any) {
	a.log.Info(fmt.Sprintf(format, v...))
}
