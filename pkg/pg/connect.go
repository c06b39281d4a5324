package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
)

// Connect opens a pgx pool and pings it, retrying with exponential backoff
// while the database is unreachable.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	if cfg.ConnectionString == "" {
		return nil, ErrEmptyConnectionString
	}

	connConfig, err := pgxpool.ParseConfig(cfg.ConnectionString)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseDBConfig, err)
	}
	connConfig.MaxConns = cfg.MaxOpenConns
	connConfig.MinConns = cfg.MaxIdleConns
	connConfig.HealthCheckPeriod = cfg.HealthCheckPeriod
	connConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	connConfig.MaxConnLifetime = cfg.MaxConnLifetime

	backoff := retry.WithMaxRetries(cfg.RetryAttempts, retry.NewExponential(cfg.RetryInterval))

	var pool *pgxpool.Pool
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		conn, err := pgxpool.NewWithConfig(ctx, connConfig)
		if err != nil {
			return retry.RetryableError(err)
		}
		if err := conn.Ping(ctx); err != nil {
			conn.Close()
			return retry.RetryableError(err)
		}
		pool = conn
		return nil
	})
	if err != nil {
		return nil, errors.Join(ErrFailedToOpenDBConnection, err)
	}

	return pool, nil
}
