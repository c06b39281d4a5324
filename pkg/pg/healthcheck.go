package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/palletepro/palletepro/pkg/httpserver"
)

// CheckName labels the Postgres entry in the readiness report.
const CheckName = "postgres"

// ReadinessCheck acquires a pooled connection and pings it, so an exhausted
// pool reports as not ready as well as a dead server.
func ReadinessCheck(pool *pgxpool.Pool) httpserver.Check {
	return httpserver.Check{
		Name: CheckName,
		Fn: func(ctx context.Context) error {
			conn, err := pool.Acquire(ctx)
			if err != nil {
				return errors.Join(ErrUnavailable, err)
			}
			defer conn.Release()
			if err := conn.Ping(ctx); err != nil {
				return errors.Join(ErrUnavailable, err)
			}
			return nil
		},
	}
}
