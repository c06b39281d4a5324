package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/palletepro/palletepro/pkg/httpserver"
)

// CheckName labels the Redis entry in the readiness report.
const CheckName = "redis"

// ReadinessCheck pings the cache server. Anything other than PONG counts as
// unavailable.
func ReadinessCheck(client redis.UniversalClient) httpserver.Check {
	return httpserver.Check{
		Name: CheckName,
		Fn: func(ctx context.Context) error {
			reply, err := client.Ping(ctx).Result()
			if err != nil {
				return errors.Join(ErrUnavailable, err)
			}
			if reply != "PONG" {
				return fmt.Errorf("%w: unexpected ping reply %q", ErrUnavailable, reply)
			}
			return nil
		},
	}
}
