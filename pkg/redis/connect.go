package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
)

// Connect parses the connection URL and pings the server until it answers,
// the retry budget is spent or ConnectTimeout elapses.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.ConnectionURL == "" {
		return nil, ErrMissingURL
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	opts, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrInvalidURL, err)
	}

	client := redis.NewClient(opts)
	backoff := retry.WithMaxRetries(cfg.RetryAttempts, retry.NewConstant(cfg.RetryInterval))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = client.Close()
		return nil, errors.Join(ErrNotReady, err)
	}

	return client, nil
}
