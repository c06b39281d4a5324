package redis_test

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/palletepro/palletepro/pkg/redis"
)

func TestConnect_ConfigErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	_, err := redis.Connect(ctx, redis.Config{ConnectTimeout: time.Second})
	assert.ErrorIs(t, err, redis.ErrMissingURL)

	_, err = redis.Connect(ctx, redis.Config{ConnectionURL: "http://localhost:6379", ConnectTimeout: time.Second})
	assert.ErrorIs(t, err, redis.ErrInvalidURL)
}

func TestConfig_Enabled(t *testing.T) {
	t.Parallel()
	assert.False(t, redis.Config{}.Enabled())
	assert.True(t, redis.Config{ConnectionURL: "redis://localhost:6379/0"}.Enabled())
}

func TestReadinessCheck_Unreachable(t *testing.T) {
	t.Parallel()

	client := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	check := redis.ReadinessCheck(client)
	assert.Equal(t, redis.CheckName, check.Name)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.ErrorIs(t, check.Fn(ctx), redis.ErrUnavailable)
}
