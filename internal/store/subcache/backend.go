// Package subcache puts a read-through cache in front of a subscription
// store. Save writes the new row through to the cache; a read miss fills the
// cache only when the key is still absent, so a fill that raced a Save
// cannot put the older row back.
package subcache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/palletepro/palletepro/pkg/cache"
)

// ErrMiss is returned by a Backend when the key is absent.
var ErrMiss = errors.New("subcache: miss")

// Backend stores encoded rows. Add stores value only when key is absent.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Add(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// redisClient is the subset of redis.UniversalClient the backend needs.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisBackend shares cached rows across instances.
type RedisBackend struct {
	client redisClient
}

func NewRedisBackend(client redisClient) *RedisBackend {
	return &RedisBackend{client: client}
}

func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := b.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return v, err
}

func (b *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return b.client.Set(ctx, key, value, ttl).Err()
}

func (b *RedisBackend) Add(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return b.client.SetNX(ctx, key, value, ttl).Err()
}

func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	return b.client.Del(ctx, key).Err()
}

// MemoryBackend keeps rows in process. Used when Redis is not configured.
type MemoryBackend struct {
	c *cache.Cache[string, []byte]
}

func NewMemoryBackend(capacity int, opts ...cache.Option) *MemoryBackend {
	return &MemoryBackend{c: cache.New[string, []byte](capacity, opts...)}
}

func (b *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := b.c.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	return v, nil
}

func (b *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	b.c.Set(key, value, ttl)
	return nil
}

func (b *MemoryBackend) Add(_ context.Context, key string, value []byte, ttl time.Duration) error {
	b.c.Add(key, value, ttl)
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, key string) error {
	b.c.Delete(key)
	return nil
}
