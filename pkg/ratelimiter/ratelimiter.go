// Package ratelimiter is an in-memory token bucket limiter keyed by an
// arbitrary string, usually the client IP.
package ratelimiter

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrInvalidConfig = errors.New("invalid rate limit configuration")
	ErrLimited       = errors.New("too many requests")
)

// Config defines the bucket shape. Capacity is the burst size; RefillRate
// tokens are added every RefillInterval.
type Config struct {
	Enabled        bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	Capacity       int           `env:"RATE_LIMIT_CAPACITY" envDefault:"10"`
	RefillRate     int           `env:"RATE_LIMIT_REFILL_RATE" envDefault:"1"`
	RefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL" envDefault:"6s"`
}

func (c Config) validate() error {
	switch {
	case c.Capacity <= 0:
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfig, c.Capacity)
	case c.RefillRate <= 0:
		return fmt.Errorf("%w: refill rate must be positive, got %d", ErrInvalidConfig, c.RefillRate)
	case c.RefillInterval <= 0:
		return fmt.Errorf("%w: refill interval must be positive, got %v", ErrInvalidConfig, c.RefillInterval)
	}
	return nil
}

// Result is the outcome of one Allow call.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is how long a denied caller should wait.
func (r Result) RetryAfter(now time.Time) time.Duration {
	if r.Allowed {
		return 0
	}
	return max(r.ResetAt.Sub(now), 0)
}

type bucket struct {
	tokens     int
	lastRefill time.Time
	lastAccess time.Time
}

// staleAfter is how long an idle bucket is kept before Sweep drops it.
const staleAfter = time.Hour

// Limiter is safe for concurrent use.
type Limiter struct {
	cfg Config
	now func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// New validates cfg and returns a Limiter.
func New(cfg Config, opts ...Option) (*Limiter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	l := &Limiter{cfg: cfg, now: time.Now, buckets: make(map[string]*bucket)}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Allow takes one token for key. A denied call consumes nothing.
func (l *Limiter) Allow(key string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.cfg.Capacity, lastRefill: now}
		l.buckets[key] = b
	}

	// cap the interval count so a long idle bucket cannot overflow
	maxIntervals := int64(l.cfg.Capacity/l.cfg.RefillRate + 1)
	intervals := int(min(int64(now.Sub(b.lastRefill)/l.cfg.RefillInterval), maxIntervals))
	if intervals > 0 {
		b.tokens = min(b.tokens+intervals*l.cfg.RefillRate, l.cfg.Capacity)
		b.lastRefill = b.lastRefill.Add(time.Duration(intervals) * l.cfg.RefillInterval)
		if b.tokens == l.cfg.Capacity {
			b.lastRefill = now
		}
	}
	b.lastAccess = now

	res := Result{Limit: l.cfg.Capacity, ResetAt: b.lastRefill.Add(l.cfg.RefillInterval)}
	if b.tokens > 0 {
		b.tokens--
		res.Allowed = true
	}
	res.Remaining = b.tokens
	return res
}

// Sweep drops buckets idle for more than an hour and returns how many were
// removed.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	n := 0
	for key, b := range l.buckets {
		if now.Sub(b.lastAccess) > staleAfter {
			delete(l.buckets, key)
			n++
		}
	}
	return n
}
