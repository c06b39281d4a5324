package ratelimiter

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"
)

// KeyFunc extracts the bucket key from a request.
type KeyFunc func(r *http.Request) string

// ClientIP keys by the host part of RemoteAddr. Run it behind a middleware
// that resolves proxy headers, such as chi's RealIP.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Middleware rejects requests over the limit by calling onLimited with
// ErrLimited. Rate limit headers are set on every response.
func Middleware(l *Limiter, key KeyFunc, onLimited func(w http.ResponseWriter, r *http.Request, err error)) func(http.Handler) http.Handler {
	if onLimited == nil {
		onLimited = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusTooManyRequests)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := l.Allow(key(r))

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed {
				wait := res.RetryAfter(l.now())
				h.Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				onLimited(w, r, ErrLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RunSweeper calls Sweep every interval until ctx is done.
func (l *Limiter) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}
