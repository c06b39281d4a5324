// Package session resolves the authenticated user of a request from a
// bearer JWT and carries it through the request context.
package session

import (
	"context"
	"time"
)

// Config holds the token verification settings.
type Config struct {
	Secret   string        `env:"JWT_SECRET"`
	Issuer   string        `env:"JWT_ISSUER"`
	Audience string        `env:"JWT_AUDIENCE" envDefault:"authenticated"`
	Leeway   time.Duration `env:"JWT_LEEWAY" envDefault:"30s"`
}

// User is the authenticated caller.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

type contextKey struct{}

// WithUser stores u in ctx.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// FromContext returns the user stored by the middleware.
func FromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(contextKey{}).(User)
	return u, ok && u.ID != ""
}
