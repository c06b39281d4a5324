package httpserver

import (
	"log/slog"
	"time"
)

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger used for lifecycle messages.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithShutdownTimeout overrides Config.ShutdownTimeout.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.cfg.ShutdownTimeout = d
		}
	}
}

// WithOnShutdown registers a callback run after the listener is closed,
// typically used to close hubs and pools.
func WithOnShutdown(fn func()) Option {
	return func(s *Server) {
		if fn != nil {
			s.onShutdown = append(s.onShutdown, fn)
		}
	}
}
