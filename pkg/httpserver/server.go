package httpserver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Server wraps http.Server with signal-driven graceful shutdown.
type Server struct {
	cfg        Config
	log        *slog.Logger
	onShutdown []func()

	mu   sync.Mutex
	srv  *http.Server
	once sync.Once
}

// New returns a Server for cfg.
func New(cfg Config, opts ...Option) *Server {
	s := &Server{
		cfg: cfg,
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run serves handler until ctx is cancelled, SIGINT/SIGTERM is received or
// the listener fails.
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	s.mu.Lock()
	if s.srv != nil {
		s.mu.Unlock()
		return errors.Join(ErrStart, ErrAlreadyRunning)
	}
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}
	s.srv = srv
	s.mu.Unlock()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.InfoContext(ctx, "http server started", "addr", s.cfg.Addr)

	var runErr error
	select {
	case <-ctx.Done():
		s.log.Info("http server shutting down")
		if err := s.Shutdown(context.Background()); err != nil {
			s.log.Error("graceful shutdown failed", "error", err)
		}
		runErr = <-errCh
	case runErr = <-errCh:
	}

	if runErr != nil && !errors.Is(runErr, http.ErrServerClosed) {
		return errors.Join(ErrStart, runErr)
	}
	return nil
}

// Shutdown stops the server gracefully. Repeated calls are no-ops.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		srv := s.srv
		s.mu.Unlock()
		if srv == nil {
			return
		}

		ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()
		err = srv.Shutdown(ctx)
		for _, fn := range s.onShutdown {
			fn()
		}
	})

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Join(ErrShutdown, err)
	}
	return nil
}
