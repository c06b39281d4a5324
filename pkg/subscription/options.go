package subscription

import (
	"log/slog"
	"time"
)

// Observer receives payment lifecycle events, typically for metrics.
type Observer interface {
	PaymentInitiated(planID string, err error)
	WebhookProcessed(status string, outcome Outcome)
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithQRRenderer sets the fallback used when the provider returns a charge
// without a QR image.
func WithQRRenderer(r QRRenderer) Option {
	return func(s *Service) { s.qr = r }
}

func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

type noopObserver struct{}

func (noopObserver) PaymentInitiated(string, error)    {}
func (noopObserver) WebhookProcessed(string, Outcome) {}
