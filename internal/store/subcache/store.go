package subcache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/palletepro/palletepro/pkg/logger"
	"github.com/palletepro/palletepro/pkg/subscription"
)

const keyPrefix = "palletepro:subscription:"

// Store wraps a subscription.Store. Cache failures are logged and the call
// falls through to the wrapped store.
type Store struct {
	next    subscription.Store
	backend Backend
	ttl     time.Duration
	log     *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// New wraps next. A non-positive ttl disables caching.
func New(next subscription.Store, backend Backend, ttl time.Duration, opts ...Option) *Store {
	s := &Store{
		next:    next,
		backend: backend,
		ttl:     ttl,
		log:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func key(userID string) string {
	return keyPrefix + userID
}

func (s *Store) GetByUser(ctx context.Context, userID string) (*subscription.Subscription, error) {
	if s.ttl <= 0 {
		return s.next.GetByUser(ctx, userID)
	}

	raw, err := s.backend.Get(ctx, key(userID))
	switch {
	case err == nil:
		var sub subscription.Subscription
		if err := json.Unmarshal(raw, &sub); err == nil {
			return &sub, nil
		}
		s.log.WarnContext(ctx, "dropping undecodable cached subscription", logger.UserID(userID))
	case !errors.Is(err, ErrMiss):
		s.log.WarnContext(ctx, "subscription cache read failed", logger.UserID(userID), logger.Error(err))
	}

	sub, err := s.next.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(sub); err == nil {
		if err := s.backend.Add(ctx, key(userID), raw, s.ttl); err != nil {
			s.log.WarnContext(ctx, "subscription cache fill failed", logger.UserID(userID), logger.Error(err))
		}
	}
	return sub, nil
}

// GetByTransactionID always reads the wrapped store; webhooks must see the
// current row.
func (s *Store) GetByTransactionID(ctx context.Context, transactionID string) (*subscription.Subscription, error) {
	return s.next.GetByTransactionID(ctx, transactionID)
}

// Save writes the row to the wrapped store, then to the cache. When the
// cache write fails the key is dropped instead.
func (s *Store) Save(ctx context.Context, sub *subscription.Subscription) error {
	if err := s.next.Save(ctx, sub); err != nil {
		return err
	}
	if s.ttl <= 0 {
		return nil
	}

	k := key(sub.UserID)
	raw, err := json.Marshal(sub)
	if err == nil {
		err = s.backend.Set(ctx, k, raw, s.ttl)
	}
	if err == nil {
		return nil
	}
	s.log.WarnContext(ctx, "subscription cache write failed", logger.UserID(sub.UserID), logger.Error(err))
	if err := s.backend.Delete(ctx, k); err != nil {
		s.log.WarnContext(ctx, "subscription cache invalidation failed", logger.UserID(sub.UserID), logger.Error(err))
	}
	return nil
}
