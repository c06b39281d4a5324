// Package memory implements the stores in process memory. It backs tests
// and DATA_STORE=memory local runs; nothing survives a restart.
package memory

import (
	"context"
	"sync"

	"github.com/palletepro/palletepro/pkg/subscription"
)

// Subscriptions is a subscription.Store.
type Subscriptions struct {
	mu   sync.RWMutex
	rows map[string]*subscription.Subscription
}

func NewSubscriptions() *Subscriptions {
	return &Subscriptions{rows: make(map[string]*subscription.Subscription)}
}

func (s *Subscriptions) GetByUser(_ context.Context, userID string) (*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if row, ok := s.rows[userID]; ok {
		return row.Clone(), nil
	}
	return nil, subscription.ErrSubscriptionNotFound
}

func (s *Subscriptions) GetByTransactionID(_ context.Context, transactionID string) (*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, row := range s.rows {
		if transactionID != "" && row.ProviderTransactionID == transactionID {
			return row.Clone(), nil
		}
	}
	return nil, subscription.ErrSubscriptionNotFound
}

func (s *Subscriptions) Save(_ context.Context, sub *subscription.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[sub.UserID] = sub.Clone()
	return nil
}
