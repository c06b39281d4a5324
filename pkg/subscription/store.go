package subscription

import "context"

// Store persists subscription rows, one per user.
type Store interface {
	// GetByUser returns ErrSubscriptionNotFound when the user has no row.
	GetByUser(ctx context.Context, userID string) (*Subscription, error)

	// GetByTransactionID looks a row up by its provider transaction id.
	// Returns ErrSubscriptionNotFound when nothing matches.
	GetByTransactionID(ctx context.Context, transactionID string) (*Subscription, error)

	// Save inserts or replaces the row keyed by UserID.
	Save(ctx context.Context, sub *Subscription) error
}
