package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/palletepro/palletepro/pkg/pg"
	"github.com/palletepro/palletepro/pkg/subscription"
)

// Subscriptions is a subscription.Store.
type Subscriptions struct {
	pool *pgxpool.Pool
}

func NewSubscriptions(pool *pgxpool.Pool) *Subscriptions {
	return &Subscriptions{pool: pool}
}

const subscriptionColumns = `user_id, status, plan_id, amount, trial_ends_at, expires_at, started_at,
	COALESCE(provider_transaction_id, ''), created_at, updated_at`

func scanSubscription(row pgx.Row) (*subscription.Subscription, error) {
	var (
		s      subscription.Subscription
		status string
	)
	err := row.Scan(&s.UserID, &status, &s.PlanID, &s.Amount, &s.TrialEndsAt, &s.ExpiresAt, &s.StartedAt,
		&s.ProviderTransactionID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, subscription.ErrSubscriptionNotFound
		}
		return nil, err
	}
	s.Status = subscription.Status(status)
	return &s, nil
}

func (s *Subscriptions) GetByUser(ctx context.Context, userID string) (*subscription.Subscription, error) {
	return scanSubscription(s.pool.QueryRow(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE user_id = $1`, userID))
}

func (s *Subscriptions) GetByTransactionID(ctx context.Context, transactionID string) (*subscription.Subscription, error) {
	return scanSubscription(s.pool.QueryRow(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE provider_transaction_id = $1`, transactionID))
}

func (s *Subscriptions) Save(ctx context.Context, sub *subscription.Subscription) error {
	now := time.Now()
	created := sub.CreatedAt
	if created.IsZero() {
		created = now
	}
	updated := sub.UpdatedAt
	if updated.IsZero() {
		updated = now
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO subscriptions (user_id, status, plan_id, amount, trial_ends_at, expires_at, started_at,
			provider_transaction_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10)
		ON CONFLICT (user_id) DO UPDATE SET
			status = EXCLUDED.status,
			plan_id = EXCLUDED.plan_id,
			amount = EXCLUDED.amount,
			trial_ends_at = EXCLUDED.trial_ends_at,
			expires_at = EXCLUDED.expires_at,
			started_at = EXCLUDED.started_at,
			provider_transaction_id = EXCLUDED.provider_transaction_id,
			updated_at = EXCLUDED.updated_at`,
		sub.UserID, string(sub.Status), sub.PlanID, sub.Amount, sub.TrialEndsAt, sub.ExpiresAt, sub.StartedAt,
		sub.ProviderTransactionID, created, updated,
	)
	return err
}
