package subscription

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Service owns the subscription lifecycle for every user.
type Service struct {
	store    Store
	provider Provider
	plans    Plans
	now      func() time.Time
	log      *slog.Logger
	qr       QRRenderer
	observer Observer
}

// NewService panics when store or provider is nil.
func NewService(store Store, provider Provider, plans Plans, opts ...Option) *Service {
	if store == nil {
		panic("subscription: Store is required")
	}
	if provider == nil {
		panic("subscription: Provider is required")
	}

	s := &Service{
		store:    store,
		provider: provider,
		plans:    plans,
		now:      time.Now,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		observer: noopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Plans returns the catalog the service sells.
func (s *Service) Plans() Plans {
	return s.plans
}

// Get returns the user's row or ErrSubscriptionNotFound.
func (s *Service) Get(ctx context.Context, userID string) (*Subscription, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidRequest)
	}
	return s.store.GetByUser(ctx, userID)
}

// Access evaluates the user's access at the current time. A user without a
// row has no access.
func (s *Service) Access(ctx context.Context, userID string) (Access, error) {
	sub, err := s.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			return Evaluate(nil, s.now()), nil
		}
		return Access{}, err
	}
	return Evaluate(sub, s.now()), nil
}

// StartTrial opens the free trial for a user that has no row yet. An
// existing row is returned unchanged.
func (s *Service) StartTrial(ctx context.Context, userID string) (*Subscription, error) {
	existing, err := s.Get(ctx, userID)
	switch {
	case err == nil:
		return existing, nil
	case !errors.Is(err, ErrSubscriptionNotFound):
		return nil, err
	}

	now := s.now()
	sub := &Subscription{
		UserID:      userID,
		Status:      StatusTrial,
		TrialEndsAt: timePtr(now.AddDate(0, 0, s.plans.TrialDays)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Save(ctx, sub); err != nil {
		return nil, errors.Join(ErrStore, err)
	}

	s.log.InfoContext(ctx, "trial started",
		slog.String("user_id", userID),
		slog.Time("trial_ends_at", *sub.TrialEndsAt),
	)
	return sub, nil
}

// Initiate records a pending subscription for the plan and opens a PIX
// charge for it. The pending row is written before the provider call, so a
// provider failure leaves it pending without a transaction id.
func (s *Service) Initiate(ctx context.Context, userID, planID string) (charge *Charge, err error) {
	defer func() { s.observer.PaymentInitiated(planID, err) }()

	if strings.TrimSpace(userID) == "" || strings.TrimSpace(planID) == "" {
		return nil, fmt.Errorf("%w: missing required parameters", ErrInvalidRequest)
	}
	plan, ok := s.plans.Get(planID)
	if !ok {
		return nil, errors.Join(ErrInvalidRequest, ErrPlanNotFound)
	}
	if err := s.provider.Ready(); err != nil {
		return nil, errors.Join(ErrConfig, err)
	}

	log := s.log.With(slog.String("user_id", userID), slog.String("plan_id", planID))

	sub, err := s.store.GetByUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrSubscriptionNotFound) {
			return nil, errors.Join(ErrStore, err)
		}
		sub = &Subscription{UserID: userID, CreatedAt: s.now()}
	}
	sub.Status = StatusPending
	sub.PlanID = plan.ID
	sub.Amount = plan.Amount
	sub.ProviderTransactionID = ""
	sub.UpdatedAt = s.now()
	if err := s.store.Save(ctx, sub); err != nil {
		return nil, errors.Join(ErrStore, err)
	}

	charge, err = s.provider.CreatePixCharge(ctx, ChargeRequest{
		UserID: userID,
		PlanID: plan.ID,
		Amount: plan.Amount,
	})
	if err != nil {
		log.ErrorContext(ctx, "pix charge failed", slog.Any("error", err))
		if errors.Is(err, ErrUpstreamPayment) {
			return nil, err
		}
		return nil, errors.Join(ErrUpstreamPayment, err)
	}
	if charge.TransactionID == "" {
		return nil, fmt.Errorf("%w: provider returned no transaction id", ErrUpstreamPayment)
	}

	if charge.PixCodeBase64 == "" && charge.PixCode != "" && s.qr != nil {
		img, err := s.qr(charge.PixCode)
		if err != nil {
			log.WarnContext(ctx, "qr fallback failed", slog.Any("error", err))
		} else {
			charge.PixCodeBase64 = img
		}
	}

	sub.ProviderTransactionID = charge.TransactionID
	sub.UpdatedAt = s.now()
	if err := s.store.Save(ctx, sub); err != nil {
		return nil, errors.Join(ErrStore, err)
	}

	log.InfoContext(ctx, "pix charge created",
		slog.String("transaction_id", charge.TransactionID),
		slog.String("status", charge.Status),
	)
	return charge, nil
}

// HandleWebhook applies a provider notification to the row it references.
// Unknown statuses, and statuses that do not apply to the row's current
// state, are acknowledged with OutcomeIgnored.
func (s *Service) HandleWebhook(ctx context.Context, n Notification) (outcome Outcome, err error) {
	defer func() {
		if err == nil {
			s.observer.WebhookProcessed(normalizeEvent(n.Status), outcome)
		}
	}()

	if strings.TrimSpace(n.TransactionID) == "" {
		return "", fmt.Errorf("%w: missing transaction id", ErrInvalidRequest)
	}

	log := s.log.With(slog.String("transaction_id", n.TransactionID), slog.String("status", n.Status))

	sub, err := s.store.GetByTransactionID(ctx, n.TransactionID)
	if err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			log.WarnContext(ctx, "webhook for unknown transaction")
			return "", err
		}
		return "", errors.Join(ErrStore, err)
	}

	next, outcome := applyNotification(sub, n.Status, s.plans.periodDays(sub.PlanID), s.now())
	if outcome == OutcomeIgnored {
		log.InfoContext(ctx, "webhook status without transition",
			slog.String("user_id", sub.UserID),
			slog.String("current_status", string(sub.Status)),
		)
		return outcome, nil
	}

	if err := s.store.Save(ctx, next); err != nil {
		return "", errors.Join(ErrStore, err)
	}

	log.InfoContext(ctx, "subscription updated from webhook",
		slog.String("user_id", next.UserID),
		slog.String("outcome", string(outcome)),
		slog.String("new_status", string(next.Status)),
	)
	return outcome, nil
}

// AwaitActive polls the user's row every interval until a paid subscription
// is active, then returns its Access. It returns ctx.Err() when the context
// ends first.
func (s *Service) AwaitActive(ctx context.Context, userID string, interval time.Duration) (Access, error) {
	if interval <= 0 {
		interval = 3 * time.Second
	}

	check := func() (Access, bool, error) {
		a, err := s.Access(ctx, userID)
		if err != nil {
			return Access{}, false, err
		}
		return a, a.IsSubscriptionActive, nil
	}

	if a, done, err := check(); err != nil || done {
		return a, err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return Access{}, ctx.Err()
		case <-ticker.C:
			if a, done, err := check(); err != nil || done {
				return a, err
			}
		}
	}
}
