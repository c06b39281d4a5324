package subscription_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/palletepro/palletepro/pkg/subscription"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Ready() error {
	args := m.Called()
	return args.Error(0)
}

func (m *mockProvider) CreatePixCharge(ctx context.Context, req subscription.ChargeRequest) (*subscription.Charge, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Charge), args.Error(1)
}

// fakeStore keeps rows in memory and counts saves.
type fakeStore struct {
	mu    sync.Mutex
	rows  map[string]*subscription.Subscription
	saves int
	err   error
}

func newFakeStore(rows ...*subscription.Subscription) *fakeStore {
	s := &fakeStore{rows: map[string]*subscription.Subscription{}}
	for _, r := range rows {
		s.rows[r.UserID] = r.Clone()
	}
	return s
}

func (s *fakeStore) GetByUser(_ context.Context, userID string) (*subscription.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if r, ok := s.rows[userID]; ok {
		return r.Clone(), nil
	}
	return nil, subscription.ErrSubscriptionNotFound
}

func (s *fakeStore) GetByTransactionID(_ context.Context, txID string) (*subscription.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.ProviderTransactionID == txID {
			return r.Clone(), nil
		}
	}
	return nil, subscription.ErrSubscriptionNotFound
}

func (s *fakeStore) Save(_ context.Context, sub *subscription.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	s.rows[sub.UserID] = sub.Clone()
	return nil
}

func (s *fakeStore) row(userID string) *subscription.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows[userID].Clone()
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var testNow = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

type recordingObserver struct {
	mu        sync.Mutex
	initiated []error
	webhooks  []subscription.Outcome
}

func (o *recordingObserver) PaymentInitiated(_ string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.initiated = append(o.initiated, err)
}

func (o *recordingObserver) WebhookProcessed(_ string, outcome subscription.Outcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.webhooks = append(o.webhooks, outcome)
}

func TestService_Initiate(t *testing.T) {
	t.Parallel()

	t.Run("stores pending row then transaction id", func(t *testing.T) {
		t.Parallel()
		store := newFakeStore()
		provider := &mockProvider{}
		provider.On("Ready").Return(nil)
		provider.On("CreatePixCharge", mock.Anything, subscription.ChargeRequest{UserID: "u1", PlanID: "monthly_100", Amount: 10000}).
			Run(func(mock.Arguments) {
				row := store.row("u1")
				require.NotNil(t, row, "pending row must exist before the provider call")
				assert.Equal(t, subscription.StatusPending, row.Status)
				assert.Empty(t, row.ProviderTransactionID)
			}).
			Return(&subscription.Charge{TransactionID: "tx1", PixCode: "000201pix", PixCodeBase64: "iVBOR", Status: "created"}, nil)

		obs := &recordingObserver{}
		svc := subscription.NewService(store, provider, subscription.DefaultPlans(), subscription.WithClock(fixedClock(testNow)), subscription.WithObserver(obs))

		charge, err := svc.Initiate(context.Background(), "u1", "monthly_100")
		require.NoError(t, err)
		assert.Equal(t, &subscription.Charge{TransactionID: "tx1", PixCode: "000201pix", PixCodeBase64: "iVBOR", Status: "created"}, charge)

		row := store.row("u1")
		assert.Equal(t, subscription.StatusPending, row.Status)
		assert.Equal(t, "tx1", row.ProviderTransactionID)
		assert.Equal(t, "monthly_100", row.PlanID)
		assert.Equal(t, int64(10000), row.Amount)
		assert.Equal(t, 2, store.saves)
		assert.Equal(t, []error{nil}, obs.initiated)
		provider.AssertExpectations(t)
	})

	t.Run("provider failure leaves row pending without transaction id", func(t *testing.T) {
		t.Parallel()
		store := newFakeStore(&subscription.Subscription{UserID: "u1", Status: subscription.StatusPending, ProviderTransactionID: "old-tx"})
		provider := &mockProvider{}
		provider.On("Ready").Return(nil)
		provider.On("CreatePixCharge", mock.Anything, mock.Anything).Return(nil, errors.New("gateway timeout"))

		svc := subscription.NewService(store, provider, subscription.DefaultPlans())
		charge, err := svc.Initiate(context.Background(), "u1", "monthly_100")
		assert.Nil(t, charge)
		require.ErrorIs(t, err, subscription.ErrUpstreamPayment)
		assert.Contains(t, err.Error(), "gateway timeout")

		row := store.row("u1")
		assert.Equal(t, subscription.StatusPending, row.Status)
		assert.Empty(t, row.ProviderTransactionID)
	})

	t.Run("missing parameters", func(t *testing.T) {
		t.Parallel()
		store := newFakeStore()
		provider := &mockProvider{}
		svc := subscription.NewService(store, provider, subscription.DefaultPlans())

		for _, args := range [][2]string{{"", "monthly_100"}, {"u1", ""}, {"  ", "  "}} {
			_, err := svc.Initiate(context.Background(), args[0], args[1])
			assert.ErrorIs(t, err, subscription.ErrInvalidRequest)
		}
		assert.Zero(t, store.saves)
		provider.AssertNotCalled(t, "CreatePixCharge", mock.Anything, mock.Anything)
	})

	t.Run("unknown plan", func(t *testing.T) {
		t.Parallel()
		svc := subscription.NewService(newFakeStore(), &mockProvider{}, subscription.DefaultPlans())
		_, err := svc.Initiate(context.Background(), "u1", "yearly_999")
		assert.ErrorIs(t, err, subscription.ErrInvalidRequest)
		assert.ErrorIs(t, err, subscription.ErrPlanNotFound)
	})

	t.Run("unconfigured provider writes nothing", func(t *testing.T) {
		t.Parallel()
		store := newFakeStore()
		provider := &mockProvider{}
		provider.On("Ready").Return(errors.New("token missing"))

		svc := subscription.NewService(store, provider, subscription.DefaultPlans())
		_, err := svc.Initiate(context.Background(), "u1", "monthly_100")
		assert.ErrorIs(t, err, subscription.ErrConfig)
		assert.Zero(t, store.saves)
	})

	t.Run("renders qr when provider sends none", func(t *testing.T) {
		t.Parallel()
		provider := &mockProvider{}
		provider.On("Ready").Return(nil)
		provider.On("CreatePixCharge", mock.Anything, mock.Anything).
			Return(&subscription.Charge{TransactionID: "tx2", PixCode: "000201pix", Status: "created"}, nil)

		svc := subscription.NewService(newFakeStore(), provider, subscription.DefaultPlans(),
			subscription.WithQRRenderer(func(code string) (string, error) { return "data:image/png;base64," + code, nil }))
		charge, err := svc.Initiate(context.Background(), "u1", "monthly_100")
		require.NoError(t, err)
		assert.Equal(t, "data:image/png;base64,000201pix", charge.PixCodeBase64)
	})

	t.Run("keeps trial dates of existing row", func(t *testing.T) {
		t.Parallel()
		trialEnd := testNow.Add(48 * time.Hour)
		store := newFakeStore(&subscription.Subscription{UserID: "u1", Status: subscription.StatusTrial, TrialEndsAt: &trialEnd, CreatedAt: testNow.Add(-5 * 24 * time.Hour)})
		provider := &mockProvider{}
		provider.On("Ready").Return(nil)
		provider.On("CreatePixCharge", mock.Anything, mock.Anything).Return(&subscription.Charge{TransactionID: "tx3"}, nil)

		svc := subscription.NewService(store, provider, subscription.DefaultPlans(), subscription.WithClock(fixedClock(testNow)))
		_, err := svc.Initiate(context.Background(), "u1", "monthly_100")
		require.NoError(t, err)

		row := store.row("u1")
		assert.Equal(t, subscription.StatusPending, row.Status)
		require.NotNil(t, row.TrialEndsAt)
		assert.True(t, trialEnd.Equal(*row.TrialEndsAt))
		assert.True(t, testNow.Add(-5*24*time.Hour).Equal(row.CreatedAt))
	})
}

func TestService_HandleWebhook(t *testing.T) {
	t.Parallel()

	pending := func() *subscription.Subscription {
		trialEnd := testNow.Add(24 * time.Hour)
		return &subscription.Subscription{
			UserID:                "u1",
			Status:                subscription.StatusPending,
			PlanID:                "monthly_100",
			TrialEndsAt:           &trialEnd,
			ProviderTransactionID: "tx1",
		}
	}

	t.Run("paid activates for thirty days", func(t *testing.T) {
		t.Parallel()
		store := newFakeStore(pending())
		obs := &recordingObserver{}
		svc := subscription.NewService(store, &mockProvider{}, subscription.DefaultPlans(), subscription.WithClock(fixedClock(testNow)), subscription.WithObserver(obs))

		outcome, err := svc.HandleWebhook(context.Background(), subscription.Notification{TransactionID: "tx1", Status: "paid"})
		require.NoError(t, err)
		assert.Equal(t, subscription.OutcomeActivated, outcome)

		row := store.row("u1")
		assert.Equal(t, subscription.StatusActive, row.Status)
		require.NotNil(t, row.ExpiresAt)
		assert.True(t, testNow.AddDate(0, 0, 30).Equal(*row.ExpiresAt))
		require.NotNil(t, row.StartedAt)
		assert.True(t, testNow.Equal(*row.StartedAt))
		assert.Nil(t, row.TrialEndsAt)
		assert.Equal(t, "tx1", row.ProviderTransactionID)
		assert.Equal(t, []subscription.Outcome{subscription.OutcomeActivated}, obs.webhooks)

		a, err := svc.Access(context.Background(), "u1")
		require.NoError(t, err)
		assert.True(t, a.HasAccess)
		assert.True(t, a.IsSubscriptionActive)
		assert.Equal(t, 30, a.DaysRemaining)
	})

	t.Run("redelivered paid re-extends the window", func(t *testing.T) {
		t.Parallel()
		store := newFakeStore(pending())
		now := testNow
		svc := subscription.NewService(store, &mockProvider{}, subscription.DefaultPlans(), subscription.WithClock(func() time.Time { return now }))

		_, err := svc.HandleWebhook(context.Background(), subscription.Notification{TransactionID: "tx1", Status: "paid"})
		require.NoError(t, err)

		now = testNow.Add(2 * 24 * time.Hour)
		outcome, err := svc.HandleWebhook(context.Background(), subscription.Notification{TransactionID: "tx1", Status: "PAID"})
		require.NoError(t, err)
		assert.Equal(t, subscription.OutcomeActivated, outcome)

		row := store.row("u1")
		assert.Equal(t, subscription.StatusActive, row.Status)
		assert.True(t, now.AddDate(0, 0, 30).Equal(*row.ExpiresAt))
	})

	t.Run("expired and canceled deactivate", func(t *testing.T) {
		t.Parallel()
		for _, status := range []string{"expired", "canceled"} {
			store := newFakeStore(pending())
			svc := subscription.NewService(store, &mockProvider{}, subscription.DefaultPlans())

			outcome, err := svc.HandleWebhook(context.Background(), subscription.Notification{TransactionID: "tx1", Status: status})
			require.NoError(t, err, status)
			assert.Equal(t, subscription.OutcomeDeactivated, outcome, status)

			row := store.row("u1")
			assert.Equal(t, subscription.StatusInactive, row.Status, status)
			assert.Empty(t, row.ProviderTransactionID, status)
		}
	})

	t.Run("unknown status is acknowledged without change", func(t *testing.T) {
		t.Parallel()
		store := newFakeStore(pending())
		svc := subscription.NewService(store, &mockProvider{}, subscription.DefaultPlans())

		outcome, err := svc.HandleWebhook(context.Background(), subscription.Notification{TransactionID: "tx1", Status: "created"})
		require.NoError(t, err)
		assert.Equal(t, subscription.OutcomeIgnored, outcome)
		assert.Zero(t, store.saves)
		assert.Equal(t, subscription.StatusPending, store.row("u1").Status)
	})

	t.Run("unmatched transaction is not found", func(t *testing.T) {
		t.Parallel()
		store := newFakeStore(pending())
		svc := subscription.NewService(store, &mockProvider{}, subscription.DefaultPlans())

		_, err := svc.HandleWebhook(context.Background(), subscription.Notification{TransactionID: "tx-missing", Status: "paid"})
		assert.ErrorIs(t, err, subscription.ErrSubscriptionNotFound)
		assert.Zero(t, store.saves)
		assert.Equal(t, subscription.StatusPending, store.row("u1").Status)
	})

	t.Run("missing transaction id", func(t *testing.T) {
		t.Parallel()
		svc := subscription.NewService(newFakeStore(), &mockProvider{}, subscription.DefaultPlans())
		_, err := svc.HandleWebhook(context.Background(), subscription.Notification{Status: "paid"})
		assert.ErrorIs(t, err, subscription.ErrInvalidRequest)
	})
}

func TestService_StartTrial(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := subscription.NewService(store, &mockProvider{}, subscription.DefaultPlans(), subscription.WithClock(fixedClock(testNow)))

	sub, err := svc.StartTrial(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusTrial, sub.Status)
	assert.True(t, testNow.AddDate(0, 0, 7).Equal(*sub.TrialEndsAt))

	again, err := svc.StartTrial(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, sub.TrialEndsAt.Equal(*again.TrialEndsAt))
	assert.Equal(t, 1, store.saves)

	a, err := svc.Access(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, subscription.Access{HasAccess: true, IsTrialActive: true, DaysRemaining: 7}, a)
}

func TestService_StartTrialKeepsPaidRow(t *testing.T) {
	t.Parallel()

	exp := testNow.Add(10 * 24 * time.Hour)
	store := newFakeStore(&subscription.Subscription{UserID: "u1", Status: subscription.StatusActive, ExpiresAt: &exp})
	svc := subscription.NewService(store, &mockProvider{}, subscription.DefaultPlans(), subscription.WithClock(fixedClock(testNow)))

	sub, err := svc.StartTrial(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusActive, sub.Status)
	assert.Zero(t, store.saves)
}

func TestService_Access(t *testing.T) {
	t.Parallel()

	t.Run("no row means no access", func(t *testing.T) {
		t.Parallel()
		svc := subscription.NewService(newFakeStore(), &mockProvider{}, subscription.DefaultPlans())
		a, err := svc.Access(context.Background(), "nobody")
		require.NoError(t, err)
		assert.Equal(t, subscription.Access{}, a)
	})

	t.Run("store failure surfaces", func(t *testing.T) {
		t.Parallel()
		store := newFakeStore()
		store.err = errors.New("connection reset")
		svc := subscription.NewService(store, &mockProvider{}, subscription.DefaultPlans())
		_, err := svc.Access(context.Background(), "u1")
		assert.EqualError(t, err, "connection reset")
	})
}

func TestService_AwaitActive(t *testing.T) {
	t.Parallel()

	t.Run("returns once webhook activates", func(t *testing.T) {
		t.Parallel()
		store := newFakeStore(&subscription.Subscription{UserID: "u1", Status: subscription.StatusPending, PlanID: "monthly_100", ProviderTransactionID: "tx1"})
		svc := subscription.NewService(store, &mockProvider{}, subscription.DefaultPlans())

		go func() {
			time.Sleep(30 * time.Millisecond)
			_, _ = svc.HandleWebhook(context.Background(), subscription.Notification{TransactionID: "tx1", Status: "paid"})
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		a, err := svc.AwaitActive(ctx, "u1", 10*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, a.IsSubscriptionActive)
	})

	t.Run("stops when context ends", func(t *testing.T) {
		t.Parallel()
		store := newFakeStore(&subscription.Subscription{UserID: "u1", Status: subscription.StatusPending})
		svc := subscription.NewService(store, &mockProvider{}, subscription.DefaultPlans())

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err := svc.AwaitActive(ctx, "u1", 10*time.Millisecond)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("trial does not count as paid", func(t *testing.T) {
		t.Parallel()
		end := time.Now().Add(48 * time.Hour)
		store := newFakeStore(&subscription.Subscription{UserID: "u1", Status: subscription.StatusTrial, TrialEndsAt: &end})
		svc := subscription.NewService(store, &mockProvider{}, subscription.DefaultPlans())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()
		_, err := svc.AwaitActive(ctx, "u1", 5*time.Millisecond)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
