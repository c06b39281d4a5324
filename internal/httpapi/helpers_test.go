package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/palletepro/palletepro/internal/httpapi"
	"github.com/palletepro/palletepro/internal/metrics"
	"github.com/palletepro/palletepro/internal/records"
	"github.com/palletepro/palletepro/internal/session"
	"github.com/palletepro/palletepro/internal/store/memory"
	"github.com/palletepro/palletepro/internal/store/notify"
	"github.com/palletepro/palletepro/pkg/pushinpay"
	"github.com/palletepro/palletepro/pkg/realtime"
	"github.com/palletepro/palletepro/pkg/subscription"
)

const webhookSecret = "whsec_test"

type fakeProvider struct {
	err    error
	charge subscription.Charge
}

func (p *fakeProvider) Ready() error { return nil }

func (p *fakeProvider) CreatePixCharge(context.Context, subscription.ChargeRequest) (*subscription.Charge, error) {
	if p.err != nil {
		return nil, p.err
	}
	c := p.charge
	return &c, nil
}

type harness struct {
	handler  http.Handler
	subs     subscription.Store
	verifier *session.Verifier
	hub      *realtime.Hub
	provider *fakeProvider
}

type harnessOption func(*httpapi.Deps)

func withWebhook(cfg pushinpay.Config) harnessOption {
	return func(d *httpapi.Deps) { d.Webhook = cfg }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()

	hub := realtime.NewHub(16)
	t.Cleanup(hub.Close)

	subStore := notify.NewSubscriptions(memory.NewSubscriptions(), hub)
	provider := &fakeProvider{charge: subscription.Charge{
		TransactionID: "tx-1",
		PixCode:       "00020126PIX",
		PixCodeBase64: "data:image/png;base64,AAAA",
		Status:        "created",
	}}
	subs := subscription.NewService(subStore, provider, subscription.DefaultPlans())

	recs := records.NewService(
		notify.NewRecords(memory.NewRecords(), hub),
		records.AccessFunc(func(ctx context.Context, userID string) (bool, error) {
			a, err := subs.Access(ctx, userID)
			return a.HasAccess, err
		}),
	)

	verifier, err := session.NewVerifier(session.Config{Secret: "jwt-secret", Audience: "authenticated"})
	require.NoError(t, err)

	deps := httpapi.Deps{
		Subscriptions: subs,
		Records:       recs,
		Verifier:      verifier,
		Hub:           hub,
		Metrics:       metrics.New(),
		Webhook:       pushinpay.Config{WebhookSecret: webhookSecret, SignatureMaxAge: 5 * time.Minute},
		PollInterval:  10 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	return &harness{
		handler:  httpapi.New(deps),
		subs:     subStore,
		verifier: verifier,
		hub:      hub,
		provider: provider,
	}
}

func (h *harness) token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := h.verifier.Issue(session.User{ID: userID}, time.Hour)
	require.NoError(t, err)
	return tok
}

// do sends a request with an optional JSON body and bearer token.
func (h *harness) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

// activate gives userID a paid, active subscription.
func (h *harness) activate(t *testing.T, userID string) {
	t.Helper()
	now := time.Now()
	expires := now.AddDate(0, 0, 30)
	require.NoError(t, h.subs.Save(context.Background(), &subscription.Subscription{
		UserID:    userID,
		Status:    subscription.StatusActive,
		PlanID:    subscription.DefaultPlanID,
		StartedAt: &now,
		ExpiresAt: &expires,
	}))
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Meta  map[string]any  `json:"meta"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details any    `json:"details"`
	} `json:"error"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
