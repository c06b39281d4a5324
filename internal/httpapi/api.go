// Package httpapi is the HTTP surface: the payment functions called by the
// browser client and the provider, the authenticated record and dashboard
// API, the realtime event stream and the operational endpoints.
package httpapi

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/palletepro/palletepro/internal/metrics"
	"github.com/palletepro/palletepro/internal/records"
	"github.com/palletepro/palletepro/internal/session"
	"github.com/palletepro/palletepro/pkg/httpserver"
	"github.com/palletepro/palletepro/pkg/logger"
	"github.com/palletepro/palletepro/pkg/pushinpay"
	"github.com/palletepro/palletepro/pkg/ratelimiter"
	"github.com/palletepro/palletepro/pkg/realtime"
	"github.com/palletepro/palletepro/pkg/subscription"
)

const (
	defaultAwaitTimeout = 30 * time.Second
	maxAwaitTimeout     = 120 * time.Second
)

// Deps are the collaborators of the API. Metrics, RateLimiter and Checks
// are optional.
type Deps struct {
	Subscriptions *subscription.Service
	Records       *records.Service
	Verifier      *session.Verifier
	Hub           *realtime.Hub
	Metrics       *metrics.Metrics
	RateLimiter   *ratelimiter.Limiter
	Webhook       pushinpay.Config
	Checks        []httpserver.Check
	Location      *time.Location
	PollInterval  time.Duration
	Logger        *slog.Logger
	Now           func() time.Time
}

// API holds the handlers.
type API struct {
	subs     *subscription.Service
	records  *records.Service
	verifier *session.Verifier
	hub      *realtime.Hub
	metrics  *metrics.Metrics
	limiter  *ratelimiter.Limiter
	webhook  pushinpay.Config
	checks   []httpserver.Check
	loc      *time.Location
	poll     time.Duration
	log      *slog.Logger
	now      func() time.Time
}

// New builds the router.
func New(d Deps) http.Handler {
	a := &API{
		subs:     d.Subscriptions,
		records:  d.Records,
		verifier: d.Verifier,
		hub:      d.Hub,
		metrics:  d.Metrics,
		limiter:  d.RateLimiter,
		webhook:  d.Webhook,
		checks:   d.Checks,
		loc:      d.Location,
		poll:     d.PollInterval,
		log:      d.Logger,
		now:      d.Now,
	}
	if a.log == nil {
		a.log = logger.Discard()
	}
	if a.loc == nil {
		a.loc = time.UTC
	}
	if a.poll <= 0 {
		a.poll = 3 * time.Second
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a.routes()
}

func (a *API) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.requestLogger)
	r.Use(middleware.Recoverer)
	if a.metrics != nil {
		r.Use(a.metrics.Middleware)
	}
	r.Use(cors)

	r.Get("/health/live", httpserver.Liveness)
	r.Get("/health/ready", httpserver.Readiness(a.log, a.checks...))
	if a.metrics != nil {
		r.Method(http.MethodGet, "/metrics", a.metrics.Handler())
	}

	r.Route("/functions", func(r chi.Router) {
		r.With(a.rateLimit).Post("/create-payment", a.handleFunction(a.createPayment))
		r.Post("/pushinpay-webhook", a.handleFunction(a.pushinpayWebhook))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(session.Middleware(a.verifier, func(w http.ResponseWriter, r *http.Request, err error) {
			info := classifyError(err)
			a.logError(r, err, info)
			writeEnvelopeError(w, r, info)
		}))

		r.Get("/access", a.handle(a.access))
		r.Post("/subscription/trial", a.handle(a.startTrial))
		r.Get("/subscription/await", a.handle(a.awaitActive))

		r.Route("/wood-entries", func(r chi.Router) {
			r.Get("/", a.handle(list(a.records.ListWoodEntries)))
			r.Post("/", a.handle(create(a.records.CreateWoodEntry)))
			r.Delete("/{id}", a.handle(a.deleteRecord(records.TableWoodEntries)))
		})
		r.Route("/pallet-batches", func(r chi.Router) {
			r.Get("/", a.handle(list(a.records.ListPalletBatches)))
			r.Post("/", a.handle(create(a.records.CreatePalletBatch)))
			r.Delete("/{id}", a.handle(a.deleteRecord(records.TablePalletBatches)))
		})
		r.Route("/sales", func(r chi.Router) {
			r.Get("/", a.handle(list(a.records.ListSales)))
			r.Post("/", a.handle(create(a.records.CreateSale)))
			r.Delete("/{id}", a.handle(a.deleteRecord(records.TableSales)))
		})
		r.Route("/truck-entries", func(r chi.Router) {
			r.Get("/", a.handle(list(a.records.ListTruckEntries)))
			r.Post("/", a.handle(create(a.records.CreateTruckEntry)))
			r.Delete("/{id}", a.handle(a.deleteRecord(records.TableTruckEntries)))
		})

		r.Get("/dashboard/stats", a.handle(a.stats))
		r.Get("/dashboard/recent", a.handle(a.recent))
		r.Get("/notifications/low-stock", a.handle(a.lowStock))
		r.Get("/reports/sales.pdf", a.handle(a.salesReport))
		r.Get("/events", a.events)
	})

	return r
}

// requestLogger logs one line per request at debug level, and at info for
// the payment functions.
func (a *API) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		level := slog.LevelDebug
		if strings.HasPrefix(r.URL.Path, "/functions/") {
			level = slog.LevelInfo
		}
		a.log.LogAttrs(r.Context(), level, "http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Duration("duration", time.Since(start)),
			slog.String("remote_ip", r.RemoteAddr),
		)
	})
}

// rateLimit applies the limiter, when configured, keyed by client IP.
func (a *API) rateLimit(next http.Handler) http.Handler {
	if a.limiter == nil {
		return next
	}
	return ratelimiter.Middleware(a.limiter, ratelimiter.ClientIP, func(w http.ResponseWriter, r *http.Request, err error) {
		info := classifyError(err)
		a.logError(r, err, info)
		writeFlatError(w, r, info)
	})(next)
}

// cors opens every route to browser clients and answers preflight requests.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
		h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// currentUser returns the user placed in the context by the session
// middleware.
func currentUser(r *http.Request) (session.User, error) {
	u, ok := session.FromContext(r.Context())
	if !ok {
		return session.User{}, session.ErrUnauthorized
	}
	return u, nil
}
