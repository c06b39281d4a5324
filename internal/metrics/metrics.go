// Package metrics exposes Prometheus counters for payments, webhooks,
// realtime fan-out and HTTP traffic on a dedicated registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/palletepro/palletepro/pkg/subscription"
)

const namespace = "palletepro"

// HubStats is the part of the realtime hub reported as gauges.
type HubStats interface {
	Subscribers() int
	Dropped() uint64
}

// Metrics implements subscription.Observer.
type Metrics struct {
	reg *prometheus.Registry

	payments     *prometheus.CounterVec
	webhooks     *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

var _ subscription.Observer = (*Metrics)(nil)

// New registers the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payments",
			Name:      "initiated_total",
			Help:      "PIX charges requested, by plan and result.",
		}, []string{"plan", "result"}),
		webhooks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payments",
			Name:      "webhooks_total",
			Help:      "Payment notifications processed, by reported status and outcome.",
		}, []string{"status", "outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "route"}),
	}

	m.reg.MustRegister(
		m.payments,
		m.webhooks,
		m.httpRequests,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// WatchHub exports the hub's subscriber count and dropped changes.
func (m *Metrics) WatchHub(h HubStats) {
	m.reg.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "subscribers",
			Help:      "Open realtime subscriptions.",
		}, func() float64 { return float64(h.Subscribers()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "dropped_total",
			Help:      "Changes dropped because a subscriber's buffer was full.",
		}, func() float64 { return float64(h.Dropped()) }),
	)
}

func (m *Metrics) PaymentInitiated(planID string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.payments.WithLabelValues(planID, result).Inc()
}

func (m *Metrics) WebhookProcessed(status string, outcome subscription.Outcome) {
	m.webhooks.WithLabelValues(status, string(outcome)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Middleware records request counts and latency labelled by the matched chi
// route pattern, so path parameters do not explode cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
