package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/palletepro/palletepro/internal/config"
	"github.com/palletepro/palletepro/internal/metrics"
	"github.com/palletepro/palletepro/internal/records"
	"github.com/palletepro/palletepro/internal/session"
	"github.com/palletepro/palletepro/internal/store/memory"
	"github.com/palletepro/palletepro/internal/store/notify"
	"github.com/palletepro/palletepro/internal/store/postgres"
	"github.com/palletepro/palletepro/internal/store/subcache"
	"github.com/palletepro/palletepro/pkg/httpserver"
	"github.com/palletepro/palletepro/pkg/logger"
	"github.com/palletepro/palletepro/pkg/pg"
	"github.com/palletepro/palletepro/pkg/pushinpay"
	"github.com/palletepro/palletepro/pkg/qrcode"
	"github.com/palletepro/palletepro/pkg/realtime"
	"github.com/palletepro/palletepro/pkg/redis"
	"github.com/palletepro/palletepro/pkg/subscription"
)

const (
	hubBufferSize   = 64
	memoryCacheSize = 4096
	qrImageSize     = qrcode.DefaultSize
)

// loadConfig reads configuration and builds the logger for it.
func loadConfig(envFiles []string) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, newLogger(cfg), nil
}

func newLogger(cfg config.Config) *slog.Logger {
	return logger.New(
		logger.WithEnvironment(cfg.Environment, cfg.AppName),
		logger.WithLevelName(cfg.LogLevel),
		logger.WithContextExtractors(requestIDExtractor),
	)
}

func requestIDExtractor(ctx context.Context) (slog.Attr, bool) {
	id := middleware.GetReqID(ctx)
	if id == "" {
		return slog.Attr{}, false
	}
	return slog.String("request_id", id), true
}

// app is the wired application.
type app struct {
	cfg      config.Config
	log      *slog.Logger
	loc      *time.Location
	pool     *pgxpool.Pool
	redis    *goredis.Client
	hub      *realtime.Hub
	metrics  *metrics.Metrics
	plans    subscription.Plans
	subs     *subscription.Service
	records  *records.Service
	verifier *session.Verifier
	checks   []httpserver.Check
}

func loadPlans(cfg config.Config) (subscription.Plans, error) {
	if cfg.PlansFile == "" {
		return subscription.DefaultPlans(), nil
	}
	return subscription.LoadPlansFile(cfg.PlansFile)
}

// newApp connects the configured backends and wires the services.
func newApp(ctx context.Context, cfg config.Config, log *slog.Logger, autoMigrate bool) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	plans, err := loadPlans(cfg)
	if err != nil {
		return nil, err
	}
	verifier, err := session.NewVerifier(cfg.Session)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		log:      log,
		loc:      loc,
		hub:      realtime.NewHub(hubBufferSize),
		metrics:  metrics.New(),
		plans:    plans,
		verifier: verifier,
	}
	a.metrics.WatchHub(a.hub)

	subStore, recStore, err := a.openStores(ctx, autoMigrate)
	if err != nil {
		a.Close()
		return nil, err
	}

	if cfg.PushinPay.WebhookSecret == "" {
		log.WarnContext(ctx, "PUSHINPAY_WEBHOOK_SECRET is not set, webhooks will be rejected")
	} else if !cfg.PushinPay.VerifyWebhooks {
		log.WarnContext(ctx, "webhook signature verification is disabled, set PUSHINPAY_WEBHOOK_VERIFY=true")
	}

	a.subs = subscription.NewService(
		notify.NewSubscriptions(subStore, a.hub),
		pushinpay.New(cfg.PushinPay),
		plans,
		subscription.WithLogger(log.With(logger.Component("subscription"))),
		subscription.WithQRRenderer(qrcode.Renderer(qrImageSize)),
		subscription.WithObserver(a.metrics),
	)

	a.records = records.NewService(
		notify.NewRecords(recStore, a.hub),
		records.AccessFunc(func(ctx context.Context, userID string) (bool, error) {
			acc, err := a.subs.Access(ctx, userID)
			return acc.HasAccess, err
		}),
		records.WithLocation(loc),
		records.WithLowStockThreshold(cfg.LowStockThreshold),
		records.WithRecentLimit(cfg.RecentActivityLimit),
		records.WithLogger(log.With(logger.Component("records"))),
	)
	return a, nil
}

func (a *app) openStores(ctx context.Context, autoMigrate bool) (subscription.Store, records.Store, error) {
	if a.cfg.DataStore == config.StoreMemory {
		a.log.WarnContext(ctx, "using the in-memory data store, data is lost on restart")
		return memory.NewSubscriptions(), memory.NewRecords(), nil
	}

	pool, err := pg.Connect(ctx, a.cfg.Postgres)
	if err != nil {
		return nil, nil, err
	}
	a.pool = pool
	a.checks = append(a.checks, pg.ReadinessCheck(pool))

	if autoMigrate {
		if err := postgres.Migrate(ctx, pool, a.cfg.Postgres, a.log); err != nil {
			return nil, nil, err
		}
	}

	var backend subcache.Backend
	if a.cfg.Redis.Enabled() {
		client, err := redis.Connect(ctx, a.cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		a.redis = client
		a.checks = append(a.checks, redis.ReadinessCheck(client))
		backend = subcache.NewRedisBackend(client)
	} else {
		backend = subcache.NewMemoryBackend(memoryCacheSize)
	}

	subs := subcache.New(postgres.NewSubscriptions(pool), backend, a.cfg.SubscriptionCacheTTL,
		subcache.WithLogger(a.log.With(logger.Component("subcache"))))
	return subs, postgres.NewRecords(pool), nil
}

// Close releases connections. Safe on a partially built app.
func (a *app) Close() {
	if a.hub != nil {
		a.hub.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Error("failed to close redis client", logger.Error(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

// connectPostgres is used by commands that only need the database.
func connectPostgres(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	if cfg.DataStore != config.StorePostgres {
		return nil, errors.New("this command requires DATA_STORE=postgres")
	}
	pool, err := pg.Connect(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return pool, nil
}
