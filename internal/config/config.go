// Package config loads the application settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/palletepro/palletepro/internal/session"
	"github.com/palletepro/palletepro/pkg/httpserver"
	"github.com/palletepro/palletepro/pkg/pg"
	"github.com/palletepro/palletepro/pkg/pushinpay"
	"github.com/palletepro/palletepro/pkg/ratelimiter"
	"github.com/palletepro/palletepro/pkg/redis"
)

// Data store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

var (
	ErrParsingConfig   = errors.New("failed to parse environment variables into config")
	ErrUnknownStore    = errors.New("unknown DATA_STORE, expected postgres or memory")
	ErrMissingDatabase = errors.New("DATABASE_URL is required when DATA_STORE=postgres")
)

// Config is the full application configuration.
type Config struct {
	AppName     string `env:"APP_NAME" envDefault:"palletepro"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL"`

	DataStore string `env:"DATA_STORE" envDefault:"postgres"`
	Timezone  string `env:"APP_TIMEZONE" envDefault:"America/Sao_Paulo"`

	PlansFile            string          `env:"PLANS_FILE"`
	LowStockThreshold    decimal.Decimal `env:"LOW_STOCK_THRESHOLD" envDefault:"100"`
	RecentActivityLimit  int             `env:"RECENT_ACTIVITY_LIMIT" envDefault:"5"`
	PaymentPollInterval  time.Duration   `env:"PAYMENT_POLL_INTERVAL" envDefault:"3s"`
	SubscriptionCacheTTL time.Duration   `env:"SUBSCRIPTION_CACHE_TTL" envDefault:"1m"`

	HTTP      httpserver.Config
	Postgres  pg.Config
	Redis     redis.Config
	PushinPay pushinpay.Config
	Session   session.Config
	RateLimit ratelimiter.Config
}

// Load reads the optional .env files and parses the environment.
// Missing .env files are not an error.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Location resolves Timezone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Validate checks cross-field requirements that struct tags cannot express.
func (c Config) Validate() error {
	switch c.DataStore {
	case StoreMemory:
	case StorePostgres:
		if c.Postgres.ConnectionString == "" {
			return ErrMissingDatabase
		}
	default:
		return ErrUnknownStore
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// IsProduction reports whether the app runs with production defaults.
func (c Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}
