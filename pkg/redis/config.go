package redis

import "time"

// Config holds the Redis connection settings. An empty URL disables Redis.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL"`
	RetryAttempts  uint64        `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"1s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"15s"`
}

// Enabled reports whether a connection URL is configured.
func (c Config) Enabled() bool {
	return c.ConnectionURL != ""
}
