package redis

import "errors"

var (
	ErrMissingURL  = errors.New("REDIS_URL is not set")
	ErrInvalidURL  = errors.New("invalid REDIS_URL")
	ErrNotReady    = errors.New("redis did not answer within REDIS_CONNECT_TIMEOUT")
	ErrUnavailable = errors.New("subscription cache redis is unavailable")
)
