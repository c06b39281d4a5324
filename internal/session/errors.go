package session

import "errors"

var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrMissingSecret = errors.New("JWT_SECRET is not configured")
)
