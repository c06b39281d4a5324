package subscription

import "errors"

var (
	ErrInvalidRequest       = errors.New("invalid subscription request")
	ErrPlanNotFound         = errors.New("subscription plan not found")
	ErrUpstreamPayment      = errors.New("payment provider request failed")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrConfig               = errors.New("payment integration is not configured")
	ErrInvalidPlanCatalog   = errors.New("invalid subscription plan catalog")
	ErrStore                = errors.New("subscription store error")
)
