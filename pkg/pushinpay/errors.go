package pushinpay

import "errors"

var (
	ErrMissingToken         = errors.New("pushinpay token not configured")
	ErrMissingWebhookSecret = errors.New("pushinpay webhook secret not configured")
	ErrUnexpectedResponse   = errors.New("unexpected pushinpay response")
	ErrInvalidSignature     = errors.New("invalid webhook signature")
	ErrMissingSignature     = errors.New("missing webhook signature headers")

	ErrUnsupportedContentType = errors.New("webhook body must be form-encoded or JSON")
	ErrMalformedNotification  = errors.New("malformed webhook body")
)
