package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/palletepro/palletepro/internal/records"
	"github.com/palletepro/palletepro/internal/session"
	"github.com/palletepro/palletepro/pkg/logger"
	"github.com/palletepro/palletepro/pkg/pushinpay"
	"github.com/palletepro/palletepro/pkg/ratelimiter"
	"github.com/palletepro/palletepro/pkg/subscription"
)

var (
	ErrUnsupportedMediaType = errors.New("content type must be application/json")
	ErrMalformedBody        = errors.New("malformed request body")
	ErrInvalidQuery         = errors.New("invalid query parameter")
	ErrNilResponse          = errors.New("handler returned nil response")
)

// statusClientClosedRequest is the de facto code for a request abandoned by
// the client before a response was produced.
const statusClientClosedRequest = 499

// errorInfo is the classified form of an error at the HTTP edge.
type errorInfo struct {
	Status   int
	Code     string
	Message  string
	Details  any
	LogLevel slog.Level
}

// classifyError maps domain errors to HTTP status codes. Details carry the
// underlying error text for client errors and configuration problems only.
func classifyError(err error) errorInfo {
	info := errorInfo{
		Status:   http.StatusInternalServerError,
		Code:     "internal",
		Message:  "internal server error",
		LogLevel: slog.LevelError,
	}

	var verr *records.ValidationError
	switch {
	case errors.As(err, &verr):
		info.Status, info.Code, info.Message = http.StatusUnprocessableEntity, "invalid_record", records.ErrInvalidRecord.Error()
		info.Details = verr.Fields
	case errors.Is(err, subscription.ErrInvalidRequest):
		info.Status, info.Code, info.Message = http.StatusBadRequest, "invalid_request", "invalid request"
	case errors.Is(err, ErrMalformedBody), errors.Is(err, ErrInvalidQuery), errors.Is(err, pushinpay.ErrMalformedNotification):
		info.Status, info.Code, info.Message = http.StatusBadRequest, "invalid_request", "invalid request"
	case errors.Is(err, ErrUnsupportedMediaType):
		info.Status, info.Code, info.Message = http.StatusUnsupportedMediaType, "unsupported_media_type", ErrUnsupportedMediaType.Error()
	case errors.Is(err, pushinpay.ErrUnsupportedContentType):
		info.Status, info.Code, info.Message = http.StatusUnsupportedMediaType, "unsupported_media_type", pushinpay.ErrUnsupportedContentType.Error()
	case errors.Is(err, subscription.ErrUpstreamPayment):
		info.Status, info.Code, info.Message = http.StatusBadGateway, "upstream_payment", "payment provider error"
	case errors.Is(err, subscription.ErrSubscriptionNotFound):
		info.Status, info.Code, info.Message = http.StatusNotFound, "subscription_not_found", subscription.ErrSubscriptionNotFound.Error()
	case errors.Is(err, subscription.ErrConfig):
		info.Code, info.Message = "configuration", "service is not configured"
	case errors.Is(err, pushinpay.ErrInvalidSignature), errors.Is(err, pushinpay.ErrMissingSignature):
		info.Status, info.Code, info.Message = http.StatusUnauthorized, "invalid_signature", pushinpay.ErrInvalidSignature.Error()
	case errors.Is(err, session.ErrUnauthorized):
		info.Status, info.Code, info.Message = http.StatusUnauthorized, "unauthorized", session.ErrUnauthorized.Error()
	case errors.Is(err, records.ErrAccessDenied):
		info.Status, info.Code, info.Message = http.StatusPaymentRequired, "access_denied", records.ErrAccessDenied.Error()
	case errors.Is(err, records.ErrRecordNotFound):
		info.Status, info.Code, info.Message = http.StatusNotFound, "record_not_found", records.ErrRecordNotFound.Error()
	case errors.Is(err, ratelimiter.ErrLimited):
		info.Status, info.Code, info.Message = http.StatusTooManyRequests, "rate_limited", ratelimiter.ErrLimited.Error()
	case errors.Is(err, context.Canceled):
		info.Status, info.Code, info.Message = statusClientClosedRequest, "canceled", "request canceled"
		info.LogLevel = slog.LevelDebug
		return info
	}

	switch {
	case info.Status < http.StatusInternalServerError:
		info.LogLevel = slog.LevelWarn
		if info.Details == nil {
			info.Details = err.Error()
		}
	case info.Code == "configuration", info.Code == "upstream_payment":
		info.Details = err.Error()
	}
	return info
}

// envelopeError is the error member of the /api envelope.
type envelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// flatError is the error body of the /functions endpoints.
type flatError struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// errorWriter renders a classified error.
type errorWriter func(w http.ResponseWriter, r *http.Request, info errorInfo)

func writeEnvelopeError(w http.ResponseWriter, _ *http.Request, info errorInfo) {
	writeJSON(w, info.Status, envelope{Error: &envelopeError{
		Code:    info.Code,
		Message: info.Message,
		Details: info.Details,
	}})
}

func writeFlatError(w http.ResponseWriter, _ *http.Request, info errorInfo) {
	writeJSON(w, info.Status, flatError{Error: info.Message, Details: info.Details})
}

func (a *API) logError(r *http.Request, err error, info errorInfo) {
	a.log.LogAttrs(r.Context(), info.LogLevel, "request error",
		logger.Error(err),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Int("status_code", info.Status),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		logger.Component("httpapi"),
	)
}
