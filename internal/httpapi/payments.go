package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/palletepro/palletepro/pkg/logger"
	"github.com/palletepro/palletepro/pkg/pushinpay"
	"github.com/palletepro/palletepro/pkg/subscription"
)

type createPaymentRequest struct {
	PlanID string `json:"planId"`
	UserID string `json:"userId"`
}

func (a *API) createPayment(r *http.Request) Response {
	var req createPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		return Error(errors.Join(subscription.ErrInvalidRequest, err))
	}

	charge, err := a.subs.Initiate(r.Context(), req.UserID, req.PlanID)
	if err != nil {
		return Error(err)
	}
	return Raw(charge)
}

type webhookResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
}

func (a *API) pushinpayWebhook(r *http.Request) Response {
	if a.webhook.WebhookSecret == "" {
		return Error(errors.Join(subscription.ErrConfig, pushinpay.ErrMissingWebhookSecret))
	}

	body, err := readBody(r)
	if err != nil {
		return Error(err)
	}

	if a.webhook.VerifyWebhooks {
		if err := pushinpay.Verify(a.webhook.WebhookSecret, body, r.Header, a.webhook.SignatureMaxAge, a.now()); err != nil {
			return Error(err)
		}
	} else {
		a.log.WarnContext(r.Context(), "webhook signature not verified",
			logger.Component("webhook"),
			slog.String("hint", "set PUSHINPAY_WEBHOOK_VERIFY=true"),
		)
	}

	n, err := pushinpay.ParseNotification(r.Header.Get("Content-Type"), body)
	if err != nil {
		return Error(err)
	}

	if _, err := a.subs.HandleWebhook(r.Context(), n); err != nil {
		return Error(err)
	}
	return Raw(webhookResponse{Success: true, Status: n.Status})
}
