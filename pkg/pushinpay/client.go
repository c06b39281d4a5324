package pushinpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/palletepro/palletepro/pkg/subscription"
)

const cashInPath = "/api/pix/cashIn"

// maxErrorBody caps how much of a failed response is kept in the error.
const maxErrorBody = 2048

// Client talks to the PushinPay REST API.
type Client struct {
	cfg  Config
	http *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the pooled default client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// New returns a Client. Missing credentials are reported by Ready, not here,
// so the server can start without payment configuration.
func New(cfg Config, opts ...Option) *Client {
	hc := cleanhttp.DefaultPooledClient()
	hc.Timeout = cfg.Timeout
	c := &Client{cfg: cfg, http: hc}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ready reports missing credentials.
func (c *Client) Ready() error {
	if strings.TrimSpace(c.cfg.Token) == "" {
		return ErrMissingToken
	}
	return nil
}

type cashInRequest struct {
	Value      int64  `json:"value"`
	WebhookURL string `json:"webhook_url,omitempty"`
}

type cashInResponse struct {
	ID           string `json:"id"`
	QRCode       string `json:"qr_code"`
	QRCodeBase64 string `json:"qr_code_base64"`
	Status       string `json:"status"`
}

// CreatePixCharge opens a PIX charge for req.Amount centavos.
func (c *Client) CreatePixCharge(ctx context.Context, req subscription.ChargeRequest) (*subscription.Charge, error) {
	if err := c.Ready(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(cashInRequest{Value: req.Amount, WebhookURL: c.cfg.WebhookURL})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.cfg.BaseURL, "/")+cashInPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, errors.Join(subscription.ErrUpstreamPayment, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%w: pushinpay returned %d: %s",
			subscription.ErrUpstreamPayment, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var out cashInResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.Join(subscription.ErrUpstreamPayment, ErrUnexpectedResponse, err)
	}
	if out.ID == "" {
		return nil, fmt.Errorf("%w: %w: missing transaction id", subscription.ErrUpstreamPayment, ErrUnexpectedResponse)
	}

	return &subscription.Charge{
		TransactionID: out.ID,
		PixCode:       out.QRCode,
		PixCodeBase64: out.QRCodeBase64,
		Status:        out.Status,
	}, nil
}
