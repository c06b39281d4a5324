package pushinpay

import "time"

// Config holds gateway credentials and webhook settings.
type Config struct {
	BaseURL    string        `env:"PUSHINPAY_BASE_URL" envDefault:"https://api.pushinpay.com.br"`
	Token      string        `env:"PUSHINPAY_TOKEN"`
	WebhookURL string        `env:"PUSHINPAY_WEBHOOK_URL"`
	Timeout    time.Duration `env:"PUSHINPAY_TIMEOUT" envDefault:"15s"`

	WebhookSecret   string        `env:"PUSHINPAY_WEBHOOK_SECRET"`
	VerifyWebhooks  bool          `env:"PUSHINPAY_WEBHOOK_VERIFY" envDefault:"false"`
	SignatureMaxAge time.Duration `env:"PUSHINPAY_SIGNATURE_MAX_AGE" envDefault:"5m"`
}
