package pushinpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const (
	HeaderSignature = "X-Webhook-Signature"
	HeaderTimestamp = "X-Webhook-Timestamp"
)

// Sign returns the hex HMAC-SHA256 of "timestamp.payload".
func Sign(secret string, payload []byte, timestamp int64) string {
	h := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(h, "%d.", timestamp)
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// SignatureHeaders returns the headers a sender attaches to payload.
func SignatureHeaders(secret string, payload []byte, now time.Time) http.Header {
	ts := now.Unix()
	h := http.Header{}
	h.Set(HeaderSignature, Sign(secret, payload, ts))
	h.Set(HeaderTimestamp, strconv.FormatInt(ts, 10))
	return h
}

// Verify checks the signature headers on a webhook delivery. A maxAge of zero
// disables the timestamp window check.
func Verify(secret string, payload []byte, headers http.Header, maxAge time.Duration, now time.Time) error {
	if secret == "" {
		return ErrMissingWebhookSecret
	}

	sig := headers.Get(HeaderSignature)
	rawTS := headers.Get(HeaderTimestamp)
	if sig == "" || rawTS == "" {
		return ErrMissingSignature
	}
	ts, err := strconv.ParseInt(rawTS, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: malformed timestamp", ErrInvalidSignature)
	}

	if maxAge > 0 {
		age := now.Sub(time.Unix(ts, 0))
		if age > maxAge {
			return fmt.Errorf("%w: timestamp too old (%s)", ErrInvalidSignature, age.Round(time.Second))
		}
		if age < -time.Minute {
			return fmt.Errorf("%w: timestamp in the future", ErrInvalidSignature)
		}
	}

	if !hmac.Equal([]byte(Sign(secret, payload, ts)), []byte(sig)) {
		return fmt.Errorf("%w: signature mismatch", ErrInvalidSignature)
	}
	return nil
}
