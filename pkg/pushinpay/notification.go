package pushinpay

import (
	"encoding/json"
	"errors"
	"mime"
	"net/url"
	"strings"

	"github.com/palletepro/palletepro/pkg/subscription"
)

const (
	contentTypeForm = "application/x-www-form-urlencoded"
	contentTypeJSON = "application/json"
)

// ParseNotification decodes a webhook body into a subscription.Notification.
// The gateway posts form-encoded id and status fields; a JSON object with the
// same keys is also accepted. A missing content type is read as a form.
func ParseNotification(contentType string, body []byte) (subscription.Notification, error) {
	mt := contentTypeForm
	if strings.TrimSpace(contentType) != "" {
		parsed, _, err := mime.ParseMediaType(contentType)
		if err != nil {
			return subscription.Notification{}, errors.Join(ErrUnsupportedContentType, err)
		}
		mt = parsed
	}

	var n subscription.Notification
	switch mt {
	case contentTypeForm, "text/plain":
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return n, errors.Join(ErrMalformedNotification, err)
		}
		n.TransactionID = values.Get("id")
		n.Status = values.Get("status")
	case contentTypeJSON:
		if err := json.Unmarshal(body, &n); err != nil {
			return n, errors.Join(ErrMalformedNotification, err)
		}
	default:
		return n, ErrUnsupportedContentType
	}

	n.TransactionID = strings.TrimSpace(n.TransactionID)
	n.Status = strings.TrimSpace(n.Status)
	return n, nil
}
