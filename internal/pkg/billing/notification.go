package billing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ManuelReschke/PremiumHook/app/models"
	"github.com/go-playground/validator/v10"
)

// ErrInvalidPayload marks an authenticated body that does not decode into a
// usable notification.
var ErrInvalidPayload = errors.New("invalid webhook payload")

var validate = validator.New()

type envelope struct {
	Data json.RawMessage `json:"data"`
}

// signedData extracts the raw data object from a webhook body. ok is false
// when the body is not JSON or carries no data object.
func signedData(body []byte) (json.RawMessage, bool) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, false
	}
	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, false
	}
	return data, true
}

// ParseNotification decodes and validates a webhook body.
func ParseNotification(body []byte) (*Notification, error) {
	var n Notification
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	data, ok := signedData(body)
	if !ok {
		return nil, fmt.Errorf("%w: missing data object", ErrInvalidPayload)
	}
	n.RawData = data
	n.Event = normalizeEvent(n.Event)
	n.Data.ID = strings.TrimSpace(n.Data.ID)
	n.Data.ProductID = strings.TrimSpace(n.Data.ProductID)
	n.Data.CustomerData.Email = strings.TrimSpace(n.Data.CustomerData.Email)

	if err := validate.Struct(&n); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if _, err := n.PaidAt(); err != nil {
		return nil, fmt.Errorf("%w: createdAt: %v", ErrInvalidPayload, err)
	}
	return &n, nil
}

// PaidAt parses data.createdAt. An empty value yields nil.
func (n *Notification) PaidAt() (*time.Time, error) {
	raw := strings.TrimSpace(n.Data.CreatedAt)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}

// IsRefund reports whether the notification reverses a payment.
func (n *Notification) IsRefund() bool {
	return n.Event == models.PaymentEventRefund
}

func normalizeEvent(e models.PaymentEvent) models.PaymentEvent {
	return models.PaymentEvent(strings.ToLower(strings.TrimSpace(string(e))))
}
