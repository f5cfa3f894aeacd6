package billing

import (
	"encoding/json"
	"time"

	"github.com/ManuelReschke/PremiumHook/app/models"
)

// Notification is the typed form of a payment platform webhook body.
type Notification struct {
	Event     models.PaymentEvent `json:"event" validate:"required,oneof=paid refund"`
	Timestamp string              `json:"timestamp"`
	Data      NotificationData    `json:"data"`

	// RawData holds the data object exactly as received. The signature is
	// computed over its canonical form.
	RawData json.RawMessage `json:"-"`
}

// NotificationData carries the order details.
type NotificationData struct {
	ID            string       `json:"id" validate:"required,max=191"`
	Amount        int64        `json:"amount"`
	NetTotal      int64        `json:"netTotal"`
	Currency      string       `json:"currency" validate:"max=10"`
	ProductID     string       `json:"productId" validate:"required,max=191"`
	PaymentMethod string       `json:"paymentMethod" validate:"max=100"`
	CreatedAt     string       `json:"createdAt"`
	CustomerData  CustomerData `json:"customerData"`
}

// CustomerData identifies the buyer.
type CustomerData struct {
	Email        string         `json:"email" validate:"required,max=200"`
	Name         string         `json:"name" validate:"max=255"`
	Phone        string         `json:"phone"`
	CustomFields map[string]any `json:"customFields"`
}

// Request is one inbound webhook delivery.
type Request struct {
	Body      []byte
	Signature string
	// TraceID is reused when it is a valid UUID, otherwise a new one is generated.
	TraceID string
}

// Result is the classification of a processed delivery.
type Result struct {
	Outcome   models.PaymentOutcome
	Message   string
	TraceID   string
	OrderID   string
	Error     string
	UserID    *uint
	ExpiresAt *time.Time
}

// HTTPStatus returns the status code the delivery should be answered with.
func (r *Result) HTTPStatus() int {
	return HTTPStatus(r.Outcome)
}

// Succeeded reports whether the platform should consider the delivery handled
// without any follow-up.
func (r *Result) Succeeded() bool {
	return Succeeded(r.Outcome)
}
