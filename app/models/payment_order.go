package models

import "time"

// PaymentEvent is the notification kind reported by the payment platform.
type PaymentEvent string

const (
	PaymentEventPaid   PaymentEvent = "paid"
	PaymentEventRefund PaymentEvent = "refund"
)

// PaymentOutcome is the terminal classification of a processed notification.
// The set is closed: every notification ends in exactly one of these.
type PaymentOutcome string

const (
	OutcomeSuccess               PaymentOutcome = "success"
	OutcomeUserNotFound          PaymentOutcome = "user_not_found"
	OutcomeProductNotFound       PaymentOutcome = "product_not_found"
	OutcomeProductInactive       PaymentOutcome = "product_inactive"
	OutcomeSignatureInvalid      PaymentOutcome = "signature_invalid"
	OutcomeDuplicate             PaymentOutcome = "duplicate"
	OutcomeRefund                PaymentOutcome = "refund"
	OutcomeSettingsNotConfigured PaymentOutcome = "settings_not_configured"
)

// PaymentOutcomes lists every outcome in declaration order.
func PaymentOutcomes() []PaymentOutcome {
	return []PaymentOutcome{
		OutcomeSuccess,
		OutcomeUserNotFound,
		OutcomeProductNotFound,
		OutcomeProductInactive,
		OutcomeSignatureInvalid,
		OutcomeDuplicate,
		OutcomeRefund,
		OutcomeSettingsNotConfigured,
	}
}

// Valid reports whether o belongs to the closed outcome set.
func (o PaymentOutcome) Valid() bool {
	switch o {
	case OutcomeSuccess, OutcomeUserNotFound, OutcomeProductNotFound, OutcomeProductInactive,
		OutcomeSignatureInvalid, OutcomeDuplicate, OutcomeRefund, OutcomeSettingsNotConfigured:
		return true
	default:
		return false
	}
}

// Persisted reports whether the outcome produces a ledger row.
func (o PaymentOutcome) Persisted() bool {
	switch o {
	case OutcomeSuccess, OutcomeUserNotFound, OutcomeProductNotFound, OutcomeProductInactive, OutcomeRefund:
		return true
	case OutcomeSignatureInvalid, OutcomeDuplicate, OutcomeSettingsNotConfigured:
		return false
	default:
		panic("unknown payment outcome: " + string(o))
	}
}

// PaymentOrder is one append-only ledger row per processed notification.
// OrderID carries the unique constraint that makes processing idempotent.
// Rows are never updated or deleted.
type PaymentOrder struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	OrderID       string         `gorm:"type:varchar(191);not null;uniqueIndex:ux_payment_orders_order_id" json:"order_id"`
	Event         PaymentEvent   `gorm:"type:varchar(20);not null;index" json:"event"`
	ProductID     *uint          `gorm:"index" json:"product_id"`
	Product       *Product       `gorm:"foreignKey:ProductID" json:"-"`
	UserID        *uint          `gorm:"index" json:"user_id"`
	User          *User          `gorm:"foreignKey:UserID" json:"-"`
	CustomerEmail string         `gorm:"type:varchar(200);not null;default:''" json:"customer_email"`
	CustomerName  string         `gorm:"type:varchar(255);not null;default:''" json:"customer_name"`
	Amount        int64          `gorm:"not null;default:0" json:"amount"`
	NetTotal      int64          `gorm:"not null;default:0" json:"net_total"`
	Currency      string         `gorm:"type:varchar(10);not null;default:''" json:"currency"`
	PaymentMethod string         `gorm:"type:varchar(100);not null;default:''" json:"payment_method"`
	Outcome       PaymentOutcome `gorm:"type:varchar(40);not null;index" json:"outcome"`
	PayloadJSON   string         `gorm:"type:longtext;not null" json:"payload_json"`
	TraceID       string         `gorm:"type:char(36);not null;index" json:"trace_id"`
	ErrorMessage  string         `gorm:"type:text" json:"error_message,omitempty"`
	PaidAt        *time.Time     `gorm:"type:datetime(3);default:null" json:"paid_at,omitempty"`
	CreatedAt     time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}
