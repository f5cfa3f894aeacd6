package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	SETTING_TYPE_STRING    = "string"
	SETTING_TYPE_ENCRYPTED = "encrypted"

	// SettingPaymentWebhookSecret holds the encrypted shared secret used to
	// authenticate payment notifications.
	SettingPaymentWebhookSecret = "payment_webhook_secret"
)

// Setting represents a system setting
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"column:setting_key;size:255;not null;uniqueIndex" json:"key" validate:"required,min=1,max=255"`
	Value     string    `gorm:"type:text" json:"value"`
	Type      string    `gorm:"size:50;not null" json:"type" validate:"required,oneof=string encrypted boolean integer float"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Setting) Validate() error {
	return validator.New().Struct(s)
}

// SettingType returns the storage type for a known setting key.
func SettingType(key string) string {
	switch key {
	case SettingPaymentWebhookSecret:
		return SETTING_TYPE_ENCRYPTED
	default:
		return SETTING_TYPE_STRING
	}
}
