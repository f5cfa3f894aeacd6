package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	PRODUCT_STATUS_ACTIVE   = "active"
	PRODUCT_STATUS_INACTIVE = "inactive"

	PRODUCT_ACTION_PREMIUM = "premium"
)

// Product is a purchasable membership package known to the payment platform
// under ExternalID. Soft-deleted products are invisible to the webhook.
type Product struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	ExternalID   string         `gorm:"type:varchar(191);not null;uniqueIndex" json:"external_id" validate:"required,max=191"`
	Name         string         `gorm:"type:varchar(255);not null" json:"name" validate:"required,max=255"`
	Price        int64          `gorm:"not null;default:0" json:"price" validate:"gte=0"`
	Currency     string         `gorm:"type:varchar(10);not null;default:'IDR'" json:"currency" validate:"required,max=10"`
	DurationDays int            `gorm:"not null" json:"duration_days" validate:"required,gt=0"`
	Action       string         `gorm:"type:varchar(50);not null;default:'premium'" json:"action"`
	Status       string         `gorm:"type:varchar(20);not null;default:'active';index" json:"status" validate:"oneof=active inactive"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Product) Validate() error {
	return validator.New().Struct(p)
}

// IsActive reports whether the product may currently be sold.
func (p *Product) IsActive() bool {
	return p.Status == PRODUCT_STATUS_ACTIVE
}
