package repository

import (
	"context"
	"time"

	"github.com/ManuelReschke/PremiumHook/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
	GetByEmailFold(email string) (*models.User, error)
	GetByIDForUpdate(id uint) (*models.User, error)
	UpdatePremiumExpiresAt(id uint, expiresAt time.Time) error
	HasRole(userID uint, roleName string) (bool, error)
	AttachRole(userID uint, roleName string) error
}

// ProductRepository defines read access to the product catalog
type ProductRepository interface {
	GetByExternalID(externalID string) (*models.Product, error)
}

// PaymentOrderRepository defines the append-only payment ledger operations
type PaymentOrderRepository interface {
	ExistsByOrderID(orderID string) (bool, error)
	Create(order *models.PaymentOrder) error
	GetByOrderID(orderID string) (*models.PaymentOrder, error)
	CountByOrderID(orderID string) (int64, error)
	EachCreatedBetween(from, to time.Time, batchSize int, fn func(batch []models.PaymentOrder) error) error
}

// SettingRepository defines the interface for application settings
type SettingRepository interface {
	GetValue(ctx context.Context, key string) (string, error)
	SetValue(ctx context.Context, key, value string) error
}

// AuditLogRepository defines the interface for the admin audit trail
type AuditLogRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	User         UserRepository
	Product      ProductRepository
	PaymentOrder PaymentOrderRepository
	Setting      SettingRepository
	AuditLog     AuditLogRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Product:      NewProductRepository(db),
		PaymentOrder: NewPaymentOrderRepository(db),
		Setting:      NewSettingRepository(db),
		AuditLog:     NewAuditLogRepository(db),
	}
}
