package billing

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ManuelReschke/PremiumHook/app/models"
	"github.com/ManuelReschke/PremiumHook/app/repository"
	"github.com/ManuelReschke/PremiumHook/internal/pkg/database"
	"github.com/ManuelReschke/PremiumHook/internal/pkg/entitlements"
	"gorm.io/gorm"
)

// ErrDuplicateOrder is returned by CreateOrder when the order id is already
// in the ledger.
var ErrDuplicateOrder = errors.New("payment order already recorded")

// Repository provides the DB operations used by the webhook processor.
// Lookups that find nothing return gorm.ErrRecordNotFound.
type Repository interface {
	entitlements.Store

	OrderExists(ctx context.Context, orderID string) (bool, error)
	CreateOrder(ctx context.Context, order *models.PaymentOrder) error
	FindProductByExternalID(ctx context.Context, externalID string) (*models.Product, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)

	// Transaction runs fn against a Repository bound to one database
	// transaction. A non-nil error from fn rolls everything back.
	Transaction(ctx context.Context, fn func(tx Repository) error) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) repos(ctx context.Context) *repository.Repositories {
	return repository.NewRepositories(r.db.WithContext(ctx))
}

func (r *gormRepository) OrderExists(ctx context.Context, orderID string) (bool, error) {
	return r.repos(ctx).PaymentOrder.ExistsByOrderID(orderID)
}

func (r *gormRepository) CreateOrder(ctx context.Context, order *models.PaymentOrder) error {
	err := r.repos(ctx).PaymentOrder.Create(order)
	if database.IsDuplicateKeyError(err) {
		return ErrDuplicateOrder
	}
	return err
}

func (r *gormRepository) FindProductByExternalID(ctx context.Context, externalID string) (*models.Product, error) {
	return r.repos(ctx).Product.GetByExternalID(externalID)
}

func (r *gormRepository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.repos(ctx).User.GetByEmailFold(email)
}

func (r *gormRepository) LockUser(ctx context.Context, userID uint) (*models.User, error) {
	return r.repos(ctx).User.GetByIDForUpdate(userID)
}

func (r *gormRepository) UpdatePremiumExpiry(ctx context.Context, userID uint, expiresAt time.Time) error {
	return r.repos(ctx).User.UpdatePremiumExpiresAt(userID, expiresAt)
}

func (r *gormRepository) AttachRole(ctx context.Context, userID uint, role string) error {
	return r.repos(ctx).User.AttachRole(userID, role)
}

func (r *gormRepository) Transaction(ctx context.Context, fn func(tx Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	}, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
}
