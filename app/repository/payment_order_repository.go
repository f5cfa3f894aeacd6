package repository

import (
	"time"

	"github.com/ManuelReschke/PremiumHook/app/models"
	"gorm.io/gorm"
)

// paymentOrderRepository implements the PaymentOrderRepository interface.
// There is deliberately no update or delete: the ledger is append-only.
type paymentOrderRepository struct {
	db *gorm.DB
}

// NewPaymentOrderRepository creates a new payment ledger repository instance
func NewPaymentOrderRepository(db *gorm.DB) PaymentOrderRepository {
	return &paymentOrderRepository{db: db}
}

// ExistsByOrderID is a fast-path check; the unique index on order_id is
// what actually prevents double processing.
func (r *paymentOrderRepository) ExistsByOrderID(orderID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.PaymentOrder{}).Where("order_id = ?", orderID).Limit(1).Count(&count).Error
	return count > 0, err
}

// Create appends a ledger row. A second row for the same order id fails
// with a duplicate key error.
func (r *paymentOrderRepository) Create(order *models.PaymentOrder) error {
	return r.db.Create(order).Error
}

// GetByOrderID retrieves the ledger row for an order id
func (r *paymentOrderRepository) GetByOrderID(orderID string) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	err := r.db.Where("order_id = ?", orderID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CountByOrderID returns the number of rows stored for an order id
func (r *paymentOrderRepository) CountByOrderID(orderID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.PaymentOrder{}).Where("order_id = ?", orderID).Count(&count).Error
	return count, err
}

// EachCreatedBetween streams ledger rows with from <= created_at < to in id order.
func (r *paymentOrderRepository) EachCreatedBetween(from, to time.Time, batchSize int, fn func(batch []models.PaymentOrder) error) error {
	if batchSize <= 0 {
		batchSize = 500
	}
	var batch []models.PaymentOrder
	return r.db.Where("created_at >= ? AND created_at < ?", from, to).
		FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
			return fn(batch)
		}).Error
}
