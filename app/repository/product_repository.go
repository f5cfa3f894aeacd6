package repository

import (
	"strings"

	"github.com/ManuelReschke/PremiumHook/app/models"
	"gorm.io/gorm"
)

// productRepository implements the ProductRepository interface
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository instance
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// GetByExternalID returns active and inactive products alike; soft-deleted
// rows are excluded by gorm's DeletedAt scope.
func (r *productRepository) GetByExternalID(externalID string) (*models.Product, error) {
	id := strings.TrimSpace(externalID)
	if id == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var product models.Product
	err := r.db.Where("external_id = ?", id).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}
