package repository

import (
	"strings"
	"time"

	"github.com/ManuelReschke/PremiumHook/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.Preload("Roles").First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmailFold retrieves a user whose email equals the given one ignoring
// case. The email column uses a binary collation, so the lookup goes through
// the indexed email_lower generated column. The oldest account wins if
// several differ only in case.
func (r *userRepository) GetByEmailFold(email string) (*models.User, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var user models.User
	err := r.db.Where("email_lower = ?", normalized).Order("id ASC").First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByIDForUpdate loads a user with SELECT ... FOR UPDATE. Only meaningful
// inside a transaction.
func (r *userRepository) GetByIDForUpdate(id uint) (*models.User, error) {
	var user models.User
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdatePremiumExpiresAt sets the paid membership expiry for a user
func (r *userRepository) UpdatePremiumExpiresAt(id uint, expiresAt time.Time) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).Update("premium_expires_at", expiresAt).Error
}

// HasRole reports whether the user holds the named role
func (r *userRepository) HasRole(userID uint, roleName string) (bool, error) {
	var count int64
	err := r.db.Model(&models.UserRole{}).
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("user_roles.user_id = ? AND roles.name = ?", userID, roleName).
		Count(&count).Error
	return count > 0, err
}

// AttachRole grants the named role, creating the role if it does not exist.
// Attaching a role the user already holds is a no-op.
func (r *userRepository) AttachRole(userID uint, roleName string) error {
	var role models.Role
	if err := r.db.Where(models.Role{Name: roleName}).FirstOrCreate(&role).Error; err != nil {
		return err
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.UserRole{UserID: userID, RoleID: role.ID}).Error
}
