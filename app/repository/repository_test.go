package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ManuelReschke/PremiumHook/app/models"
	"github.com/ManuelReschke/PremiumHook/app/repository"
	"github.com/ManuelReschke/PremiumHook/internal/pkg/database/databasetest"
)

func createUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Name: "Budi Santoso", Email: email, Status: models.STATUS_ACTIVE}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createProduct(t *testing.T, db *gorm.DB, externalID, status string) *models.Product {
	t.Helper()
	product := &models.Product{ExternalID: externalID, Name: externalID, Currency: "IDR", DurationDays: 30, Status: status}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestUserRepository_GetByEmailFold(t *testing.T) {
	db := databasetest.Open(t)
	repo := repository.NewUserRepository(db)

	first := createUser(t, db, "Budi@Example.com")
	createUser(t, db, "budi@example.com")

	user, err := repo.GetByEmailFold("  BUDI@example.COM ")
	require.NoError(t, err)
	assert.Equal(t, first.ID, user.ID)
	assert.Equal(t, "Budi@Example.com", user.Email)
	assert.Equal(t, "budi@example.com", user.EmailLower)

	_, err = repo.GetByEmailFold("nobody@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.GetByEmailFold("   ")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_GetByEmailFoldSkipsDeletedUsers(t *testing.T) {
	db := databasetest.Open(t)
	repo := repository.NewUserRepository(db)

	gone := createUser(t, db, "Siti@Example.com")
	require.NoError(t, db.Delete(gone).Error)

	_, err := repo.GetByEmailFold("siti@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_AttachRoleIsIdempotent(t *testing.T) {
	db := databasetest.Open(t)
	repo := repository.NewUserRepository(db)
	user := createUser(t, db, "budi@example.com")

	require.NoError(t, repo.AttachRole(user.ID, models.ROLE_PREMIUM))
	require.NoError(t, repo.AttachRole(user.ID, models.ROLE_PREMIUM))

	ok, err := repo.HasRole(user.ID, models.ROLE_PREMIUM)
	require.NoError(t, err)
	assert.True(t, ok)

	var memberships int64
	require.NoError(t, db.Model(&models.UserRole{}).Where("user_id = ?", user.ID).Count(&memberships).Error)
	assert.Equal(t, int64(1), memberships)

	// unknown roles are created on first use
	require.NoError(t, repo.AttachRole(user.ID, "supporter"))
	loaded, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.True(t, loaded.HasRole("supporter"))
	assert.True(t, loaded.HasRole(models.ROLE_PREMIUM))
	assert.False(t, loaded.HasRole(models.ROLE_ADMIN))
}

func TestUserRepository_UpdatePremiumExpiresAt(t *testing.T) {
	db := databasetest.Open(t)
	repo := repository.NewUserRepository(db)
	user := createUser(t, db, "budi@example.com")

	// lifetime plans land well past 2038
	expiresAt := time.Date(2126, time.March, 11, 8, 30, 0, 0, time.UTC)
	require.NoError(t, repo.UpdatePremiumExpiresAt(user.ID, expiresAt))

	locked, err := repo.GetByIDForUpdate(user.ID)
	require.NoError(t, err)
	require.NotNil(t, locked.PremiumExpiresAt)
	assert.True(t, expiresAt.Equal(*locked.PremiumExpiresAt))

	_, err = repo.GetByIDForUpdate(user.ID + 100)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProductRepository_GetByExternalID(t *testing.T) {
	db := databasetest.Open(t)
	repo := repository.NewProductRepository(db)

	active := createProduct(t, db, "PROD-30", models.PRODUCT_STATUS_ACTIVE)
	createProduct(t, db, "PROD-OLD", models.PRODUCT_STATUS_INACTIVE)
	deleted := createProduct(t, db, "PROD-GONE", models.PRODUCT_STATUS_ACTIVE)
	require.NoError(t, db.Delete(deleted).Error)

	got, err := repo.GetByExternalID(" PROD-30 ")
	require.NoError(t, err)
	assert.Equal(t, active.ID, got.ID)
	assert.True(t, got.IsActive())

	got, err = repo.GetByExternalID("PROD-OLD")
	require.NoError(t, err)
	assert.False(t, got.IsActive())

	_, err = repo.GetByExternalID("PROD-GONE")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.GetByExternalID("PROD-404")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func newOrder(orderID string, createdAt time.Time) *models.PaymentOrder {
	return &models.PaymentOrder{
		OrderID:     orderID,
		Event:       models.PaymentEventPaid,
		Outcome:     models.OutcomeProductNotFound,
		PayloadJSON: `{"event":"paid"}`,
		TraceID:     "0f8fad5b-d9cb-469f-a165-70867728950e",
		CreatedAt:   createdAt,
	}
}

func TestPaymentOrderRepository_UniqueOrderID(t *testing.T) {
	db := databasetest.Open(t)
	repo := repository.NewPaymentOrderRepository(db)
	now := time.Now().UTC()

	exists, err := repo.ExistsByOrderID("ORD-1")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.Create(newOrder("ORD-1", now)))

	err = repo.Create(newOrder("ORD-1", now))
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)

	exists, err = repo.ExistsByOrderID("ORD-1")
	require.NoError(t, err)
	assert.True(t, exists)

	count, err := repo.CountByOrderID("ORD-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	stored, err := repo.GetByOrderID("ORD-1")
	require.NoError(t, err)
	assert.Nil(t, stored.ProductID)
	assert.Nil(t, stored.UserID)
	assert.Equal(t, models.OutcomeProductNotFound, stored.Outcome)
}

func TestPaymentOrderRepository_EachCreatedBetween(t *testing.T) {
	db := databasetest.Open(t)
	repo := repository.NewPaymentOrderRepository(db)
	day := time.Date(2026, time.May, 4, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(newOrder("ORD-BEFORE", day.Add(-time.Minute))))
	require.NoError(t, repo.Create(newOrder("ORD-A", day)))
	require.NoError(t, repo.Create(newOrder("ORD-B", day.Add(3*time.Hour))))
	require.NoError(t, repo.Create(newOrder("ORD-C", day.Add(23*time.Hour))))
	require.NoError(t, repo.Create(newOrder("ORD-NEXT", day.AddDate(0, 0, 1))))

	var seen []string
	batches := 0
	err := repo.EachCreatedBetween(day, day.AddDate(0, 0, 1), 2, func(batch []models.PaymentOrder) error {
		batches++
		for _, o := range batch {
			seen = append(seen, o.OrderID)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ORD-A", "ORD-B", "ORD-C"}, seen)
	assert.Equal(t, 2, batches)
}

func TestSettingRepository_Upsert(t *testing.T) {
	db := databasetest.Open(t)
	repo := repository.NewSettingRepository(db)
	ctx := context.Background()

	value, err := repo.GetValue(ctx, models.SettingPaymentWebhookSecret)
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, repo.SetValue(ctx, models.SettingPaymentWebhookSecret, "sealed-1"))
	require.NoError(t, repo.SetValue(ctx, models.SettingPaymentWebhookSecret, "sealed-2"))

	value, err = repo.GetValue(ctx, models.SettingPaymentWebhookSecret)
	require.NoError(t, err)
	assert.Equal(t, "sealed-2", value)

	var setting models.Setting
	require.NoError(t, db.Where("setting_key = ?", models.SettingPaymentWebhookSecret).First(&setting).Error)
	assert.Equal(t, models.SETTING_TYPE_ENCRYPTED, setting.Type)
}

func TestSettingRepository_CanceledContext(t *testing.T) {
	db := databasetest.Open(t)
	repo := repository.NewSettingRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.GetValue(ctx, models.SettingPaymentWebhookSecret)
	assert.Error(t, err)
	assert.Error(t, repo.SetValue(ctx, models.SettingPaymentWebhookSecret, "sealed"))
}

func TestAuditLogRepository_Create(t *testing.T) {
	db := databasetest.Open(t)
	repo := repository.NewAuditLogRepository(db)
	userID := createUser(t, db, "budi@example.com").ID

	entry := &models.AuditLog{
		Action:     models.AUDIT_ACTION_PREMIUM_GRANTED,
		UserID:     &userID,
		Subject:    "ORD-1",
		OccurredAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Create(context.Background(), entry))
	assert.NotZero(t, entry.ID)
}
