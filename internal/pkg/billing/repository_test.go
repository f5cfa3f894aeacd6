package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ManuelReschke/PremiumHook/app/models"
	"github.com/ManuelReschke/PremiumHook/app/repository"
	"github.com/ManuelReschke/PremiumHook/internal/pkg/billing"
	"github.com/ManuelReschke/PremiumHook/internal/pkg/database/databasetest"
	"github.com/ManuelReschke/PremiumHook/internal/pkg/entitlements"
)

func ledgerRow(orderID string, outcome models.PaymentOutcome) *models.PaymentOrder {
	return &models.PaymentOrder{
		OrderID:     orderID,
		Event:       models.PaymentEventPaid,
		Outcome:     outcome,
		PayloadJSON: `{"event":"paid","data":{"id":"` + orderID + `"}}`,
		TraceID:     "7c9e6679-7425-40de-944b-e07fc1f90ae7",
	}
}

func TestGormRepository_CreateOrderReportsDuplicate(t *testing.T) {
	db := databasetest.Open(t)
	repo := billing.NewRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.CreateOrder(ctx, ledgerRow("ORD-1", models.OutcomeSuccess)))

	err := repo.CreateOrder(ctx, ledgerRow("ORD-1", models.OutcomeRefund))
	assert.ErrorIs(t, err, billing.ErrDuplicateOrder)

	exists, err := repo.OrderExists(ctx, "ORD-1")
	require.NoError(t, err)
	assert.True(t, exists)

	var rows int64
	require.NoError(t, db.Model(&models.PaymentOrder{}).Where("order_id = ?", "ORD-1").Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestGormRepository_Lookups(t *testing.T) {
	db := databasetest.Open(t)
	repo := billing.NewRepository(db)
	ctx := context.Background()

	user := &models.User{Name: "Budi Santoso", Email: "Budi@Example.com"}
	require.NoError(t, db.Create(user).Error)
	product := &models.Product{ExternalID: "PROD-30", Name: "Premium 30", Currency: "IDR", DurationDays: 30, Status: models.PRODUCT_STATUS_ACTIVE}
	require.NoError(t, db.Create(product).Error)
	retired := &models.Product{ExternalID: "PROD-7", Name: "Premium 7", Currency: "IDR", DurationDays: 7, Status: models.PRODUCT_STATUS_ACTIVE}
	require.NoError(t, db.Create(retired).Error)
	require.NoError(t, db.Delete(retired).Error)

	found, err := repo.FindUserByEmail(ctx, "budi@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repo.FindUserByEmail(ctx, "siti@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	p, err := repo.FindProductByExternalID(ctx, "PROD-30")
	require.NoError(t, err)
	assert.Equal(t, product.ID, p.ID)

	_, err = repo.FindProductByExternalID(ctx, "PROD-7")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGormRepository_ExtendPersistsGrant(t *testing.T) {
	db := databasetest.Open(t)
	repo := billing.NewRepository(db)
	ctx := context.Background()

	user := &models.User{Name: "Budi Santoso", Email: "budi@example.com"}
	require.NoError(t, db.Create(user).Error)

	now := time.Date(2026, time.February, 10, 9, 0, 0, 0, time.UTC)
	grants := entitlements.NewService(models.ROLE_PREMIUM, func() time.Time { return now })

	first, err := grants.Extend(ctx, repo, user.ID, 30)
	require.NoError(t, err)
	second, err := grants.Extend(ctx, repo, user.ID, 36500)
	require.NoError(t, err)
	assert.True(t, first.ExpiresAt.AddDate(0, 0, 36500).Equal(second.ExpiresAt), "got %s", second.ExpiresAt)

	stored, err := repository.NewUserRepository(db).GetByID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PremiumExpiresAt)
	assert.True(t, second.ExpiresAt.Equal(*stored.PremiumExpiresAt))
	assert.True(t, stored.HasRole(models.ROLE_PREMIUM))
	assert.Len(t, stored.Roles, 1)
}

func TestAuditLogSink_WritesEntry(t *testing.T) {
	db := databasetest.Open(t)
	sink := billing.NewAuditLogSink(repository.NewAuditLogRepository(db))

	order := ledgerRow("ORD-9", models.OutcomeSuccess)
	grant := &entitlements.Grant{UserID: 42, Days: 30, Role: models.ROLE_PREMIUM, ExpiresAt: time.Date(2026, time.March, 12, 9, 0, 0, 0, time.UTC)}
	require.NoError(t, sink.PremiumGranted(context.Background(), order, grant))

	var entry models.AuditLog
	require.NoError(t, db.Where("subject = ?", "ORD-9").First(&entry).Error)
	assert.Equal(t, models.AUDIT_ACTION_PREMIUM_GRANTED, entry.Action)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, uint(42), *entry.UserID)
	assert.Contains(t, entry.Details, "expires_at=2026-03-12T09:00:00Z")
	assert.Equal(t, order.TraceID, entry.TraceID)

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, sink.PremiumGranted(canceled, order, grant))
}
