package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/ManuelReschke/PremiumHook/app/models"
	"github.com/ManuelReschke/PremiumHook/app/repository"
	"github.com/ManuelReschke/PremiumHook/internal/pkg/entitlements"
)

// AuditSink receives committed premium grants for the admin activity trail.
type AuditSink interface {
	PremiumGranted(ctx context.Context, order *models.PaymentOrder, grant *entitlements.Grant) error
}

type auditLogSink struct {
	repo repository.AuditLogRepository
}

// NewAuditLogSink writes grants to the audit_logs table.
func NewAuditLogSink(repo repository.AuditLogRepository) AuditSink {
	return &auditLogSink{repo: repo}
}

func (s *auditLogSink) PremiumGranted(ctx context.Context, order *models.PaymentOrder, grant *entitlements.Grant) error {
	userID := grant.UserID
	entry := &models.AuditLog{
		Action:  models.AUDIT_ACTION_PREMIUM_GRANTED,
		UserID:  &userID,
		Subject: order.OrderID,
		Details: fmt.Sprintf("role=%s days=%d expires_at=%s product_id=%s",
			grant.Role, grant.Days, grant.ExpiresAt.UTC().Format(time.RFC3339), productRef(order)),
		TraceID:    order.TraceID,
		OccurredAt: occurredAt(order),
	}
	return s.repo.Create(ctx, entry)
}

func productRef(order *models.PaymentOrder) string {
	if order.ProductID == nil {
		return "-"
	}
	return fmt.Sprint(*order.ProductID)
}

func occurredAt(order *models.PaymentOrder) time.Time {
	if order.CreatedAt.IsZero() {
		return time.Now().UTC()
	}
	return order.CreatedAt
}
