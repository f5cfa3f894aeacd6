package models

import "time"

const (
	AUDIT_ACTION_PREMIUM_GRANTED = "premium.granted"
)

// AuditLog is the admin-facing activity trail. It is separate from the
// payment ledger and may be pruned independently.
type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Action     string    `gorm:"type:varchar(100);not null;index" json:"action"`
	UserID     *uint     `gorm:"index" json:"user_id"`
	Subject    string    `gorm:"type:varchar(191);not null;default:'';index" json:"subject"`
	Details    string    `gorm:"type:text" json:"details"`
	TraceID    string    `gorm:"type:char(36);not null;default:''" json:"trace_id"`
	OccurredAt time.Time `gorm:"not null" json:"occurred_at"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
