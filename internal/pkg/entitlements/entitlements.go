package entitlements

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ManuelReschke/PremiumHook/app/models"
)

// ErrInvalidDuration is returned for non-positive grant durations.
var ErrInvalidDuration = errors.New("entitlement duration must be a positive number of days")

// Store is the persistence the grant needs. Implementations must be bound to
// the caller's transaction so the row lock covers the read and the write.
type Store interface {
	LockUser(ctx context.Context, userID uint) (*models.User, error)
	UpdatePremiumExpiry(ctx context.Context, userID uint, expiresAt time.Time) error
	AttachRole(ctx context.Context, userID uint, role string) error
}

// Grant describes an applied extension.
type Grant struct {
	UserID         uint
	Days           int
	Role           string
	PreviousExpiry *time.Time
	ExpiresAt      time.Time
}

// Service extends paid memberships.
type Service struct {
	role string
	now  func() time.Time
}

// NewService creates a Service granting role. A nil clock uses UTC wall time.
func NewService(role string, now func() time.Time) *Service {
	role = strings.TrimSpace(role)
	if role == "" {
		role = models.ROLE_PREMIUM
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{role: role, now: now}
}

// Role returns the role attached on every grant.
func (s *Service) Role() string {
	return s.role
}

// NextExpiry returns max(now, current) + days, using calendar addition so the
// time of day of the base is kept.
func NextExpiry(now time.Time, current *time.Time, days int) time.Time {
	base := now
	if current != nil && current.After(now) {
		base = *current
	}
	return base.AddDate(0, 0, days)
}

// Extend locks the user row, moves premium_expires_at forward by days and
// makes sure the paid role is held.
func (s *Service) Extend(ctx context.Context, store Store, userID uint, days int) (*Grant, error) {
	if days <= 0 {
		return nil, ErrInvalidDuration
	}

	user, err := store.LockUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lock user %d: %w", userID, err)
	}

	expiresAt := NextExpiry(s.now(), user.PremiumExpiresAt, days)
	if err := store.UpdatePremiumExpiry(ctx, user.ID, expiresAt); err != nil {
		return nil, fmt.Errorf("update premium expiry for user %d: %w", user.ID, err)
	}
	if err := store.AttachRole(ctx, user.ID, s.role); err != nil {
		return nil, fmt.Errorf("attach role %q to user %d: %w", s.role, user.ID, err)
	}

	return &Grant{
		UserID:         user.ID,
		Days:           days,
		Role:           s.role,
		PreviousExpiry: user.PremiumExpiresAt,
		ExpiresAt:      expiresAt,
	}, nil
}
