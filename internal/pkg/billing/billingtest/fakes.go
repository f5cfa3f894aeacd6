package billingtest

import (
	"context"
	"sync"

	"github.com/ManuelReschke/PremiumHook/app/models"
	"github.com/ManuelReschke/PremiumHook/internal/pkg/billing"
	"github.com/ManuelReschke/PremiumHook/internal/pkg/entitlements"
)

// StaticSecret is a SecretProvider returning a fixed secret. An empty Secret
// reports billing.ErrSecretNotConfigured.
type StaticSecret struct {
	Secret string
	Err    error
}

func (s StaticSecret) WebhookSecret(ctx context.Context) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	if s.Secret == "" {
		return "", billing.ErrSecretNotConfigured
	}
	return s.Secret, nil
}

// AuditRecorder collects committed grants.
type AuditRecorder struct {
	mu     sync.Mutex
	Grants []entitlements.Grant
	Err    error
}

func (a *AuditRecorder) PremiumGranted(ctx context.Context, order *models.PaymentOrder, grant *entitlements.Grant) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Grants = append(a.Grants, *grant)
	return a.Err
}

// Len returns the number of recorded grants.
func (a *AuditRecorder) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.Grants)
}

// MemorySettings is an in-memory repository.SettingRepository. A done
// context fails like a database call would.
type MemorySettings struct {
	mu     sync.Mutex
	values map[string]string
	Err    error
}

func (m *MemorySettings) GetValue(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	return m.values[key], nil
}

func (m *MemorySettings) SetValue(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if m.values == nil {
		m.values = map[string]string{}
	}
	m.values[key] = value
	return nil
}

var _ billing.AuditSink = (*AuditRecorder)(nil)
