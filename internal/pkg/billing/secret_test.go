package billing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ManuelReschke/PremiumHook/app/models"
	"github.com/ManuelReschke/PremiumHook/internal/pkg/billing"
	"github.com/ManuelReschke/PremiumHook/internal/pkg/billing/billingtest"
	"github.com/ManuelReschke/PremiumHook/internal/pkg/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const appKey = "base64:MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY="

func newCipher(t *testing.T) *security.SettingsCipher {
	t.Helper()
	c, err := security.NewSettingsCipher(appKey)
	require.NoError(t, err)
	return c
}

func TestSecretStore_RoundTrip(t *testing.T) {
	settings := &billingtest.MemorySettings{}
	store := billing.NewSecretStore(settings, newCipher(t))

	require.NoError(t, store.SetWebhookSecret(context.Background(), "  whsec_abc  "))

	stored, _ := settings.GetValue(context.Background(), models.SettingPaymentWebhookSecret)
	assert.NotContains(t, stored, "whsec_abc")

	got, err := store.WebhookSecret(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "whsec_abc", got)
}

func TestSecretStore_NotConfigured(t *testing.T) {
	ctx := context.Background()

	_, err := billing.NewSecretStore(&billingtest.MemorySettings{}, newCipher(t)).WebhookSecret(ctx)
	assert.ErrorIs(t, err, billing.ErrSecretNotConfigured)

	_, err = billing.NewSecretStore(&billingtest.MemorySettings{}, nil).WebhookSecret(ctx)
	assert.ErrorIs(t, err, billing.ErrSecretNotConfigured)

	plain := &billingtest.MemorySettings{}
	require.NoError(t, plain.SetValue(ctx, models.SettingPaymentWebhookSecret, "stored-in-clear"))
	_, err = billing.NewSecretStore(plain, newCipher(t)).WebhookSecret(ctx)
	assert.ErrorIs(t, err, billing.ErrSecretNotConfigured)

	rotatedKey := &billingtest.MemorySettings{}
	other, err := security.NewSettingsCipher("a-completely-different-app-key-0123456789")
	require.NoError(t, err)
	require.NoError(t, billing.NewSecretStore(rotatedKey, other).SetWebhookSecret(ctx, "whsec_abc"))
	_, err = billing.NewSecretStore(rotatedKey, newCipher(t)).WebhookSecret(ctx)
	assert.ErrorIs(t, err, billing.ErrSecretNotConfigured)
}

func TestSecretStore_StorageError(t *testing.T) {
	settings := &billingtest.MemorySettings{Err: errors.New("connection refused")}

	_, err := billing.NewSecretStore(settings, newCipher(t)).WebhookSecret(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, billing.ErrSecretNotConfigured))
}

func TestSecretStore_RejectsEmptySecret(t *testing.T) {
	store := billing.NewSecretStore(&billingtest.MemorySettings{}, newCipher(t))
	assert.Error(t, store.SetWebhookSecret(context.Background(), "   "))
}

func TestSecretStore_RotationAppliesImmediately(t *testing.T) {
	settings := &billingtest.MemorySettings{}
	store := billing.NewSecretStore(settings, newCipher(t))
	ctx := context.Background()

	require.NoError(t, store.SetWebhookSecret(ctx, "first"))
	got, _ := store.WebhookSecret(ctx)
	assert.Equal(t, "first", got)

	require.NoError(t, store.SetWebhookSecret(ctx, "second"))
	got, _ = store.WebhookSecret(ctx)
	assert.Equal(t, "second", got)
}

func TestSecretStore_HonoursContext(t *testing.T) {
	settings := &billingtest.MemorySettings{}
	store := billing.NewSecretStore(settings, newCipher(t))
	require.NoError(t, store.SetWebhookSecret(context.Background(), "whsec_abc"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.WebhookSecret(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, billing.ErrSecretNotConfigured))
	assert.ErrorIs(t, store.SetWebhookSecret(ctx, "whsec_new"), context.Canceled)
}
