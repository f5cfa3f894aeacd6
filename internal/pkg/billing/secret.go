package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ManuelReschke/PremiumHook/app/models"
	"github.com/ManuelReschke/PremiumHook/app/repository"
	"github.com/ManuelReschke/PremiumHook/internal/pkg/security"
)

// ErrSecretNotConfigured is returned when no usable webhook secret is stored.
var ErrSecretNotConfigured = errors.New("payment webhook secret is not configured")

// SecretProvider yields the shared webhook secret.
type SecretProvider interface {
	WebhookSecret(ctx context.Context) (string, error)
}

// SecretStore keeps the webhook secret encrypted in the settings table. The
// value is read on every call so a rotated secret applies immediately.
type SecretStore struct {
	settings repository.SettingRepository
	cipher   *security.SettingsCipher
}

// NewSecretStore creates a SecretStore. A nil cipher means APP_KEY is not
// set and every lookup reports ErrSecretNotConfigured.
func NewSecretStore(settings repository.SettingRepository, cipher *security.SettingsCipher) *SecretStore {
	return &SecretStore{settings: settings, cipher: cipher}
}

// WebhookSecret returns the decrypted secret. Absent, empty and undecryptable
// values all report ErrSecretNotConfigured; storage failures are returned as is.
func (s *SecretStore) WebhookSecret(ctx context.Context) (string, error) {
	if s.cipher == nil {
		return "", fmt.Errorf("%w: APP_KEY is not set", ErrSecretNotConfigured)
	}

	stored, err := s.settings.GetValue(ctx, models.SettingPaymentWebhookSecret)
	if err != nil {
		return "", fmt.Errorf("read webhook secret: %w", err)
	}
	if strings.TrimSpace(stored) == "" {
		return "", ErrSecretNotConfigured
	}

	secret, err := s.cipher.Decrypt(stored)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSecretNotConfigured, err)
	}
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return "", ErrSecretNotConfigured
	}
	return secret, nil
}

// SetWebhookSecret encrypts and stores a new secret.
func (s *SecretStore) SetWebhookSecret(ctx context.Context, secret string) error {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return errors.New("webhook secret must not be empty")
	}
	if s.cipher == nil {
		return fmt.Errorf("%w: APP_KEY is not set", ErrSecretNotConfigured)
	}

	sealed, err := s.cipher.Encrypt(secret)
	if err != nil {
		return fmt.Errorf("encrypt webhook secret: %w", err)
	}
	return s.settings.SetValue(ctx, models.SettingPaymentWebhookSecret, sealed)
}
