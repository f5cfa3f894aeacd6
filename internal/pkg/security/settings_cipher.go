package security

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const (
	appKeyBase64Prefix = "base64:"
	minAppKeyLength    = 32
	settingsKeyInfo    = "premiumhook/settings/v1"
)

var (
	// ErrDecrypt is returned for any ciphertext that cannot be opened:
	// malformed encoding, truncation, tampering or a different APP_KEY.
	ErrDecrypt = errors.New("settings value could not be decrypted")
	// ErrInvalidAppKey is returned when APP_KEY is missing or too short.
	ErrInvalidAppKey = errors.New("APP_KEY must be at least 32 bytes (optionally base64: prefixed)")
)

// SettingsCipher encrypts values stored in the settings table.
type SettingsCipher struct {
	aead cipher.AEAD
}

// ParseAppKey decodes APP_KEY. Keys prefixed with "base64:" are decoded,
// anything else is used as raw bytes.
func ParseAppKey(raw string) ([]byte, error) {
	key := strings.TrimSpace(raw)
	if strings.HasPrefix(key, appKeyBase64Prefix) {
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(key, appKeyBase64Prefix))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAppKey, err)
		}
		if len(decoded) < minAppKeyLength {
			return nil, ErrInvalidAppKey
		}
		return decoded, nil
	}
	if len(key) < minAppKeyLength {
		return nil, ErrInvalidAppKey
	}
	return []byte(key), nil
}

// NewSettingsCipher derives an XChaCha20-Poly1305 key from APP_KEY.
func NewSettingsCipher(appKey string) (*SettingsCipher, error) {
	material, err := ParseAppKey(appKey)
	if err != nil {
		return nil, err
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, material, nil, []byte(settingsKeyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive settings key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("init settings cipher: %w", err)
	}
	return &SettingsCipher{aead: aead}, nil
}

// Encrypt seals plaintext and returns base64(nonce || ciphertext).
func (c *SettingsCipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+c.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt.
func (c *SettingsCipher) Decrypt(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", ErrDecrypt
	}
	if len(raw) < c.aead.NonceSize()+c.aead.Overhead() {
		return "", ErrDecrypt
	}
	nonce, sealed := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plaintext), nil
}
