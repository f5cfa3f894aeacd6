package security

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAppKey = "base64:MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY="

func TestParseAppKey(t *testing.T) {
	key, err := ParseAppKey(testAppKey)
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcdef0123456789abcdef", string(key))

	raw, err := ParseAppKey("  0123456789abcdef0123456789abcdef  ")
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	_, err = ParseAppKey("short")
	assert.ErrorIs(t, err, ErrInvalidAppKey)

	_, err = ParseAppKey("base64:c2hvcnQ=")
	assert.ErrorIs(t, err, ErrInvalidAppKey)

	_, err = ParseAppKey("base64:!!!not-base64!!!")
	assert.ErrorIs(t, err, ErrInvalidAppKey)

	_, err = ParseAppKey("")
	assert.ErrorIs(t, err, ErrInvalidAppKey)
}

func TestSettingsCipherRoundTrip(t *testing.T) {
	c, err := NewSettingsCipher(testAppKey)
	require.NoError(t, err)

	enc, err := c.Encrypt("whsec_live_ÄÖÜ/secret")
	require.NoError(t, err)
	assert.NotContains(t, enc, "whsec")

	dec, err := c.Decrypt(enc)
	require.NoError(t, err)
	assert.Equal(t, "whsec_live_ÄÖÜ/secret", dec)
}

func TestSettingsCipherUsesFreshNonce(t *testing.T) {
	c, err := NewSettingsCipher(testAppKey)
	require.NoError(t, err)

	a, err := c.Encrypt("same")
	require.NoError(t, err)
	b, err := c.Encrypt("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSettingsCipherRejectsTampering(t *testing.T) {
	c, err := NewSettingsCipher(testAppKey)
	require.NoError(t, err)

	enc, err := c.Encrypt("secret")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(enc)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0x01
	_, err = c.Decrypt(base64.StdEncoding.EncodeToString(raw))
	assert.ErrorIs(t, err, ErrDecrypt)

	_, err = c.Decrypt("not base64 at all")
	assert.ErrorIs(t, err, ErrDecrypt)

	_, err = c.Decrypt(base64.StdEncoding.EncodeToString([]byte("tiny")))
	assert.ErrorIs(t, err, ErrDecrypt)

	_, err = c.Decrypt("")
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestSettingsCipherRejectsOtherKey(t *testing.T) {
	a, err := NewSettingsCipher(testAppKey)
	require.NoError(t, err)
	b, err := NewSettingsCipher(strings.Repeat("k", 40))
	require.NoError(t, err)

	enc, err := a.Encrypt("secret")
	require.NoError(t, err)

	_, err = b.Decrypt(enc)
	assert.ErrorIs(t, err, ErrDecrypt)
}
