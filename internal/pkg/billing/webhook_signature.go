package billing

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

const signaturePrefixSHA256 = "sha256="

// VerifySignature reports whether signatureHeader is the hex HMAC-SHA256 of
// the canonical form of data under secret. Any malformed input is simply a
// mismatch.
func VerifySignature(data []byte, signatureHeader, secret string) bool {
	sig := strings.TrimSpace(signatureHeader)
	sig = strings.TrimPrefix(strings.ToLower(sig), signaturePrefixSHA256)
	if sig == "" || secret == "" {
		return false
	}

	decodedSig, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}

	canonical, err := CanonicalizeJSON(data)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(canonical)
	return hmac.Equal(mac.Sum(nil), decodedSig)
}

// Sign returns the hex signature the payment platform sends for data.
func Sign(data []byte, secret string) (string, error) {
	canonical, err := CanonicalizeJSON(data)
	if err != nil {
		return "", err
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(canonical)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// CanonicalizeJSON re-serializes a JSON document the way the sender signs it:
// compact, object keys in the order they were received, number literals
// unchanged, no escaping of slashes, HTML characters or non-ASCII text.
// U+2028 and U+2029 stay escaped.
func CanonicalizeJSON(raw []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var buf bytes.Buffer
	buf.Grow(len(raw))
	if err := writeCanonicalValue(dec, &buf); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("canonicalize: trailing data after JSON value")
	}
	return buf.Bytes(), nil
}

func writeCanonicalValue(dec *json.Decoder, buf *bytes.Buffer) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("canonicalize: %w", err)
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			buf.WriteByte('{')
			for i := 0; dec.More(); i++ {
				if i > 0 {
					buf.WriteByte(',')
				}
				keyTok, err := dec.Token()
				if err != nil {
					return fmt.Errorf("canonicalize: %w", err)
				}
				key, ok := keyTok.(string)
				if !ok {
					return fmt.Errorf("canonicalize: unexpected object key %v", keyTok)
				}
				writeCanonicalString(buf, key)
				buf.WriteByte(':')
				if err := writeCanonicalValue(dec, buf); err != nil {
					return err
				}
			}
			if _, err := dec.Token(); err != nil {
				return fmt.Errorf("canonicalize: %w", err)
			}
			buf.WriteByte('}')
		case '[':
			buf.WriteByte('[')
			for i := 0; dec.More(); i++ {
				if i > 0 {
					buf.WriteByte(',')
				}
				if err := writeCanonicalValue(dec, buf); err != nil {
					return err
				}
			}
			if _, err := dec.Token(); err != nil {
				return fmt.Errorf("canonicalize: %w", err)
			}
			buf.WriteByte(']')
		default:
			return fmt.Errorf("canonicalize: unexpected delimiter %q", rune(v))
		}
	case string:
		writeCanonicalString(buf, v)
	case json.Number:
		buf.WriteString(v.String())
	case bool:
		if v {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case nil:
		buf.WriteString("null")
	default:
		return fmt.Errorf("canonicalize: unexpected token %T", tok)
	}
	return nil
}

const hexDigits = "0123456789abcdef"

func writeCanonicalString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		case '\u2028', '\u2029':
			buf.WriteString(`\u`)
			buf.WriteByte(hexDigits[(r>>12)&0xF])
			buf.WriteByte(hexDigits[(r>>8)&0xF])
			buf.WriteByte(hexDigits[(r>>4)&0xF])
			buf.WriteByte(hexDigits[r&0xF])
		default:
			if r < 0x20 {
				buf.WriteString(`\u00`)
				buf.WriteByte(hexDigits[r>>4])
				buf.WriteByte(hexDigits[r&0xF])
				continue
			}
			buf.WriteRune(r)
		}
	}
	buf.WriteByte('"')
}
