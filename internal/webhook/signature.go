// Package webhook provides HMAC signature verification for inbound
// webhook deliveries.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign computes the hex-encoded HMAC-SHA256 signature of body keyed by
// secret. Used by tests and by clients constructing deliveries.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature is a valid hex HMAC-SHA256 digest of
// body keyed by secret. Comparison is constant-time to avoid leaking
// the expected digest through timing.
//
// An empty secret or empty signature is always a verification failure;
// Verify never panics and never returns an error.
func Verify(secret, body []byte, signature string) bool {
	if len(secret) == 0 || signature == "" {
		return false
	}

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	expected := mac.Sum(nil)

	return hmac.Equal(expected, provided)
}
