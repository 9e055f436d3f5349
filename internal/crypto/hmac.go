package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign computes the lowercase-hex HMAC-SHA256 of body keyed by secret.
// This is the value callers must send in the X-Signature header.
func Sign(body, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether supplied is the valid signature for body.
// The comparison is constant time. A missing, empty, or malformed-hex
// signature verifies false; verification failure is never an error.
func Verify(body []byte, supplied string, secret []byte) bool {
	if supplied == "" {
		return false
	}

	suppliedMAC, err := hex.DecodeString(supplied)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), suppliedMAC)
}
