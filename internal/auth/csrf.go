package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// NewToken returns a 32-byte hex token for sessions and CSRF protection.
func NewToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// VerifyCSRF compares the session's CSRF token with the one supplied on the
// request, in constant time. A missing or mismatched token fails.
func VerifyCSRF(expected, supplied string) error {
	if expected == "" || supplied == "" {
		return ErrCSRFMismatch
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(supplied)) != 1 {
		return ErrCSRFMismatch
	}
	return nil
}
