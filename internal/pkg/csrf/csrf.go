package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
)

// tokenBytes is the entropy of one CSRF token before hex encoding.
const tokenBytes = 32

// NewToken returns a fresh random token. The server keeps no record of
// it: validity is only ever the double-submit equality check.
func NewToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Match compares the cookie and header copies in constant time. Empty
// values never match anything, including each other.
func Match(cookieValue, headerValue string) bool {
	if cookieValue == "" || headerValue == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookieValue), []byte(headerValue)) == 1
}
