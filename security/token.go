// Package security derives and checks the admin session token
package security

import (
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/argon2"
)

// CookieName is the cookie the admin session token travels in.
const CookieName = "admin_session"

const tokenPrefix = "folio-admin:"

// AdminToken derives the deterministic session token from the configured
// admin password and app secret. The token itself carries no expiry, the
// cookie's max-age governs session length.
func AdminToken(password, secret string) string {
	key := argon2.IDKey([]byte(tokenPrefix+password), []byte(secret), 1, 64*1024, 4, 32)
	return hex.EncodeToString(key)
}

// ValidToken reports whether a presented cookie value matches the token
// for the configured credentials. Constant-time on the compare.
func ValidToken(presented, password, secret string) bool {
	expected := AdminToken(password, secret)
	return subtle.ConstantTimeCompare([]byte(presented), []byte(expected)) == 1
}

// ValidPassword checks a login attempt against the configured password.
func ValidPassword(attempt, configured string) bool {
	return subtle.ConstantTimeCompare([]byte(attempt), []byte(configured)) == 1
}
