package internal

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
)

// Digest computes the stored form of a code: HMAC-SHA256 keyed by the
// server-side pepper over "salt:code", encoded base64url without padding.
// The pepper never appears in any record; the salt is stored alongside the
// digest and is unique per issuance.
func Digest(pepper []byte, salt, code string) string {
	mac := hmac.New(sha256.New, pepper)
	mac.Write([]byte(salt))
	mac.Write([]byte{':'})
	mac.Write([]byte(code))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// ConstantTimeEqual compares two digest strings in time independent of where
// they first differ. The only permitted short-circuit is on length mismatch;
// digest length is not secret.
func ConstantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
