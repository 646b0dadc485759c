package internal

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
)

const (
	// MinCodeDigits and MaxCodeDigits bound the accepted code lengths.
	// Below 4 digits the attempt budget stops being a meaningful defense;
	// above 10 the value no longer fits the uniform-draw fast path cleanly.
	MinCodeDigits = 4
	MaxCodeDigits = 10

	saltSize = 16
)

// NewCode draws a uniformly random non-negative integer in [0, 10^digits)
// from crypto/rand and zero-pads it to exactly digits characters, so every
// digit string of that length, leading zeros included, is equally likely.
func NewCode(digits int) (string, error) {
	if digits < MinCodeDigits || digits > MaxCodeDigits {
		return "", errors.New("invalid otp digits")
	}

	bound := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return "", err
	}

	code := fmt.Sprintf("%0*d", digits, n)
	if len(code) != digits {
		return "", fmt.Errorf("invalid otp generation length")
	}
	return code, nil
}

// NewSalt returns a fresh per-issuance salt: saltSize random bytes encoded
// base64url without padding, compact enough to inline into a record.
func NewSalt() (string, error) {
	var raw [saltSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw[:]), nil
}
