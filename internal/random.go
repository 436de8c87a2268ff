package internal

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

// NewOTP returns a uniformly random numeric code of the given digit count.
// Each digit is drawn independently, so codes may carry leading zeros.
func NewOTP(digits int) (string, error) {
	if digits < 1 || digits > 64 {
		return "", errors.New("invalid otp digits")
	}

	var b strings.Builder
	b.Grow(digits)

	max := big.NewInt(10)
	for i := 0; i < digits; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}

	return b.String(), nil
}
