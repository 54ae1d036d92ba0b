// File: internal/utils/random/random.go
package random

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"

	domainErrors "github.com/inkwell-cms/admin-auth/internal/domain/errors"
)

// GenerateRandomBytes returns length bytes from the secure random source.
func GenerateRandomBytes(length int) ([]byte, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrEntropyUnavailable, err)
	}
	return b, nil
}

// GenerateRandomDigits returns a string of length decimal digits with no
// modulo bias; used for emailed one-time codes.
func GenerateRandomDigits(length int) (string, error) {
	digits := make([]byte, length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("%w: %v", domainErrors.ErrEntropyUnavailable, err)
		}
		digits[i] = byte(n.Int64() + '0')
	}
	return string(digits), nil
}

// GenerateSecureToken returns an opaque URL-safe bearer token carrying
// byteLength bytes of entropy; used for trusted-device and challenge
// tokens.
func GenerateSecureToken(byteLength int) (string, error) {
	b, err := GenerateRandomBytes(byteLength)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(b), nil
}
