// File: internal/utils/totp/totp.go

// Package totp is the pure one-time-password codec: secret generation,
// provisioning URIs and drift-tolerant code verification. It performs no
// I/O and holds no state.
package totp

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base32"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	domainErrors "github.com/inkwell-cms/admin-auth/internal/domain/errors"
)

const (
	// Period is the RFC 6238 time-step length in seconds.
	Period = 30
	// Digits is the code length.
	Digits = 6
	// Skew is how many adjacent steps are accepted on either side of the
	// current one.
	Skew = 1
	// secretSize is 20 bytes: 160 bits, the standard size for SHA1.
	secretSize = 20
)

var validateOpts = totp.ValidateOpts{
	Period:    Period,
	Skew:      Skew,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// GenerateSecret produces fresh secret material encoded as unpadded
// Base32. Entropy failure is fatal, not retryable.
func GenerateSecret() (string, error) {
	buf := make([]byte, secretSize)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%w: %v", domainErrors.ErrEntropyUnavailable, err)
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf), nil
}

// ProvisioningURI formats the otpauth URI rendered as a QR code during
// enrollment. Pure formatting, no side effects.
func ProvisioningURI(secret, account, issuer string) string {
	params := url.Values{}
	params.Set("secret", secret)
	params.Set("issuer", issuer)
	params.Set("algorithm", "SHA1")
	params.Set("digits", fmt.Sprintf("%d", Digits))
	params.Set("period", fmt.Sprintf("%d", Period))

	return fmt.Sprintf("otpauth://totp/%s:%s?%s",
		url.PathEscape(issuer),
		url.PathEscape(account),
		params.Encode(),
	)
}

// CurrentCode derives the code for the time step containing now.
func CurrentCode(secret string, now time.Time) (string, error) {
	code, err := totp.GenerateCodeCustom(pad(secret), now.UTC(), validateOpts)
	if err != nil {
		return "", fmt.Errorf("failed to derive TOTP code: %w", err)
	}
	return code, nil
}

// VerifyStep checks a submitted code against the current step and its two
// neighbours. On a match it returns the step that matched, so callers can
// track the last accepted step and refuse replays inside the drift window.
// Malformed input is rejected before any derivation.
func VerifyStep(secret, code string, now time.Time) (int64, bool) {
	if !wellFormed(code) {
		return 0, false
	}

	step := now.UTC().Unix() / Period
	for _, delta := range []int64{0, -1, 1} {
		at := time.Unix((step+delta)*Period, 0).UTC()
		want, err := totp.GenerateCodeCustom(pad(secret), at, validateOpts)
		if err != nil {
			return 0, false
		}
		if subtle.ConstantTimeCompare([]byte(want), []byte(code)) == 1 {
			return step + delta, true
		}
	}
	return 0, false
}

// Verify reports whether the code is acceptable at now, within ±Skew steps.
func Verify(secret, code string, now time.Time) bool {
	_, ok := VerifyStep(secret, code, now)
	return ok
}

func wellFormed(code string) bool {
	if len(code) != Digits {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// pad restores Base32 padding; secrets are stored and displayed unpadded.
func pad(secret string) string {
	secret = strings.TrimSpace(secret)
	if n := len(secret) % 8; n != 0 {
		secret += strings.Repeat("=", 8-n)
	}
	return secret
}
