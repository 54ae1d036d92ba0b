// File: internal/domain/models/two_factor.go
package models

import "fmt"

// TwoFactorMethod enumerates the second-factor configurations a user can have.
type TwoFactorMethod string

const (
	// TwoFactorNone means the user has never configured a second factor.
	TwoFactorNone TwoFactorMethod = "none"
	// TwoFactorEmail accepts only emailed one-time codes.
	TwoFactorEmail TwoFactorMethod = "email"
	// TwoFactorTOTP accepts only authenticator-app codes.
	TwoFactorTOTP TwoFactorMethod = "totp"
	// TwoFactorBoth accepts either an authenticator code or an emailed code.
	TwoFactorBoth TwoFactorMethod = "both"
)

// ParseTwoFactorMethod validates a raw method string coming from a request
// or a database row.
func ParseTwoFactorMethod(raw string) (TwoFactorMethod, error) {
	switch TwoFactorMethod(raw) {
	case TwoFactorNone, TwoFactorEmail, TwoFactorTOTP, TwoFactorBoth:
		return TwoFactorMethod(raw), nil
	}
	return "", fmt.Errorf("unknown two-factor method %q", raw)
}

// UsesTOTP reports whether an authenticator code is an acceptable factor.
func (m TwoFactorMethod) UsesTOTP() bool {
	return m == TwoFactorTOTP || m == TwoFactorBoth
}

// UsesEmail reports whether an emailed code is an acceptable factor.
func (m TwoFactorMethod) UsesEmail() bool {
	return m == TwoFactorEmail || m == TwoFactorBoth
}
