// File: internal/domain/errors/errors.go
package errors

import "errors"

var (
	// Generic storage-level errors.
	ErrNotFound = errors.New("resource not found")
	ErrConflict = errors.New("resource already exists")

	// ErrInvalidCredentials covers both an unknown identifier and a wrong
	// password. The two cases are never distinguished to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Second-factor code errors. These are reported distinctly from
	// credential errors: the caller is already past the password step.
	ErrInvalidCode     = errors.New("invalid second-factor code")
	ErrCodeExpired     = errors.New("second-factor code expired")
	ErrCodeAlreadyUsed = errors.New("second-factor code already used")

	// ErrDeviceTokenInvalid covers missing, expired and revoked
	// trusted-device tokens alike. It is never a hard failure: the flow
	// falls through to the full second-factor challenge.
	ErrDeviceTokenInvalid = errors.New("trusted device token invalid")

	// ErrDeliveryFailed signals that the emailed code could not be sent.
	// Recoverable: the caller can offer the authenticator-app path.
	ErrDeliveryFailed = errors.New("one-time code delivery failed")

	// ErrEntropyUnavailable is fatal; secret, token and code generation
	// cannot proceed without a working secure random source.
	ErrEntropyUnavailable = errors.New("secure random source unavailable")

	// ErrTwoFactorNotConfigured rejects a verification attempt for a user
	// whose method is none; the flow must route to setup instead.
	ErrTwoFactorNotConfigured = errors.New("second factor not configured")

	// ErrChallengeNotFound means the pending challenge is missing or its
	// TTL elapsed; the login returns to the anonymous state.
	ErrChallengeNotFound = errors.New("login challenge not found or expired")
)

// IsCodeRejection reports whether err is one of the code-level rejections
// that keep the login in the pending state.
func IsCodeRejection(err error) bool {
	return errors.Is(err, ErrInvalidCode) ||
		errors.Is(err, ErrCodeExpired) ||
		errors.Is(err, ErrCodeAlreadyUsed)
}
