// File: internal/domain/models/challenge.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// PendingChallengeTTL bounds how long a password-verified login may sit
// between the credential step and second-factor resolution.
const PendingChallengeTTL = 5 * time.Minute

// PendingChallenge is the ephemeral state between a successful password
// check and a resolved second factor. It lives only in the challenge store
// under an opaque token and is destroyed on success, cancel, or TTL expiry.
type PendingChallenge struct {
	UserID      uuid.UUID       `json:"user_id"`
	Email       string          `json:"email"`
	DisplayName string          `json:"display_name"`
	Method      TwoFactorMethod `json:"method"`

	// SetupRequired marks a challenge created for a user who has never
	// completed second-factor setup. Such a challenge must pass through
	// the provisioning surface before any session is granted.
	SetupRequired bool `json:"setup_required"`
	// PendingMethod and PendingSecretEnc carry in-progress setup state:
	// the method being enrolled and the encrypted TOTP secret that will be
	// written to the user only after a correct code is submitted.
	PendingMethod    TwoFactorMethod `json:"pending_method,omitempty"`
	PendingSecretEnc string          `json:"pending_secret_enc,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
