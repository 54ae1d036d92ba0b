// File: internal/domain/models/user.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an administrative user of the CMS backend,
// mapping to the "users" table.
type User struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	Username     string    `db:"username"`
	DisplayName  string    `db:"display_name"`
	Role         string    `db:"role"`
	PasswordHash string    `db:"password_hash"`

	// TwoFactorMethod is the configured second factor; TwoFactorNone until
	// the user completes setup.
	TwoFactorMethod TwoFactorMethod `db:"twofa_method"`
	// TwoFactorSecretEnc holds the AES-GCM encrypted TOTP secret.
	// Empty unless the method is totp or both.
	TwoFactorSecretEnc string `db:"twofa_secret_enc"`
	// TwoFactorVerified is set after the first successful setup verification.
	TwoFactorVerified bool `db:"twofa_verified"`
	// TwoFactorLastStep is the last TOTP time step accepted for this user.
	// Codes from earlier or equal steps are replays.
	TwoFactorLastStep int64 `db:"twofa_last_step"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// UserResponse is the representation returned to API clients.
type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	TwoFactor   string    `json:"two_factor_method"`
}

// ToResponse strips credentials and secret material from a user.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		TwoFactor:   string(u.TwoFactorMethod),
	}
}

// HasVerifiedSecondFactor reports whether login may proceed through the
// normal challenge path instead of mandatory setup.
func (u *User) HasVerifiedSecondFactor() bool {
	return u.TwoFactorMethod != TwoFactorNone && u.TwoFactorVerified
}
