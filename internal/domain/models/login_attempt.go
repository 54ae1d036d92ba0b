// File: internal/domain/models/login_attempt.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Failure reasons recorded on login attempts.
const (
	FailureReasonBadCredentials = "bad_credentials"
	FailureReasonTwoFAFailed    = "2fa_failed"
	FailureReasonSetupFailed    = "2fa_setup_failed"
)

// LoginAttempt is an append-only audit record of one authentication
// attempt, mapping to the "login_attempts" table. Rows are never updated
// or deleted by the service.
type LoginAttempt struct {
	ID            int64      `db:"id"`
	Identifier    string     `db:"identifier"`
	UserID        *uuid.UUID `db:"user_id"`
	Success       bool       `db:"success"`
	FailureReason *string    `db:"failure_reason"`
	IPAddress     string     `db:"ip_address"`
	UserAgent     string     `db:"user_agent"`
	CreatedAt     time.Time  `db:"created_at"`
}

// LoginAttemptInfo is the listing representation shown to the account
// owner when reviewing recent sign-in activity.
type LoginAttemptInfo struct {
	Success       bool      `json:"success"`
	FailureReason string    `json:"failure_reason,omitempty"`
	IPAddress     string    `json:"ip_address"`
	UserAgent     string    `json:"user_agent"`
	CreatedAt     time.Time `json:"created_at"`
}

// Info converts an audit row into its owner-facing representation.
func (a *LoginAttempt) Info() LoginAttemptInfo {
	info := LoginAttemptInfo{
		Success:   a.Success,
		IPAddress: a.IPAddress,
		UserAgent: a.UserAgent,
		CreatedAt: a.CreatedAt,
	}
	if a.FailureReason != nil {
		info.FailureReason = *a.FailureReason
	}
	return info
}
