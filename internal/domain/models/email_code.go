// File: internal/domain/models/email_code.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// EmailCodeTTL is how long an emailed one-time code stays consumable.
const EmailCodeTTL = 10 * time.Minute

// EmailCode is a single-use numeric code delivered out-of-band,
// mapping to the "email_codes" table. Only a hash of the code is stored.
type EmailCode struct {
	ID        uuid.UUID  `db:"id"`
	UserID    uuid.UUID  `db:"user_id"`
	CodeHash  string     `db:"code_hash"`
	CreatedAt time.Time  `db:"created_at"`
	ExpiresAt time.Time  `db:"expires_at"`
	UsedAt    *time.Time `db:"used_at"`
}

// Expired reports whether the code is past its TTL at the given instant.
func (c *EmailCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
