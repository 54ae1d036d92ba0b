// File: internal/domain/models/trusted_device.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// TrustedDeviceTTL is the fixed lifetime of a trusted-device token,
// set at issue time and never extended.
const TrustedDeviceTTL = 7 * 24 * time.Hour

// TrustedDevice is a long-lived second-factor bypass token,
// mapping to the "trusted_devices" table. The raw token is returned to the
// client exactly once; only its hash is ever persisted.
type TrustedDevice struct {
	ID         uuid.UUID  `db:"id"`
	UserID     uuid.UUID  `db:"user_id"`
	TokenHash  string     `db:"token_hash"`
	DeviceName string     `db:"device_name"`
	IPAddress  string     `db:"ip_address"`
	CreatedAt  time.Time  `db:"created_at"`
	LastUsedAt *time.Time `db:"last_used_at"`
	ExpiresAt  time.Time  `db:"expires_at"`
}

// TrustedDeviceInfo is the listing representation shown to the owner.
// It deliberately carries neither the token nor its hash.
type TrustedDeviceInfo struct {
	ID         uuid.UUID  `json:"id"`
	DeviceName string     `json:"device_name"`
	IPAddress  string     `json:"ip_address"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	ExpiresAt  time.Time  `json:"expires_at"`
}

// Info converts a stored record into its listing form.
func (d *TrustedDevice) Info() TrustedDeviceInfo {
	return TrustedDeviceInfo{
		ID:         d.ID,
		DeviceName: d.DeviceName,
		IPAddress:  d.IPAddress,
		CreatedAt:  d.CreatedAt,
		LastUsedAt: d.LastUsedAt,
		ExpiresAt:  d.ExpiresAt,
	}
}
