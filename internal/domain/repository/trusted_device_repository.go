// File: internal/domain/repository/trusted_device_repository.go
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/inkwell-cms/admin-auth/internal/domain/models"
)

// TrustedDeviceRepository persists trusted-device records. Only token
// hashes are ever stored or matched.
type TrustedDeviceRepository interface {
	Create(ctx context.Context, device *models.TrustedDevice) error

	// TouchByUserAndHash atomically matches an unexpired record for the
	// user by token hash and stamps last_used_at in the same statement.
	// A record revoked by a concurrent Delete is not matched: the row is
	// checked at use time, never cached. ErrNotFound covers unknown,
	// expired and revoked hashes alike.
	TouchByUserAndHash(ctx context.Context, userID uuid.UUID, tokenHash string, usedAt time.Time) (*models.TrustedDevice, error)

	// DeleteByIDAndUser revokes one token scoped to its owner. Deleting a
	// token that does not exist for that user is a no-op, not an error.
	DeleteByIDAndUser(ctx context.Context, id, userID uuid.UUID) error

	DeleteAllByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.TrustedDevice, error)
}
