// File: internal/domain/repository/email_code_repository.go
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/inkwell-cms/admin-auth/internal/domain/models"
)

// EmailCodeRepository persists emailed one-time codes. At most one
// unconsumed code per user is kept; Create after DeleteByUserID enforces
// the supersede rule.
type EmailCodeRepository interface {
	Create(ctx context.Context, code *models.EmailCode) error

	// FindLatestUnusedByUserID returns the newest code with used_at IS
	// NULL regardless of expiry, so the caller can distinguish an expired
	// code from a wrong one. ErrNotFound when no such row exists.
	FindLatestUnusedByUserID(ctx context.Context, userID uuid.UUID) (*models.EmailCode, error)

	// MarkUsed consumes the code. The update is conditional on used_at
	// still being NULL; exactly one of several racing callers succeeds,
	// the rest get ErrCodeAlreadyUsed.
	MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error

	// DeleteByUserID removes every code for the user, consumed or not.
	DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error)

	// DeleteExpired is housekeeping for codes past their TTL.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
