// File: internal/domain/repository/login_attempt_repository.go
package repository

import (
	"context"

	"github.com/inkwell-cms/admin-auth/internal/domain/models"
)

// LoginAttemptRepository is the append-only audit sink for authentication
// attempts. There is deliberately no update or delete.
type LoginAttemptRepository interface {
	Create(ctx context.Context, attempt *models.LoginAttempt) error

	// ListByIdentifier returns the most recent attempts for an identifier,
	// newest first, for post-hoc analysis.
	ListByIdentifier(ctx context.Context, identifier string, limit int) ([]models.LoginAttempt, error)
}
