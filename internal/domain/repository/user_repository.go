// File: internal/domain/repository/user_repository.go
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/inkwell-cms/admin-auth/internal/domain/models"
)

// UserRepository persists administrative users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// UpdateTwoFactor writes the second-factor fields (method, encrypted
	// secret, verified flag) in one statement.
	UpdateTwoFactor(ctx context.Context, user *models.User) error

	// AdvanceTwoFactorLastStep records the TOTP time step just accepted.
	// It only ever moves forward and reports whether this caller moved it:
	// of several racing submissions carrying the same step, exactly one
	// gets true, so the returned flag is the authoritative replay gate.
	AdvanceTwoFactorLastStep(ctx context.Context, userID uuid.UUID, step int64) (bool, error)
}
