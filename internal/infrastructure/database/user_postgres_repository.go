// File: internal/infrastructure/database/user_postgres_repository.go
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/inkwell-cms/admin-auth/internal/domain/errors"
	"github.com/inkwell-cms/admin-auth/internal/domain/models"
	"github.com/inkwell-cms/admin-auth/internal/domain/repository"
)

type pgxUserRepository struct {
	db *pgxpool.Pool
}

// NewPgxUserRepository creates a new instance of pgxUserRepository.
func NewPgxUserRepository(db *pgxpool.Pool) repository.UserRepository {
	return &pgxUserRepository{db: db}
}

const userColumns = `id, email, username, display_name, role, password_hash,
	twofa_method, twofa_secret_enc, twofa_verified, twofa_last_step,
	created_at, updated_at`

func (r *pgxUserRepository) scanUser(row pgx.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Email, &u.Username, &u.DisplayName, &u.Role, &u.PasswordHash,
		&u.TwoFactorMethod, &u.TwoFactorSecretEnc, &u.TwoFactorVerified, &u.TwoFactorLastStep,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return u, nil
}

func (r *pgxUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, username, display_name, role, password_hash,
			twofa_method, twofa_secret_enc, twofa_verified, twofa_last_step, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Email, user.Username, user.DisplayName, user.Role, user.PasswordHash,
		user.TwoFactorMethod, user.TwoFactorSecretEnc, user.TwoFactorVerified, user.TwoFactorLastStep,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: user with given email or username already exists", domainErrors.ErrConflict)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *pgxUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *pgxUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return r.scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *pgxUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(username) = lower($1)`
	return r.scanUser(r.db.QueryRow(ctx, query, username))
}

func (r *pgxUserRepository) UpdateTwoFactor(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET twofa_method = $2, twofa_secret_enc = $3, twofa_verified = $4, updated_at = $5
		WHERE id = $1`
	commandTag, err := r.db.Exec(ctx, query,
		user.ID, user.TwoFactorMethod, user.TwoFactorSecretEnc, user.TwoFactorVerified, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to update two-factor settings: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *pgxUserRepository) AdvanceTwoFactorLastStep(ctx context.Context, userID uuid.UUID, step int64) (bool, error) {
	// Monotonic guard: a racing writer whose step is not strictly greater
	// affects zero rows, and the caller must treat that as a replay.
	query := `UPDATE users SET twofa_last_step = $2 WHERE id = $1 AND twofa_last_step < $2`
	commandTag, err := r.db.Exec(ctx, query, userID, step)
	if err != nil {
		return false, fmt.Errorf("failed to advance two-factor step: %w", err)
	}
	return commandTag.RowsAffected() > 0, nil
}
