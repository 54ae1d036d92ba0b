// File: internal/infrastructure/database/email_code_postgres_repository.go
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/inkwell-cms/admin-auth/internal/domain/errors"
	"github.com/inkwell-cms/admin-auth/internal/domain/models"
	"github.com/inkwell-cms/admin-auth/internal/domain/repository"
)

type pgxEmailCodeRepository struct {
	db *pgxpool.Pool
}

// NewPgxEmailCodeRepository creates a new instance of pgxEmailCodeRepository.
func NewPgxEmailCodeRepository(db *pgxpool.Pool) repository.EmailCodeRepository {
	return &pgxEmailCodeRepository{db: db}
}

func (r *pgxEmailCodeRepository) Create(ctx context.Context, code *models.EmailCode) error {
	query := `
		INSERT INTO email_codes (id, user_id, code_hash, created_at, expires_at, used_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Exec(ctx, query,
		code.ID, code.UserID, code.CodeHash, code.CreatedAt, code.ExpiresAt, code.UsedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create email code: %w", err)
	}
	return nil
}

func (r *pgxEmailCodeRepository) FindLatestUnusedByUserID(ctx context.Context, userID uuid.UUID) (*models.EmailCode, error) {
	query := `
		SELECT id, user_id, code_hash, created_at, expires_at, used_at
		FROM email_codes
		WHERE user_id = $1 AND used_at IS NULL
		ORDER BY created_at DESC LIMIT 1`
	c := &models.EmailCode{}
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&c.ID, &c.UserID, &c.CodeHash, &c.CreatedAt, &c.ExpiresAt, &c.UsedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find email code: %w", err)
	}
	return c, nil
}

func (r *pgxEmailCodeRepository) MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	// The used_at IS NULL guard makes consumption atomic: of any number of
	// racing callers exactly one sees RowsAffected == 1.
	query := `UPDATE email_codes SET used_at = $2 WHERE id = $1 AND used_at IS NULL`
	commandTag, err := r.db.Exec(ctx, query, id, usedAt)
	if err != nil {
		return fmt.Errorf("failed to mark email code as used: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return domainErrors.ErrCodeAlreadyUsed
	}
	return nil
}

func (r *pgxEmailCodeRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `DELETE FROM email_codes WHERE user_id = $1`
	commandTag, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete email codes for user: %w", err)
	}
	return commandTag.RowsAffected(), nil
}

func (r *pgxEmailCodeRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM email_codes WHERE expires_at < $1`
	commandTag, err := r.db.Exec(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired email codes: %w", err)
	}
	return commandTag.RowsAffected(), nil
}
