// File: internal/infrastructure/database/login_attempt_postgres_repository.go
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkwell-cms/admin-auth/internal/domain/models"
	"github.com/inkwell-cms/admin-auth/internal/domain/repository"
)

type pgxLoginAttemptRepository struct {
	db *pgxpool.Pool
}

// NewPgxLoginAttemptRepository creates a new instance of pgxLoginAttemptRepository.
func NewPgxLoginAttemptRepository(db *pgxpool.Pool) repository.LoginAttemptRepository {
	return &pgxLoginAttemptRepository{db: db}
}

func (r *pgxLoginAttemptRepository) Create(ctx context.Context, attempt *models.LoginAttempt) error {
	query := `
		INSERT INTO login_attempts (identifier, user_id, success, failure_reason, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := r.db.QueryRow(ctx, query,
		attempt.Identifier, attempt.UserID, attempt.Success, attempt.FailureReason,
		attempt.IPAddress, attempt.UserAgent, attempt.CreatedAt,
	).Scan(&attempt.ID)
	if err != nil {
		return fmt.Errorf("failed to record login attempt: %w", err)
	}
	return nil
}

func (r *pgxLoginAttemptRepository) ListByIdentifier(ctx context.Context, identifier string, limit int) ([]models.LoginAttempt, error) {
	query := `
		SELECT id, identifier, user_id, success, failure_reason, ip_address, user_agent, created_at
		FROM login_attempts
		WHERE identifier = $1
		ORDER BY created_at DESC
		LIMIT $2`
	rows, err := r.db.Query(ctx, query, identifier, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list login attempts: %w", err)
	}
	defer rows.Close()

	var attempts []models.LoginAttempt
	for rows.Next() {
		var a models.LoginAttempt
		if err := rows.Scan(
			&a.ID, &a.Identifier, &a.UserID, &a.Success, &a.FailureReason,
			&a.IPAddress, &a.UserAgent, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan login attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate login attempts: %w", err)
	}
	return attempts, nil
}
