// File: internal/infrastructure/database/trusted_device_postgres_repository.go
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

type pgxTrustedDeviceRepository struct {
	db *pgxpool.Pool
}

// NewPgxTrustedDeviceRepository creates a new instance of pgxTrustedDeviceRepository.
func NewPgxTrustedDeviceRepository(db *pgxpool.Pool) repository.TrustedDeviceRepository {
	return &pgxTrustedDeviceRepository{db: db}
}

func (r *pgxTrustedDeviceRepository) Create(ctx context.Context, device *models.TrustedDevice) error {
	query := `
		INSERT INTO trusted_devices (id, user_id, token_hash, device_name, ip_address,
			created_at, last_used_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.Exec(ctx, query,
		device.ID, device.UserID, device.TokenHash, device.DeviceName, device.IPAddress,
		device.CreatedAt, device.LastUsedAt, device.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create trusted device: %w", err)
	}
	return nil
}

func (r *pgxTrustedDeviceRepository) TouchByUserAndHash(ctx context.Context, userID uuid.UUID, tokenHash string, usedAt time.Time) (*models.TrustedDevice, error) {
	// Match and stamp in one statement so a concurrent revoke resolves
	// deterministically: if the delete committed first, no row matches.
	query := `
		UPDATE trusted_devices
		SET last_used_at = $3
		WHERE user_id = $1 AND token_hash = $2 AND expires_at > $4
		RETURNING id, user_id, token_hash, device_name, ip_address, created_at, last_used_at, expires_at`
	d := &models.TrustedDevice{}
	err := r.db.QueryRow(ctx, query, userID, tokenHash, usedAt, usedAt).Scan(
		&d.ID, &d.UserID, &d.TokenHash, &d.DeviceName, &d.IPAddress,
		&d.CreatedAt, &d.LastUsedAt, &d.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to validate trusted device: %w", err)
	}
	return d, nil
}

func (r *pgxTrustedDeviceRepository) DeleteByIDAndUser(ctx context.Context, id, userID uuid.UUID) error {
	// Scoped to the owner; a cross-user id simply affects zero rows.
	query := `DELETE FROM trusted_devices WHERE id = $1 AND user_id = $2`
	if _, err := r.db.Exec(ctx, query, id, userID); err != nil {
		return fmt.Errorf("failed to delete trusted device: %w", err)
	}
	return nil
}

func (r *pgxTrustedDeviceRepository) DeleteAllByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `DELETE FROM trusted_devices WHERE user_id = $1`
	commandTag, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete trusted devices for user: %w", err)
	}
	return commandTag.RowsAffected(), nil
}

func (r *pgxTrustedDeviceRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.TrustedDevice, error) {
	query := `
		SELECT id, user_id, token_hash, device_name, ip_address, created_at, last_used_at, expires_at
		FROM trusted_devices
		WHERE user_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trusted devices: %w", err)
	}
	defer rows.Close()

	var devices []models.TrustedDevice
	for rows.Next() {
		var d models.TrustedDevice
		if err := rows.Scan(
			&d.ID, &d.UserID, &d.TokenHash, &d.DeviceName, &d.IPAddress,
			&d.CreatedAt, &d.LastUsedAt, &d.ExpiresAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan trusted device: %w", err)
		}
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trusted devices: %w", err)
	}
	return devices, nil
}
