// File: internal/service/email_code_service.go
package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainErrors "github.com/inkwell-cms/admin-auth/internal/domain/errors"
	"github.com/inkwell-cms/admin-auth/internal/domain/models"
	"github.com/inkwell-cms/admin-auth/internal/domain/repository"
	"github.com/inkwell-cms/admin-auth/internal/infrastructure/security"
	"github.com/inkwell-cms/admin-auth/internal/utils/random"
)

const emailCodeLength = 6

// EmailCodeService issues and single-use-consumes emailed one-time codes.
type EmailCodeService struct {
	codes  repository.EmailCodeRepository
	logger *zap.Logger
}

// NewEmailCodeService creates a new EmailCodeService.
func NewEmailCodeService(codes repository.EmailCodeRepository, logger *zap.Logger) *EmailCodeService {
	return &EmailCodeService{codes: codes, logger: logger}
}

// Issue generates a fresh 6-digit code for the user, superseding any prior
// unconsumed code, and returns the plaintext for delivery. Only the hash
// is persisted.
func (s *EmailCodeService) Issue(ctx context.Context, userID uuid.UUID, now time.Time) (string, error) {
	code, err := random.GenerateRandomDigits(emailCodeLength)
	if err != nil {
		return "", err
	}

	// Superseding before creating keeps at most one active code per user.
	if _, err := s.codes.DeleteByUserID(ctx, userID); err != nil {
		return "", fmt.Errorf("failed to supersede previous codes: %w", err)
	}

	record := &models.EmailCode{
		ID:        uuid.New(),
		UserID:    userID,
		CodeHash:  security.HashToken(code),
		CreatedAt: now,
		ExpiresAt: now.Add(models.EmailCodeTTL),
	}
	if err := s.codes.Create(ctx, record); err != nil {
		return "", err
	}

	s.logger.Info("Issued email one-time code",
		zap.String("user_id", userID.String()),
		zap.Time("expires_at", record.ExpiresAt),
	)
	return code, nil
}

// Consume verifies a submitted code and marks it used. Each code satisfies
// Consume at most once; absent, expired, mismatched and replayed codes all
// fail with their respective domain errors.
func (s *EmailCodeService) Consume(ctx context.Context, userID uuid.UUID, submitted string, now time.Time) error {
	if !wellFormedCode(submitted) {
		return domainErrors.ErrInvalidCode
	}

	active, err := s.codes.FindLatestUnusedByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return domainErrors.ErrInvalidCode
		}
		return err
	}

	submittedHash := security.HashToken(submitted)
	if subtle.ConstantTimeCompare([]byte(submittedHash), []byte(active.CodeHash)) != 1 {
		return domainErrors.ErrInvalidCode
	}
	if active.Expired(now) {
		return domainErrors.ErrCodeExpired
	}

	// Conditional update: exactly one of several racing consumers wins.
	return s.codes.MarkUsed(ctx, active.ID, now)
}

// PurgeExpired removes codes whose TTL has passed. Consume never matches
// them, so this only keeps the table from accumulating dead rows; it is
// meant to run periodically.
func (s *EmailCodeService) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	deleted, err := s.codes.DeleteExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info("Purged expired email codes", zap.Int64("count", deleted))
	}
	return deleted, nil
}

func wellFormedCode(code string) bool {
	if len(code) != emailCodeLength {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
