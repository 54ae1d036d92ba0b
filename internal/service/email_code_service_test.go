// File: internal/service/email_code_service_test.go
package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domainErrors "github.com/inkwell-cms/admin-auth/internal/domain/errors"
	"github.com/inkwell-cms/admin-auth/internal/domain/models"
	"github.com/inkwell-cms/admin-auth/internal/infrastructure/security"
	"github.com/inkwell-cms/admin-auth/internal/service"
)

func TestEmailCodeService_Issue_SupersedesPriorCode(t *testing.T) {
	ctx := context.Background()
	repo := new(MockEmailCodeRepository)
	svc := service.NewEmailCodeService(repo, zap.NewNop())
	userID := uuid.New()
	now := time.Now().UTC()

	repo.On("DeleteByUserID", ctx, userID).Return(int64(1), nil).Once()
	var stored *models.EmailCode
	repo.On("Create", ctx, mock.AnythingOfType("*models.EmailCode")).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*models.EmailCode)
	}).Return(nil).Once()

	code, err := svc.Issue(ctx, userID, now)
	require.NoError(t, err)
	require.Len(t, code, 6)
	for _, r := range code {
		assert.True(t, r >= '0' && r <= '9')
	}

	require.NotNil(t, stored)
	assert.Equal(t, userID, stored.UserID)
	assert.Equal(t, security.HashToken(code), stored.CodeHash)
	assert.NotEqual(t, code, stored.CodeHash)
	assert.Equal(t, now.Add(models.EmailCodeTTL), stored.ExpiresAt)
	repo.AssertExpectations(t)
}

func TestEmailCodeService_Consume_Succeeds(t *testing.T) {
	ctx := context.Background()
	repo := new(MockEmailCodeRepository)
	svc := service.NewEmailCodeService(repo, zap.NewNop())
	userID := uuid.New()
	now := time.Now().UTC()

	active := &models.EmailCode{
		ID:        uuid.New(),
		UserID:    userID,
		CodeHash:  security.HashToken("482913"),
		CreatedAt: now.Add(-time.Minute),
		ExpiresAt: now.Add(9 * time.Minute),
	}
	repo.On("FindLatestUnusedByUserID", ctx, userID).Return(active, nil).Once()
	repo.On("MarkUsed", ctx, active.ID, now).Return(nil).Once()

	require.NoError(t, svc.Consume(ctx, userID, "482913", now))
	repo.AssertExpectations(t)
}

func TestEmailCodeService_Consume_WrongCode(t *testing.T) {
	ctx := context.Background()
	repo := new(MockEmailCodeRepository)
	svc := service.NewEmailCodeService(repo, zap.NewNop())
	userID := uuid.New()
	now := time.Now().UTC()

	active := &models.EmailCode{
		ID:        uuid.New(),
		UserID:    userID,
		CodeHash:  security.HashToken("482913"),
		ExpiresAt: now.Add(9 * time.Minute),
	}
	repo.On("FindLatestUnusedByUserID", ctx, userID).Return(active, nil).Once()

	err := svc.Consume(ctx, userID, "482914", now)
	assert.ErrorIs(t, err, domainErrors.ErrInvalidCode)
	repo.AssertNotCalled(t, "MarkUsed", mock.Anything, mock.Anything, mock.Anything)
}

func TestEmailCodeService_Consume_ExpiryBoundary(t *testing.T) {
	ctx := context.Background()
	repo := new(MockEmailCodeRepository)
	svc := service.NewEmailCodeService(repo, zap.NewNop())
	userID := uuid.New()
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	active := &models.EmailCode{
		ID:        uuid.New(),
		UserID:    userID,
		CodeHash:  security.HashToken("482913"),
		CreatedAt: issuedAt,
		ExpiresAt: issuedAt.Add(models.EmailCodeTTL),
	}

	// Exactly at the TTL boundary the code is still valid.
	repo.On("FindLatestUnusedByUserID", ctx, userID).Return(active, nil)
	repo.On("MarkUsed", ctx, active.ID, active.ExpiresAt).Return(nil).Once()
	require.NoError(t, svc.Consume(ctx, userID, "482913", active.ExpiresAt))

	// One second past it the code is expired, not invalid.
	err := svc.Consume(ctx, userID, "482913", active.ExpiresAt.Add(time.Second))
	assert.ErrorIs(t, err, domainErrors.ErrCodeExpired)
}

func TestEmailCodeService_Consume_ReplayFails(t *testing.T) {
	ctx := context.Background()
	repo := new(MockEmailCodeRepository)
	svc := service.NewEmailCodeService(repo, zap.NewNop())
	userID := uuid.New()
	now := time.Now().UTC()

	// After the first consumption the repository no longer surfaces the
	// row as unused.
	repo.On("FindLatestUnusedByUserID", ctx, userID).Return(nil, domainErrors.ErrNotFound).Once()

	err := svc.Consume(ctx, userID, "482913", now)
	assert.ErrorIs(t, err, domainErrors.ErrInvalidCode)
}

func TestEmailCodeService_Consume_MalformedRejectedEarly(t *testing.T) {
	ctx := context.Background()
	repo := new(MockEmailCodeRepository)
	svc := service.NewEmailCodeService(repo, zap.NewNop())

	for _, bad := range []string{"", "12345", "1234567", "12345a", "abc def"} {
		err := svc.Consume(ctx, uuid.New(), bad, time.Now().UTC())
		assert.ErrorIs(t, err, domainErrors.ErrInvalidCode, "input %q", bad)
	}
	repo.AssertNotCalled(t, "FindLatestUnusedByUserID", mock.Anything, mock.Anything)
}

func TestEmailCodeService_PurgeExpired(t *testing.T) {
	ctx := context.Background()
	repo := new(MockEmailCodeRepository)
	svc := service.NewEmailCodeService(repo, zap.NewNop())
	now := time.Now().UTC()

	repo.On("DeleteExpired", ctx, now).Return(int64(3), nil).Once()

	deleted, err := svc.PurgeExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	repo.AssertExpectations(t)
}
