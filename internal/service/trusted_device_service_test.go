// File: internal/service/trusted_device_service_test.go
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
	"github.com/inkwell-cms/admin-auth/internal/events/kafka"
	"github.com/inkwell-cms/admin-auth/internal/infrastructure/security"
	"github.com/inkwell-cms/admin-auth/internal/service"
)

func TestTrustedDeviceService_Issue_StoresOnlyHash(t *testing.T) {
	ctx := context.Background()
	repo := new(MockTrustedDeviceRepository)
	svc := service.NewTrustedDeviceService(repo, kafka.NopPublisher{}, zap.NewNop())
	userID := uuid.New()
	now := time.Now().UTC()

	var stored *models.TrustedDevice
	repo.On("Create", ctx, mock.AnythingOfType("*models.TrustedDevice")).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*models.TrustedDevice)
	}).Return(nil).Once()

	raw, device, err := svc.Issue(ctx, userID, "Firefox on Linux", "10.0.0.7", now)
	require.NoError(t, err)
	require.NotEmpty(t, raw)
	require.NotNil(t, stored)

	assert.Equal(t, security.HashToken(raw), stored.TokenHash)
	assert.NotContains(t, stored.TokenHash, raw)
	assert.Equal(t, "Firefox on Linux", stored.DeviceName)
	assert.Equal(t, now.Add(models.TrustedDeviceTTL), stored.ExpiresAt)
	assert.Equal(t, device.ID, stored.ID)
	repo.AssertExpectations(t)
}

func TestTrustedDeviceService_Issue_DefaultsDeviceName(t *testing.T) {
	ctx := context.Background()
	repo := new(MockTrustedDeviceRepository)
	svc := service.NewTrustedDeviceService(repo, kafka.NopPublisher{}, zap.NewNop())

	repo.On("Create", ctx, mock.MatchedBy(func(d *models.TrustedDevice) bool {
		return d.DeviceName == "Unknown browser"
	})).Return(nil).Once()

	_, _, err := svc.Issue(ctx, uuid.New(), "", "", time.Now().UTC())
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestTrustedDeviceService_Validate_TouchesRecord(t *testing.T) {
	ctx := context.Background()
	repo := new(MockTrustedDeviceRepository)
	svc := service.NewTrustedDeviceService(repo, kafka.NopPublisher{}, zap.NewNop())
	userID := uuid.New()
	now := time.Now().UTC()

	raw := "raw-device-token"
	device := &models.TrustedDevice{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: security.HashToken(raw),
		ExpiresAt: now.Add(24 * time.Hour),
	}
	repo.On("TouchByUserAndHash", ctx, userID, security.HashToken(raw), now).Return(device, nil).Once()

	got, err := svc.Validate(ctx, userID, raw, now)
	require.NoError(t, err)
	assert.Equal(t, device.ID, got.ID)
	repo.AssertExpectations(t)
}

func TestTrustedDeviceService_Validate_UnknownExpiredRevokedLookAlike(t *testing.T) {
	ctx := context.Background()
	repo := new(MockTrustedDeviceRepository)
	svc := service.NewTrustedDeviceService(repo, kafka.NopPublisher{}, zap.NewNop())
	userID := uuid.New()
	now := time.Now().UTC()

	// The repository reports ErrNotFound for unknown, expired and revoked
	// hashes alike; the service folds them all into one error.
	repo.On("TouchByUserAndHash", ctx, userID, mock.Anything, now).Return(nil, domainErrors.ErrNotFound)

	_, err := svc.Validate(ctx, userID, "expired-or-unknown", now)
	assert.ErrorIs(t, err, domainErrors.ErrDeviceTokenInvalid)

	_, err = svc.Validate(ctx, userID, "", now)
	assert.ErrorIs(t, err, domainErrors.ErrDeviceTokenInvalid)
}

func TestTrustedDeviceService_Revoke_CrossUserIsNoop(t *testing.T) {
	ctx := context.Background()
	repo := new(MockTrustedDeviceRepository)
	svc := service.NewTrustedDeviceService(repo, kafka.NopPublisher{}, zap.NewNop())
	owner := uuid.New()
	stranger := uuid.New()
	deviceID := uuid.New()

	// Scoped delete: the repository simply matches no row for a stranger.
	repo.On("DeleteByIDAndUser", ctx, deviceID, stranger).Return(nil).Once()

	require.NoError(t, svc.Revoke(ctx, stranger, deviceID))
	repo.AssertNotCalled(t, "DeleteByIDAndUser", ctx, deviceID, owner)
}

func TestTrustedDeviceService_RevokeAll(t *testing.T) {
	ctx := context.Background()
	repo := new(MockTrustedDeviceRepository)
	svc := service.NewTrustedDeviceService(repo, kafka.NopPublisher{}, zap.NewNop())
	userID := uuid.New()

	repo.On("DeleteAllByUser", ctx, userID).Return(int64(3), nil).Once()

	n, err := svc.RevokeAll(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestTrustedDeviceService_List_OmitsHashes(t *testing.T) {
	ctx := context.Background()
	repo := new(MockTrustedDeviceRepository)
	svc := service.NewTrustedDeviceService(repo, kafka.NopPublisher{}, zap.NewNop())
	userID := uuid.New()
	now := time.Now().UTC()

	repo.On("ListByUser", ctx, userID).Return([]models.TrustedDevice{
		{ID: uuid.New(), UserID: userID, TokenHash: "aaaa", DeviceName: "Laptop", CreatedAt: now, ExpiresAt: now.Add(time.Hour)},
		{ID: uuid.New(), UserID: userID, TokenHash: "bbbb", DeviceName: "Phone", CreatedAt: now, ExpiresAt: now.Add(time.Hour)},
	}, nil).Once()

	infos, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "Laptop", infos[0].DeviceName)
	assert.Equal(t, "Phone", infos[1].DeviceName)
}
