// File: internal/service/trusted_device_service.go
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainErrors "github.com/inkwell-cms/admin-auth/internal/domain/errors"
	"github.com/inkwell-cms/admin-auth/internal/domain/models"
	"github.com/inkwell-cms/admin-auth/internal/domain/repository"
	"github.com/inkwell-cms/admin-auth/internal/events/kafka"
	"github.com/inkwell-cms/admin-auth/internal/infrastructure/security"
	"github.com/inkwell-cms/admin-auth/internal/utils/random"
)

// deviceTokenBytes is the entropy carried by a trusted-device token.
const deviceTokenBytes = 32

// TrustedDeviceService manages second-factor bypass tokens for recognized
// devices. Raw tokens leave this service exactly once, at issue time.
type TrustedDeviceService struct {
	devices repository.TrustedDeviceRepository
	events  kafka.Publisher
	logger  *zap.Logger
}

// NewTrustedDeviceService creates a new TrustedDeviceService.
func NewTrustedDeviceService(devices repository.TrustedDeviceRepository, events kafka.Publisher, logger *zap.Logger) *TrustedDeviceService {
	return &TrustedDeviceService{devices: devices, events: events, logger: logger}
}

// Issue mints a bypass token for the device, persisting only its hash.
// The expiry is fixed at issue time and never extended.
func (s *TrustedDeviceService) Issue(ctx context.Context, userID uuid.UUID, deviceName, ipAddress string, now time.Time) (string, *models.TrustedDevice, error) {
	raw, err := random.GenerateSecureToken(deviceTokenBytes)
	if err != nil {
		return "", nil, err
	}
	if deviceName == "" {
		deviceName = "Unknown browser"
	}

	device := &models.TrustedDevice{
		ID:         uuid.New(),
		UserID:     userID,
		TokenHash:  security.HashToken(raw),
		DeviceName: deviceName,
		IPAddress:  ipAddress,
		CreatedAt:  now,
		ExpiresAt:  now.Add(models.TrustedDeviceTTL),
	}
	if err := s.devices.Create(ctx, device); err != nil {
		return "", nil, err
	}

	s.events.Publish(ctx, kafka.EventDeviceTrusted, userID.String(), kafka.DeviceEventPayload{
		UserID:     userID.String(),
		DeviceID:   device.ID.String(),
		DeviceName: deviceName,
	})
	s.logger.Info("Trusted device issued",
		zap.String("user_id", userID.String()),
		zap.String("device_id", device.ID.String()),
		zap.Time("expires_at", device.ExpiresAt),
	)
	return raw, device, nil
}

// Validate checks a presented token for the user and stamps last_used_at.
// Unknown, expired and revoked tokens are the same indistinguishable
// ErrDeviceTokenInvalid; the lookup happens at use time, never from a
// cache, so a racing revoke wins.
func (s *TrustedDeviceService) Validate(ctx context.Context, userID uuid.UUID, presented string, now time.Time) (*models.TrustedDevice, error) {
	if presented == "" {
		return nil, domainErrors.ErrDeviceTokenInvalid
	}
	device, err := s.devices.TouchByUserAndHash(ctx, userID, security.HashToken(presented), now)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, domainErrors.ErrDeviceTokenInvalid
		}
		return nil, err
	}
	return device, nil
}

// Revoke deletes one token scoped to its owner. A cross-user or unknown id
// is a no-op rather than an error, so revocation leaks nothing.
func (s *TrustedDeviceService) Revoke(ctx context.Context, userID, deviceID uuid.UUID) error {
	if err := s.devices.DeleteByIDAndUser(ctx, deviceID, userID); err != nil {
		return err
	}
	s.events.Publish(ctx, kafka.EventDeviceRevoked, userID.String(), kafka.DeviceEventPayload{
		UserID:   userID.String(),
		DeviceID: deviceID.String(),
	})
	return nil
}

// RevokeAll deletes every token for the user.
func (s *TrustedDeviceService) RevokeAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.devices.DeleteAllByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.events.Publish(ctx, kafka.EventDeviceRevoked, userID.String(), kafka.DeviceEventPayload{
			UserID: userID.String(),
		})
	}
	s.logger.Info("Revoked all trusted devices",
		zap.String("user_id", userID.String()),
		zap.Int64("count", n),
	)
	return n, nil
}

// List returns display metadata for the user's devices. Token hashes never
// leave the repository layer in this form.
func (s *TrustedDeviceService) List(ctx context.Context, userID uuid.UUID) ([]models.TrustedDeviceInfo, error) {
	devices, err := s.devices.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	infos := make([]models.TrustedDeviceInfo, 0, len(devices))
	for i := range devices {
		infos = append(infos, devices[i].Info())
	}
	return infos, nil
}
