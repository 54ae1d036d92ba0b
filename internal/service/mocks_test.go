// File: internal/service/mocks_test.go
package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	domainErrors "github.com/inkwell-cms/admin-auth/internal/domain/errors"
	"github.com/inkwell-cms/admin-auth/internal/domain/models"
	"github.com/inkwell-cms/admin-auth/internal/infrastructure/security"
)

const testEncryptionKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func newTestEncrypter() *security.Encrypter {
	enc, err := security.NewEncrypter(testEncryptionKeyHex)
	if err != nil {
		panic(err)
	}
	return enc
}

// --- Mocks ---

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *MockUserRepository) UpdateTwoFactor(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepository) AdvanceTwoFactorLastStep(ctx context.Context, userID uuid.UUID, step int64) (bool, error) {
	args := m.Called(ctx, userID, step)
	return args.Bool(0), args.Error(1)
}

type MockEmailCodeRepository struct {
	mock.Mock
}

func (m *MockEmailCodeRepository) Create(ctx context.Context, code *models.EmailCode) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}
func (m *MockEmailCodeRepository) FindLatestUnusedByUserID(ctx context.Context, userID uuid.UUID) (*models.EmailCode, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EmailCode), args.Error(1)
}
func (m *MockEmailCodeRepository) MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	args := m.Called(ctx, id, usedAt)
	return args.Error(0)
}
func (m *MockEmailCodeRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockEmailCodeRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

type MockTrustedDeviceRepository struct {
	mock.Mock
}

func (m *MockTrustedDeviceRepository) Create(ctx context.Context, device *models.TrustedDevice) error {
	args := m.Called(ctx, device)
	return args.Error(0)
}
func (m *MockTrustedDeviceRepository) TouchByUserAndHash(ctx context.Context, userID uuid.UUID, tokenHash string, usedAt time.Time) (*models.TrustedDevice, error) {
	args := m.Called(ctx, userID, tokenHash, usedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TrustedDevice), args.Error(1)
}
func (m *MockTrustedDeviceRepository) DeleteByIDAndUser(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}
func (m *MockTrustedDeviceRepository) DeleteAllByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockTrustedDeviceRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.TrustedDevice, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TrustedDevice), args.Error(1)
}

type MockLoginAttemptRepository struct {
	mock.Mock
}

func (m *MockLoginAttemptRepository) Create(ctx context.Context, attempt *models.LoginAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}
func (m *MockLoginAttemptRepository) ListByIdentifier(ctx context.Context, identifier string, limit int) ([]models.LoginAttempt, error) {
	args := m.Called(ctx, identifier, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LoginAttempt), args.Error(1)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

type MockPasswordService struct {
	mock.Mock
}

func (m *MockPasswordService) HashPassword(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}
func (m *MockPasswordService) CheckPasswordHash(password, encodedHash string) (bool, error) {
	args := m.Called(password, encodedHash)
	return args.Bool(0), args.Error(1)
}

// memChallengeStore is an in-memory stand-in for the redis-backed store.
// TTLs are recorded but not enforced; tests exercise expiry by deleting.
type memChallengeStore struct {
	mu         sync.Mutex
	challenges map[string]*models.PendingChallenge
}

func newMemChallengeStore() *memChallengeStore {
	return &memChallengeStore{challenges: make(map[string]*models.PendingChallenge)}
}

func (s *memChallengeStore) Put(ctx context.Context, token string, challenge *models.PendingChallenge, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *challenge
	s.challenges[token] = &copied
	return nil
}

func (s *memChallengeStore) Get(ctx context.Context, token string) (*models.PendingChallenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	challenge, ok := s.challenges[token]
	if !ok {
		return nil, domainErrors.ErrChallengeNotFound
	}
	copied := *challenge
	return &copied, nil
}

func (s *memChallengeStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.challenges, token)
	return nil
}
