// File: internal/service/setup_service_test.go
package service_test

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inkwell-cms/admin-auth/internal/config"
	domainErrors "github.com/inkwell-cms/admin-auth/internal/domain/errors"
	"github.com/inkwell-cms/admin-auth/internal/domain/models"
	"github.com/inkwell-cms/admin-auth/internal/events/kafka"
	"github.com/inkwell-cms/admin-auth/internal/infrastructure/security"
	"github.com/inkwell-cms/admin-auth/internal/service"
	"github.com/inkwell-cms/admin-auth/internal/utils/totp"
)

type setupFixture struct {
	users      *MockUserRepository
	attempts   *MockLoginAttemptRepository
	deviceRepo *MockTrustedDeviceRepository
	codes      *MockEmailCodeRepository
	mailer     *MockMailer
	challenges *memChallengeStore
	encrypter  *security.Encrypter
	setup      *service.SetupService
}

func newSetupFixture(t *testing.T) *setupFixture {
	t.Helper()
	users := new(MockUserRepository)
	attempts := new(MockLoginAttemptRepository)
	deviceRepo := new(MockTrustedDeviceRepository)
	codes := new(MockEmailCodeRepository)
	mailer := new(MockMailer)
	challenges := newMemChallengeStore()
	encrypter := newTestEncrypter()

	sessions, err := security.NewSessionTokenService("0123456789abcdef0123456789abcdef", time.Hour)
	require.NoError(t, err)

	logger := zap.NewNop()
	emailCodes := service.NewEmailCodeService(codes, logger)
	devices := service.NewTrustedDeviceService(deviceRepo, kafka.NopPublisher{}, logger)
	secondFactor := service.NewSecondFactorService(users, emailCodes, mailer, encrypter, logger)

	cfg := config.AuthConfig{TOTPIssuer: "Inkwell CMS", ChallengeTTL: 5 * time.Minute}
	setup := service.NewSetupService(
		users, attempts, secondFactor, devices,
		challenges, sessions, encrypter, kafka.NopPublisher{}, cfg, logger,
	)
	return &setupFixture{
		users:      users,
		attempts:   attempts,
		deviceRepo: deviceRepo,
		codes:      codes,
		mailer:     mailer,
		challenges: challenges,
		encrypter:  encrypter,
		setup:      setup,
	}
}

func (f *setupFixture) freshUser() *models.User {
	return &models.User{
		ID:              uuid.New(),
		Email:           "newbie@inkwell.local",
		Username:        "newbie",
		DisplayName:     "Newbie",
		TwoFactorMethod: models.TwoFactorNone,
	}
}

func (f *setupFixture) stashSetupChallenge(t *testing.T, user *models.User) string {
	t.Helper()
	token := "setup-challenge-token"
	err := f.challenges.Put(context.Background(), token, &models.PendingChallenge{
		UserID:        user.ID,
		Email:         user.Email,
		DisplayName:   user.DisplayName,
		Method:        user.TwoFactorMethod,
		SetupRequired: true,
		CreatedAt:     time.Now().UTC(),
	}, 5*time.Minute)
	require.NoError(t, err)
	return token
}

func TestSetupService_BeginTOTP_ReturnsProvisioningURI(t *testing.T) {
	f := newSetupFixture(t)
	ctx := context.Background()
	user := f.freshUser()
	token := f.stashSetupChallenge(t, user)

	f.users.On("FindByID", ctx, user.ID).Return(user, nil)

	info, err := f.setup.BeginSetup(ctx, token, "totp")
	require.NoError(t, err)
	assert.Equal(t, models.TwoFactorTOTP, info.Method)
	assert.False(t, info.EmailCodeSent)

	require.True(t, strings.HasPrefix(info.ProvisioningURI, "otpauth://totp/"))
	parsed, err := url.Parse(info.ProvisioningURI)
	require.NoError(t, err)
	assert.Equal(t, "Inkwell CMS", parsed.Query().Get("issuer"))
	assert.NotEmpty(t, parsed.Query().Get("secret"))

	// The user record is untouched until the first code is verified.
	f.users.AssertNotCalled(t, "UpdateTwoFactor", mock.Anything, mock.Anything)

	challenge, err := f.challenges.Get(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, models.TwoFactorTOTP, challenge.PendingMethod)
	assert.NotEmpty(t, challenge.PendingSecretEnc)
	assert.NotContains(t, challenge.PendingSecretEnc, parsed.Query().Get("secret"))
}

func TestSetupService_BeginEmail_SendsCode(t *testing.T) {
	f := newSetupFixture(t)
	ctx := context.Background()
	user := f.freshUser()
	token := f.stashSetupChallenge(t, user)

	f.users.On("FindByID", ctx, user.ID).Return(user, nil)
	f.codes.On("DeleteByUserID", ctx, user.ID).Return(int64(0), nil)
	f.codes.On("Create", ctx, mock.Anything).Return(nil)
	f.mailer.On("Send", ctx, user.Email, mock.Anything, mock.Anything).Return(nil)

	info, err := f.setup.BeginSetup(ctx, token, "email")
	require.NoError(t, err)
	assert.Equal(t, models.TwoFactorEmail, info.Method)
	assert.True(t, info.EmailCodeSent)
	assert.Empty(t, info.ProvisioningURI)
}

func TestSetupService_BeginRejectsUnknownMethod(t *testing.T) {
	f := newSetupFixture(t)
	ctx := context.Background()
	user := f.freshUser()
	token := f.stashSetupChallenge(t, user)

	_, err := f.setup.BeginSetup(ctx, token, "sms")
	assert.Error(t, err)

	_, err = f.setup.BeginSetup(ctx, token, "none")
	assert.ErrorIs(t, err, domainErrors.ErrTwoFactorNotConfigured)
}

func TestSetupService_BeginRejectsNonSetupChallenge(t *testing.T) {
	f := newSetupFixture(t)
	ctx := context.Background()
	user := f.freshUser()
	token := "regular-challenge"
	require.NoError(t, f.challenges.Put(ctx, token, &models.PendingChallenge{
		UserID: user.ID, Method: models.TwoFactorTOTP, SetupRequired: false,
	}, time.Minute))

	_, err := f.setup.BeginSetup(ctx, token, "totp")
	assert.ErrorIs(t, err, domainErrors.ErrConflict)
}

func TestSetupService_CompleteTOTP_EnablesAndAuthenticates(t *testing.T) {
	f := newSetupFixture(t)
	ctx := context.Background()
	user := f.freshUser()
	token := f.stashSetupChallenge(t, user)

	f.users.On("FindByID", ctx, user.ID).Return(user, nil)
	f.users.On("UpdateTwoFactor", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.ID == user.ID && u.TwoFactorMethod == models.TwoFactorTOTP &&
			u.TwoFactorVerified && u.TwoFactorSecretEnc != ""
	})).Return(nil).Once()
	f.users.On("AdvanceTwoFactorLastStep", ctx, user.ID, mock.AnythingOfType("int64")).Return(true, nil).Once()
	f.attempts.On("Create", ctx, mock.MatchedBy(func(a *models.LoginAttempt) bool {
		return a.Success
	})).Return(nil).Once()

	info, err := f.setup.BeginSetup(ctx, token, "totp")
	require.NoError(t, err)

	parsed, err := url.Parse(info.ProvisioningURI)
	require.NoError(t, err)
	secret := parsed.Query().Get("secret")
	code, err := totp.CurrentCode(secret, time.Now().UTC())
	require.NoError(t, err)

	result, err := f.setup.CompleteSetup(ctx, models.SetupCompleteRequest{
		ChallengeToken: token, Code: code,
	}, testMeta)
	require.NoError(t, err)
	assert.Equal(t, models.LoginStateAuthenticated, result.State)
	assert.NotEmpty(t, result.SessionToken)
	f.users.AssertExpectations(t)

	// The setup challenge is consumed.
	_, err = f.challenges.Get(ctx, token)
	assert.ErrorIs(t, err, domainErrors.ErrChallengeNotFound)
}

func TestSetupService_CompleteTOTP_WrongCodeLeavesUserUntouched(t *testing.T) {
	f := newSetupFixture(t)
	ctx := context.Background()
	user := f.freshUser()
	token := f.stashSetupChallenge(t, user)

	f.users.On("FindByID", ctx, user.ID).Return(user, nil)
	f.attempts.On("Create", ctx, mock.MatchedBy(func(a *models.LoginAttempt) bool {
		return !a.Success && a.FailureReason != nil &&
			*a.FailureReason == models.FailureReasonSetupFailed
	})).Return(nil).Once()

	_, err := f.setup.BeginSetup(ctx, token, "totp")
	require.NoError(t, err)

	_, err = f.setup.CompleteSetup(ctx, models.SetupCompleteRequest{
		ChallengeToken: token, Code: "000000",
	}, testMeta)
	assert.ErrorIs(t, err, domainErrors.ErrInvalidCode)
	f.users.AssertNotCalled(t, "UpdateTwoFactor", mock.Anything, mock.Anything)

	// Challenge stays live for another attempt.
	_, err = f.challenges.Get(ctx, token)
	require.NoError(t, err)
	f.attempts.AssertExpectations(t)
}

func TestSetupService_CompleteEmail_ConsumesEmailedCode(t *testing.T) {
	f := newSetupFixture(t)
	ctx := context.Background()
	user := f.freshUser()
	token := f.stashSetupChallenge(t, user)
	now := time.Now().UTC()

	var issued string
	f.users.On("FindByID", ctx, user.ID).Return(user, nil)
	f.codes.On("DeleteByUserID", ctx, user.ID).Return(int64(0), nil)
	f.codes.On("Create", ctx, mock.AnythingOfType("*models.EmailCode")).Return(nil)
	f.mailer.On("Send", ctx, user.Email, mock.Anything, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			body := args.String(3)
			for _, field := range strings.Fields(body) {
				if len(field) == 6 {
					digits := true
					for _, r := range field {
						if r < '0' || r > '9' {
							digits = false
						}
					}
					if digits {
						issued = field
					}
				}
			}
		}).Return(nil)

	_, err := f.setup.BeginSetup(ctx, token, "email")
	require.NoError(t, err)
	require.NotEmpty(t, issued)

	emailed := &models.EmailCode{
		ID:        uuid.New(),
		UserID:    user.ID,
		CodeHash:  security.HashToken(issued),
		ExpiresAt: now.Add(models.EmailCodeTTL),
	}
	f.codes.On("FindLatestUnusedByUserID", ctx, user.ID).Return(emailed, nil).Once()
	f.codes.On("MarkUsed", ctx, emailed.ID, mock.Anything).Return(nil).Once()
	f.users.On("UpdateTwoFactor", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.TwoFactorMethod == models.TwoFactorEmail && u.TwoFactorVerified &&
			u.TwoFactorSecretEnc == ""
	})).Return(nil).Once()
	f.attempts.On("Create", ctx, mock.Anything).Return(nil)

	result, err := f.setup.CompleteSetup(ctx, models.SetupCompleteRequest{
		ChallengeToken: token, Code: issued,
	}, testMeta)
	require.NoError(t, err)
	assert.Equal(t, models.LoginStateAuthenticated, result.State)
	f.users.AssertExpectations(t)
}

func TestSetupService_CompleteWithTrustDevice(t *testing.T) {
	f := newSetupFixture(t)
	ctx := context.Background()
	user := f.freshUser()
	token := f.stashSetupChallenge(t, user)

	f.users.On("FindByID", ctx, user.ID).Return(user, nil)
	f.users.On("UpdateTwoFactor", ctx, mock.Anything).Return(nil)
	f.users.On("AdvanceTwoFactorLastStep", ctx, user.ID, mock.AnythingOfType("int64")).Return(true, nil)
	f.attempts.On("Create", ctx, mock.Anything).Return(nil)
	f.deviceRepo.On("Create", ctx, mock.AnythingOfType("*models.TrustedDevice")).Return(nil).Once()

	info, err := f.setup.BeginSetup(ctx, token, "totp")
	require.NoError(t, err)

	parsed, err := url.Parse(info.ProvisioningURI)
	require.NoError(t, err)
	code, err := totp.CurrentCode(parsed.Query().Get("secret"), time.Now().UTC())
	require.NoError(t, err)

	result, err := f.setup.CompleteSetup(ctx, models.SetupCompleteRequest{
		ChallengeToken: token,
		Code:           code,
		TrustDevice:    true,
		DeviceName:     "Work laptop",
	}, testMeta)
	require.NoError(t, err)
	assert.NotEmpty(t, result.DeviceToken)
	f.deviceRepo.AssertExpectations(t)
}
