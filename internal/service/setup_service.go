// File: internal/service/setup_service.go
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/inkwell-cms/admin-auth/internal/config"
	domainErrors "github.com/inkwell-cms/admin-auth/internal/domain/errors"
	"github.com/inkwell-cms/admin-auth/internal/domain/interfaces"
	"github.com/inkwell-cms/admin-auth/internal/domain/models"
	"github.com/inkwell-cms/admin-auth/internal/domain/repository"
	"github.com/inkwell-cms/admin-auth/internal/events/kafka"
	"github.com/inkwell-cms/admin-auth/internal/infrastructure/security"
	"github.com/inkwell-cms/admin-auth/internal/utils/totp"
)

// SetupService runs mandatory first-login enrollment. A user lands here
// when credentials check out but no verified second factor exists yet;
// no session is granted until CompleteSetup verifies a real code.
type SetupService struct {
	users        repository.UserRepository
	attempts     repository.LoginAttemptRepository
	secondFactor *SecondFactorService
	devices      *TrustedDeviceService
	challenges   interfaces.ChallengeStore
	sessions     interfaces.SessionTokenService
	encrypter    *security.Encrypter
	events       kafka.Publisher
	cfg          config.AuthConfig
	logger       *zap.Logger
}

// NewSetupService creates a new SetupService.
func NewSetupService(
	users repository.UserRepository,
	attempts repository.LoginAttemptRepository,
	secondFactor *SecondFactorService,
	devices *TrustedDeviceService,
	challenges interfaces.ChallengeStore,
	sessions interfaces.SessionTokenService,
	encrypter *security.Encrypter,
	events kafka.Publisher,
	cfg config.AuthConfig,
	logger *zap.Logger,
) *SetupService {
	return &SetupService{
		users:        users,
		attempts:     attempts,
		secondFactor: secondFactor,
		devices:      devices,
		challenges:   challenges,
		sessions:     sessions,
		encrypter:    encrypter,
		events:       events,
		cfg:          cfg,
		logger:       logger,
	}
}

// BeginSetup binds a chosen method to a setup challenge. For methods with
// an authenticator component it mints a secret and returns the otpauth
// provisioning URI; for methods with an email component it dispatches a
// first code. The secret stays inside the challenge, encrypted, and is
// not written to the user until CompleteSetup proves possession.
func (s *SetupService) BeginSetup(ctx context.Context, challengeToken, methodRaw string) (*models.SetupInfo, error) {
	now := time.Now().UTC()

	challenge, err := s.challenges.Get(ctx, challengeToken)
	if err != nil {
		return nil, err
	}
	if !challenge.SetupRequired {
		return nil, domainErrors.ErrConflict
	}

	method, err := models.ParseTwoFactorMethod(methodRaw)
	if err != nil {
		return nil, err
	}
	if method == models.TwoFactorNone {
		return nil, domainErrors.ErrTwoFactorNotConfigured
	}

	user, err := s.users.FindByID(ctx, challenge.UserID)
	if err != nil {
		return nil, err
	}

	info := &models.SetupInfo{Method: method}

	if method.UsesTOTP() {
		secret, err := totp.GenerateSecret()
		if err != nil {
			return nil, err
		}
		enc, err := s.encrypter.EncryptString(secret)
		if err != nil {
			return nil, err
		}
		challenge.PendingSecretEnc = enc
		info.ProvisioningURI = totp.ProvisioningURI(secret, user.Email, s.cfg.TOTPIssuer)
	} else {
		challenge.PendingSecretEnc = ""
	}

	if method.UsesEmail() {
		if err := s.secondFactor.IssueAndSendCode(ctx, user, now); err != nil {
			return nil, err
		}
		info.EmailCodeSent = true
	}

	challenge.PendingMethod = method
	ttl := s.cfg.ChallengeTTL
	if ttl <= 0 {
		ttl = models.PendingChallengeTTL
	}
	if err := s.challenges.Put(ctx, challengeToken, challenge, ttl); err != nil {
		return nil, err
	}

	s.logger.Info("Second-factor enrollment started",
		zap.String("user_id", user.ID.String()),
		zap.String("method", string(method)),
	)
	return info, nil
}

// CompleteSetup verifies the first code against the pending method and,
// on success, persists the enrollment and authenticates the user. The
// verified flag flips here and only here.
func (s *SetupService) CompleteSetup(ctx context.Context, req models.SetupCompleteRequest, meta RequestMeta) (*models.LoginResult, error) {
	now := time.Now().UTC()

	challenge, err := s.challenges.Get(ctx, req.ChallengeToken)
	if err != nil {
		return nil, err
	}
	if !challenge.SetupRequired || challenge.PendingMethod == models.TwoFactorNone {
		return nil, domainErrors.ErrTwoFactorNotConfigured
	}

	user, err := s.users.FindByID(ctx, challenge.UserID)
	if err != nil {
		return nil, err
	}

	acceptedStep, err := s.verifyEnrollmentCode(ctx, challenge, user, req.Code, now)
	if err != nil {
		if domainErrors.IsCodeRejection(err) {
			s.recordAttempt(ctx, challenge.Email, user, meta, now)
		}
		return nil, err
	}

	user.TwoFactorMethod = challenge.PendingMethod
	user.TwoFactorSecretEnc = challenge.PendingSecretEnc
	user.TwoFactorVerified = true
	if err := s.users.UpdateTwoFactor(ctx, user); err != nil {
		return nil, err
	}
	if acceptedStep > user.TwoFactorLastStep {
		if _, err := s.users.AdvanceTwoFactorLastStep(ctx, user.ID, acceptedStep); err != nil {
			return nil, err
		}
		user.TwoFactorLastStep = acceptedStep
	}

	if err := s.challenges.Delete(ctx, req.ChallengeToken); err != nil {
		s.logger.Error("Failed to delete resolved setup challenge", zap.Error(err))
	}

	s.events.Publish(ctx, kafka.EventTwoFactorEnabled, user.ID.String(), kafka.LoginEventPayload{
		UserID: user.ID.String(),
		Method: string(user.TwoFactorMethod),
	})
	s.logger.Info("Second-factor enrollment completed",
		zap.String("user_id", user.ID.String()),
		zap.String("method", string(user.TwoFactorMethod)),
	)

	sessionToken, err := s.sessions.Issue(user)
	if err != nil {
		return nil, err
	}
	s.recordSuccess(ctx, challenge.Email, user, meta, now)
	s.events.Publish(ctx, kafka.EventLoginSucceeded, user.ID.String(), kafka.LoginEventPayload{
		UserID:     user.ID.String(),
		Identifier: challenge.Email,
		IPAddress:  meta.IPAddress,
		Method:     string(user.TwoFactorMethod),
	})

	result := &models.LoginResult{
		State:        models.LoginStateAuthenticated,
		User:         user,
		SessionToken: sessionToken,
	}
	if req.TrustDevice {
		raw, _, err := s.devices.Issue(ctx, user.ID, req.DeviceName, meta.IPAddress, now)
		if err != nil {
			s.logger.Error("Failed to issue trusted device", zap.String("user_id", user.ID.String()), zap.Error(err))
		} else {
			result.DeviceToken = raw
		}
	}
	return result, nil
}

// verifyEnrollmentCode checks the submitted code against the pending
// method. The authenticator path is tried first when both components are
// enrolled, mirroring the ordering of regular verification.
func (s *SetupService) verifyEnrollmentCode(ctx context.Context, challenge *models.PendingChallenge, user *models.User, code string, now time.Time) (int64, error) {
	var totpErr error
	if challenge.PendingMethod.UsesTOTP() {
		secret, err := s.encrypter.DecryptString(challenge.PendingSecretEnc)
		if err != nil {
			return 0, err
		}
		if step, ok := totp.VerifyStep(secret, code, now); ok {
			return step, nil
		}
		totpErr = domainErrors.ErrInvalidCode
	}

	if challenge.PendingMethod.UsesEmail() {
		if err := s.secondFactor.emailCodes.Consume(ctx, user.ID, code, now); err != nil {
			return 0, err
		}
		return 0, nil
	}
	if totpErr != nil {
		return 0, totpErr
	}
	return 0, domainErrors.ErrTwoFactorNotConfigured
}

func (s *SetupService) recordAttempt(ctx context.Context, identifier string, user *models.User, meta RequestMeta, now time.Time) {
	reason := models.FailureReasonSetupFailed
	attempt := &models.LoginAttempt{
		Identifier:    identifier,
		UserID:        &user.ID,
		Success:       false,
		FailureReason: &reason,
		IPAddress:     meta.IPAddress,
		UserAgent:     meta.UserAgent,
		CreatedAt:     now,
	}
	if err := s.attempts.Create(ctx, attempt); err != nil {
		s.logger.Error("Failed to record login attempt", zap.Error(err))
	}
}

func (s *SetupService) recordSuccess(ctx context.Context, identifier string, user *models.User, meta RequestMeta, now time.Time) {
	attempt := &models.LoginAttempt{
		Identifier: identifier,
		UserID:     &user.ID,
		Success:    true,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
		CreatedAt:  now,
	}
	if err := s.attempts.Create(ctx, attempt); err != nil {
		s.logger.Error("Failed to record login attempt", zap.Error(err))
	}
}
