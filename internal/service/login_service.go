// File: internal/service/login_service.go
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inkwell-cms/admin-auth/internal/config"
	domainErrors "github.com/inkwell-cms/admin-auth/internal/domain/errors"
	"github.com/inkwell-cms/admin-auth/internal/domain/interfaces"
	"github.com/inkwell-cms/admin-auth/internal/domain/models"
	"github.com/inkwell-cms/admin-auth/internal/domain/repository"
	"github.com/inkwell-cms/admin-auth/internal/events/kafka"
	"github.com/inkwell-cms/admin-auth/internal/utils/logger"
	"github.com/inkwell-cms/admin-auth/internal/utils/random"
)

// challengeTokenBytes is the entropy carried by an opaque challenge token.
const challengeTokenBytes = 32

// RequestMeta carries transport-level facts the audit trail records.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// LoginService drives the login state machine:
//
//	ANONYMOUS -> credentials checked -> AUTHENTICATED
//	                                 |  NEEDS_2FA_SETUP
//	                                 |  TWOFA_PENDING -> AUTHENTICATED
//
// It is the only component that writes LoginAttempt records.
type LoginService struct {
	users        repository.UserRepository
	attempts     repository.LoginAttemptRepository
	passwords    interfaces.PasswordService
	devices      *TrustedDeviceService
	secondFactor *SecondFactorService
	challenges   interfaces.ChallengeStore
	sessions     interfaces.SessionTokenService
	events       kafka.Publisher
	cfg          config.AuthConfig
	logger       *zap.Logger
}

// NewLoginService creates a new LoginService.
func NewLoginService(
	users repository.UserRepository,
	attempts repository.LoginAttemptRepository,
	passwords interfaces.PasswordService,
	devices *TrustedDeviceService,
	secondFactor *SecondFactorService,
	challenges interfaces.ChallengeStore,
	sessions interfaces.SessionTokenService,
	events kafka.Publisher,
	cfg config.AuthConfig,
	logger *zap.Logger,
) *LoginService {
	return &LoginService{
		users:        users,
		attempts:     attempts,
		passwords:    passwords,
		devices:      devices,
		secondFactor: secondFactor,
		challenges:   challenges,
		sessions:     sessions,
		events:       events,
		cfg:          cfg,
		logger:       logger,
	}
}

// SubmitCredentials runs the credential step. Outcomes:
//   - wrong identifier or password: ErrInvalidCredentials, identical in
//     both cases, with a failed LoginAttempt appended;
//   - valid trusted-device token presented: straight to AUTHENTICATED;
//   - no verified second factor: NEEDS_2FA_SETUP with a challenge token;
//   - otherwise: TWOFA_PENDING with a challenge token and method hint.
func (s *LoginService) SubmitCredentials(ctx context.Context, req models.LoginRequest, meta RequestMeta) (*models.LoginResult, error) {
	now := time.Now().UTC()

	user, err := s.findByIdentifier(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			s.recordAttempt(ctx, req.Identifier, nil, false, models.FailureReasonBadCredentials, meta, now)
			s.publishLoginFailed(ctx, "", req.Identifier, "user_not_found", meta)
			return nil, domainErrors.ErrInvalidCredentials
		}
		return nil, err
	}

	match, err := s.passwords.CheckPasswordHash(req.Password, user.PasswordHash)
	if err != nil {
		s.logger.Error("Password hash check failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		return nil, err
	}
	if !match {
		s.recordAttempt(ctx, req.Identifier, &user.ID, false, models.FailureReasonBadCredentials, meta, now)
		s.publishLoginFailed(ctx, user.ID.String(), req.Identifier, "invalid_password", meta)
		return nil, domainErrors.ErrInvalidCredentials
	}

	// Trusted-device short-circuit. Any token failure silently falls
	// through to the full challenge; it is never a hard error.
	if req.DeviceToken != "" {
		if _, err := s.devices.Validate(ctx, user.ID, req.DeviceToken, now); err == nil {
			return s.authenticate(ctx, user, req.Identifier, "trusted_device", meta, now)
		} else if !errors.Is(err, domainErrors.ErrDeviceTokenInvalid) {
			return nil, err
		}
	}

	if !user.HasVerifiedSecondFactor() {
		token, err := s.stashChallenge(ctx, user, true, now)
		if err != nil {
			return nil, err
		}
		return &models.LoginResult{
			State:          models.LoginStateNeedsSetup,
			User:           user,
			ChallengeToken: token,
		}, nil
	}

	emailSent, err := s.secondFactor.Challenge(ctx, user, now)
	if err != nil && !errors.Is(err, domainErrors.ErrDeliveryFailed) {
		return nil, err
	}
	token, stashErr := s.stashChallenge(ctx, user, false, now)
	if stashErr != nil {
		return nil, stashErr
	}

	result := &models.LoginResult{
		State:          models.LoginStatePending2FA,
		User:           user,
		ChallengeToken: token,
		MethodHint:     user.TwoFactorMethod,
		EmailCodeSent:  emailSent,
	}
	// Delivery failure on an email-only method is surfaced with the
	// challenge still live, so the client can retry via resend.
	return result, err
}

// SubmitSecondFactor resolves a pending challenge with a submitted code.
// A rejection leaves the challenge live (the login stays TWOFA_PENDING);
// an expired or unknown challenge token returns the flow to ANONYMOUS.
func (s *LoginService) SubmitSecondFactor(ctx context.Context, req models.TwoFactorSubmitRequest, meta RequestMeta) (*models.LoginResult, error) {
	now := time.Now().UTC()

	challenge, err := s.challenges.Get(ctx, req.ChallengeToken)
	if err != nil {
		return nil, err
	}
	if challenge.SetupRequired {
		return nil, domainErrors.ErrTwoFactorNotConfigured
	}

	user, err := s.users.FindByID(ctx, challenge.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.secondFactor.VerifySubmission(ctx, user, req.Code, now); err != nil {
		if domainErrors.IsCodeRejection(err) || errors.Is(err, domainErrors.ErrTwoFactorNotConfigured) {
			s.recordAttempt(ctx, challenge.Email, &user.ID, false, models.FailureReasonTwoFAFailed, meta, now)
			s.publishLoginFailed(ctx, user.ID.String(), challenge.Email, "2fa_failed", meta)
		}
		return nil, err
	}

	if err := s.challenges.Delete(ctx, req.ChallengeToken); err != nil {
		s.logger.Error("Failed to delete resolved challenge", zap.Error(err))
	}

	result, err := s.authenticate(ctx, user, challenge.Email, string(user.TwoFactorMethod), meta, now)
	if err != nil {
		return nil, err
	}
	if req.TrustDevice {
		raw, _, err := s.devices.Issue(ctx, user.ID, req.DeviceName, meta.IPAddress, now)
		if err != nil {
			// The session is already granted; a failed device issue only
			// costs the user a future prompt.
			s.logger.Error("Failed to issue trusted device", zap.String("user_id", user.ID.String()), zap.Error(err))
		} else {
			result.DeviceToken = raw
		}
	}
	return result, nil
}

// ResendEmailCode issues and mails a fresh code for a live challenge.
func (s *LoginService) ResendEmailCode(ctx context.Context, challengeToken string) error {
	now := time.Now().UTC()

	challenge, err := s.challenges.Get(ctx, challengeToken)
	if err != nil {
		return err
	}
	method := challenge.Method
	if challenge.SetupRequired {
		method = challenge.PendingMethod
	}
	if !method.UsesEmail() {
		return domainErrors.ErrTwoFactorNotConfigured
	}

	user, err := s.users.FindByID(ctx, challenge.UserID)
	if err != nil {
		return err
	}
	return s.secondFactor.IssueAndSendCode(ctx, user, now)
}

// CancelChallenge abandons a pending login, returning it to ANONYMOUS.
func (s *LoginService) CancelChallenge(ctx context.Context, challengeToken string) error {
	return s.challenges.Delete(ctx, challengeToken)
}

// RecentAttempts returns the newest audit entries recorded under the
// user's email identifier, newest first.
func (s *LoginService) RecentAttempts(ctx context.Context, userID uuid.UUID, limit int) ([]models.LoginAttemptInfo, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	attempts, err := s.attempts.ListByIdentifier(ctx, user.Email, limit)
	if err != nil {
		return nil, err
	}
	infos := make([]models.LoginAttemptInfo, 0, len(attempts))
	for i := range attempts {
		infos = append(infos, attempts[i].Info())
	}
	return infos, nil
}

// authenticate is the single gate to AUTHENTICATED: session token, success
// audit record and success event all happen here, nowhere else.
func (s *LoginService) authenticate(ctx context.Context, user *models.User, identifier, method string, meta RequestMeta, now time.Time) (*models.LoginResult, error) {
	sessionToken, err := s.sessions.Issue(user)
	if err != nil {
		return nil, err
	}

	s.recordAttempt(ctx, identifier, &user.ID, true, "", meta, now)
	s.events.Publish(ctx, kafka.EventLoginSucceeded, user.ID.String(), kafka.LoginEventPayload{
		UserID:     user.ID.String(),
		Identifier: identifier,
		IPAddress:  meta.IPAddress,
		Method:     method,
	})
	logger.WithUserID(s.logger, user.ID.String()).Info("User authenticated",
		zap.String("method", method),
	)

	return &models.LoginResult{
		State:        models.LoginStateAuthenticated,
		User:         user,
		SessionToken: sessionToken,
	}, nil
}

func (s *LoginService) stashChallenge(ctx context.Context, user *models.User, setupRequired bool, now time.Time) (string, error) {
	token, err := random.GenerateSecureToken(challengeTokenBytes)
	if err != nil {
		return "", err
	}
	challenge := &models.PendingChallenge{
		UserID:        user.ID,
		Email:         user.Email,
		DisplayName:   user.DisplayName,
		Method:        user.TwoFactorMethod,
		SetupRequired: setupRequired,
		CreatedAt:     now,
	}
	ttl := s.cfg.ChallengeTTL
	if ttl <= 0 {
		ttl = models.PendingChallengeTTL
	}
	if err := s.challenges.Put(ctx, token, challenge, ttl); err != nil {
		return "", err
	}
	return token, nil
}

// findByIdentifier resolves an email-looking identifier against emails
// first and usernames second, and the other way around otherwise.
func (s *LoginService) findByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	likelyEmail := strings.Contains(identifier, "@")

	var user *models.User
	var err error
	if likelyEmail {
		user, err = s.users.FindByEmail(ctx, identifier)
	} else {
		user, err = s.users.FindByUsername(ctx, identifier)
	}
	if errors.Is(err, domainErrors.ErrNotFound) {
		if likelyEmail {
			user, err = s.users.FindByUsername(ctx, identifier)
		} else {
			user, err = s.users.FindByEmail(ctx, identifier)
		}
	}
	return user, err
}

// recordAttempt appends to the audit trail. Audit write failures are
// logged, never propagated: they must not change an auth decision.
func (s *LoginService) recordAttempt(ctx context.Context, identifier string, userID *uuid.UUID, success bool, reason string, meta RequestMeta, now time.Time) {
	attempt := &models.LoginAttempt{
		Identifier: identifier,
		UserID:     userID,
		Success:    success,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
		CreatedAt:  now,
	}
	if reason != "" {
		attempt.FailureReason = &reason
	}
	if err := s.attempts.Create(ctx, attempt); err != nil {
		s.logger.Error("Failed to record login attempt", zap.Error(err))
	}
}

func (s *LoginService) publishLoginFailed(ctx context.Context, userID, identifier, reason string, meta RequestMeta) {
	s.events.Publish(ctx, kafka.EventLoginFailed, identifier, kafka.LoginEventPayload{
		UserID:     userID,
		Identifier: identifier,
		Reason:     reason,
		IPAddress:  meta.IPAddress,
	})
}
