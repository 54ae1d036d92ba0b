// File: internal/service/second_factor_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	domainErrors "github.com/inkwell-cms/admin-auth/internal/domain/errors"
	"github.com/inkwell-cms/admin-auth/internal/domain/interfaces"
	"github.com/inkwell-cms/admin-auth/internal/domain/models"
	"github.com/inkwell-cms/admin-auth/internal/domain/repository"
	"github.com/inkwell-cms/admin-auth/internal/infrastructure/security"
	"github.com/inkwell-cms/admin-auth/internal/utils/totp"
)

// SecondFactorService translates a user's configured method into challenge
// and accept/reject decisions. It holds no state of its own.
type SecondFactorService struct {
	users      repository.UserRepository
	emailCodes *EmailCodeService
	mailer     interfaces.Mailer
	encrypter  *security.Encrypter
	logger     *zap.Logger
}

// NewSecondFactorService creates a new SecondFactorService.
func NewSecondFactorService(
	users repository.UserRepository,
	emailCodes *EmailCodeService,
	mailer interfaces.Mailer,
	encrypter *security.Encrypter,
	logger *zap.Logger,
) *SecondFactorService {
	return &SecondFactorService{
		users:      users,
		emailCodes: emailCodes,
		mailer:     mailer,
		encrypter:  encrypter,
		logger:     logger,
	}
}

// Challenge prepares the second-factor prompt for the user's method.
// For email and both it issues and mails a code; for totp there is nothing
// to do beyond prompting. The returned flag says whether a code was
// actually delivered: a delivery failure under method both is swallowed
// (the authenticator path remains open), under method email it is returned
// as ErrDeliveryFailed.
func (s *SecondFactorService) Challenge(ctx context.Context, user *models.User, now time.Time) (bool, error) {
	switch user.TwoFactorMethod {
	case models.TwoFactorNone:
		return false, domainErrors.ErrTwoFactorNotConfigured
	case models.TwoFactorTOTP:
		return false, nil
	case models.TwoFactorEmail:
		if err := s.IssueAndSendCode(ctx, user, now); err != nil {
			return false, err
		}
		return true, nil
	case models.TwoFactorBoth:
		if err := s.IssueAndSendCode(ctx, user, now); err != nil {
			s.logger.Warn("Email code delivery failed, authenticator path still available",
				zap.String("user_id", user.ID.String()),
				zap.Error(err),
			)
			return false, nil
		}
		return true, nil
	}
	return false, fmt.Errorf("unhandled two-factor method %q", user.TwoFactorMethod)
}

// VerifySubmission decides whether a submitted code satisfies the user's
// configured method. For method both the TOTP path is checked first so a
// matching authenticator code never burns an unconsumed email code.
func (s *SecondFactorService) VerifySubmission(ctx context.Context, user *models.User, code string, now time.Time) error {
	switch user.TwoFactorMethod {
	case models.TwoFactorNone:
		return domainErrors.ErrTwoFactorNotConfigured
	case models.TwoFactorTOTP:
		return s.verifyTOTP(ctx, user, code, now)
	case models.TwoFactorEmail:
		return s.emailCodes.Consume(ctx, user.ID, code, now)
	case models.TwoFactorBoth:
		if err := s.verifyTOTP(ctx, user, code, now); err == nil {
			return nil
		}
		return s.emailCodes.Consume(ctx, user.ID, code, now)
	}
	return fmt.Errorf("unhandled two-factor method %q", user.TwoFactorMethod)
}

// verifyTOTP checks the code against the decrypted secret within the drift
// window and refuses replays: a code from a step at or before the last
// accepted one fails even though it is still inside the window.
func (s *SecondFactorService) verifyTOTP(ctx context.Context, user *models.User, code string, now time.Time) error {
	if user.TwoFactorSecretEnc == "" {
		return domainErrors.ErrTwoFactorNotConfigured
	}
	secret, err := s.encrypter.DecryptString(user.TwoFactorSecretEnc)
	if err != nil {
		return fmt.Errorf("failed to decrypt TOTP secret: %w", err)
	}

	step, ok := totp.VerifyStep(secret, code, now)
	if !ok {
		return domainErrors.ErrInvalidCode
	}
	if step <= user.TwoFactorLastStep {
		return domainErrors.ErrCodeAlreadyUsed
	}
	// The conditional update is the authoritative gate: concurrent
	// submissions that each loaded the user before either verified race
	// here, and only the one that moves the step forward is accepted.
	advanced, err := s.users.AdvanceTwoFactorLastStep(ctx, user.ID, step)
	if err != nil {
		return err
	}
	if !advanced {
		return domainErrors.ErrCodeAlreadyUsed
	}
	user.TwoFactorLastStep = step
	return nil
}

// IssueAndSendCode issues a fresh email code and delivers it.
func (s *SecondFactorService) IssueAndSendCode(ctx context.Context, user *models.User, now time.Time) error {
	code, err := s.emailCodes.Issue(ctx, user.ID, now)
	if err != nil {
		return err
	}

	subject := "Your sign-in code"
	body := fmt.Sprintf(
		"Hello %s,\r\n\r\n"+
			"Your one-time sign-in code is: %s\r\n\r\n"+
			"It expires in %d minutes. If you did not try to sign in, you can ignore this message.\r\n",
		user.DisplayName, code, int(models.EmailCodeTTL.Minutes()),
	)
	return s.mailer.Send(ctx, user.Email, subject, body)
}
