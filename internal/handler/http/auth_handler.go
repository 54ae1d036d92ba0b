// File: internal/handler/http/auth_handler.go
package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainErrors "github.com/inkwell-cms/admin-auth/internal/domain/errors"
	"github.com/inkwell-cms/admin-auth/internal/domain/models"
	"github.com/inkwell-cms/admin-auth/internal/service"
)

// AuthHandler exposes the login state machine over HTTP.
type AuthHandler struct {
	login  *service.LoginService
	setup  *service.SetupService
	logger *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(login *service.LoginService, setup *service.SetupService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{login: login, setup: setup, logger: logger}
}

func requestMeta(c *gin.Context) service.RequestMeta {
	return service.RequestMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// Login handles the credential step.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", "invalid_payload", h.logger)
		return
	}

	result, err := h.login.SubmitCredentials(c.Request.Context(), req, requestMeta(c))
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidCredentials):
			ErrorResponse(c, http.StatusUnauthorized, "Invalid credentials", "invalid_credentials", h.logger)
		case errors.Is(err, domainErrors.ErrDeliveryFailed):
			// The challenge is live; the client may retry via resend or use
			// the authenticator path.
			h.respondLoginResult(c, result)
		default:
			h.logger.Error("Login failed", zap.Error(err))
			ErrorResponse(c, http.StatusInternalServerError, "Login failed", "internal_error", h.logger)
		}
		return
	}
	h.respondLoginResult(c, result)
}

// Verify2FA handles the second-factor step of a pending login.
func (h *AuthHandler) Verify2FA(c *gin.Context) {
	var req models.TwoFactorSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", "invalid_payload", h.logger)
		return
	}

	result, err := h.login.SubmitSecondFactor(c.Request.Context(), req, requestMeta(c))
	if err != nil {
		h.respondChallengeError(c, err, "Verification failed")
		return
	}
	h.respondLoginResult(c, result)
}

// ResendCode dispatches a fresh emailed code for a live challenge.
func (h *AuthHandler) ResendCode(c *gin.Context) {
	var req models.ResendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", "invalid_payload", h.logger)
		return
	}

	if err := h.login.ResendEmailCode(c.Request.Context(), req.ChallengeToken); err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrChallengeNotFound):
			ErrorResponse(c, http.StatusUnauthorized, "Challenge not found or expired", "challenge_expired", h.logger)
		case errors.Is(err, domainErrors.ErrTwoFactorNotConfigured):
			ErrorResponse(c, http.StatusConflict, "Email codes are not enabled for this account", "method_mismatch", h.logger)
		case errors.Is(err, domainErrors.ErrDeliveryFailed):
			ErrorResponse(c, http.StatusBadGateway, "Could not deliver the code, try again later", "delivery_failed", h.logger)
		default:
			h.logger.Error("Resend failed", zap.Error(err))
			ErrorResponse(c, http.StatusInternalServerError, "Could not resend code", "internal_error", h.logger)
		}
		return
	}
	MessageResponse(c, http.StatusOK, "Code sent")
}

// BeginSetup starts mandatory second-factor enrollment for a first login.
func (h *AuthHandler) BeginSetup(c *gin.Context) {
	var req models.SetupBeginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", "invalid_payload", h.logger)
		return
	}

	info, err := h.setup.BeginSetup(c.Request.Context(), req.ChallengeToken, req.Method)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrChallengeNotFound):
			ErrorResponse(c, http.StatusUnauthorized, "Challenge not found or expired", "challenge_expired", h.logger)
		case errors.Is(err, domainErrors.ErrConflict):
			ErrorResponse(c, http.StatusConflict, "A second factor is already configured", "already_configured", h.logger)
		case errors.Is(err, domainErrors.ErrTwoFactorNotConfigured):
			ErrorResponse(c, http.StatusBadRequest, "A second-factor method must be chosen", "invalid_method", h.logger)
		case errors.Is(err, domainErrors.ErrDeliveryFailed):
			ErrorResponse(c, http.StatusBadGateway, "Could not deliver the code, try again later", "delivery_failed", h.logger)
		default:
			var methodErr error
			if _, methodErr = models.ParseTwoFactorMethod(req.Method); methodErr != nil {
				ErrorResponse(c, http.StatusBadRequest, "Unknown second-factor method", "invalid_method", h.logger)
				return
			}
			h.logger.Error("Setup begin failed", zap.Error(err))
			ErrorResponse(c, http.StatusInternalServerError, "Could not start setup", "internal_error", h.logger)
		}
		return
	}
	DataResponse(c, http.StatusOK, info)
}

// CompleteSetup verifies the first code and finishes enrollment.
func (h *AuthHandler) CompleteSetup(c *gin.Context) {
	var req models.SetupCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", "invalid_payload", h.logger)
		return
	}

	result, err := h.setup.CompleteSetup(c.Request.Context(), req, requestMeta(c))
	if err != nil {
		h.respondChallengeError(c, err, "Setup verification failed")
		return
	}
	h.respondLoginResult(c, result)
}

// respondLoginResult maps a state machine outcome onto the wire.
func (h *AuthHandler) respondLoginResult(c *gin.Context, result *models.LoginResult) {
	body := gin.H{"state": result.State}
	switch result.State {
	case models.LoginStateAuthenticated:
		body["session_token"] = result.SessionToken
		body["user"] = result.User.ToResponse()
		if result.DeviceToken != "" {
			body["device_token"] = result.DeviceToken
		}
		DataResponse(c, http.StatusOK, body)
	case models.LoginStateNeedsSetup:
		body["challenge_token"] = result.ChallengeToken
		DataResponse(c, http.StatusAccepted, body)
	case models.LoginStatePending2FA:
		body["challenge_token"] = result.ChallengeToken
		body["method_hint"] = result.MethodHint
		body["email_code_sent"] = result.EmailCodeSent
		DataResponse(c, http.StatusAccepted, body)
	default:
		h.logger.Error("Unhandled login state", zap.String("state", string(result.State)))
		ErrorResponse(c, http.StatusInternalServerError, "Login failed", "internal_error", h.logger)
	}
}

// respondChallengeError maps errors shared by the verification endpoints.
func (h *AuthHandler) respondChallengeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, domainErrors.ErrChallengeNotFound):
		ErrorResponse(c, http.StatusUnauthorized, "Challenge not found or expired", "challenge_expired", h.logger)
	case errors.Is(err, domainErrors.ErrCodeExpired):
		ErrorResponse(c, http.StatusUnauthorized, "Code expired, request a new one", "code_expired", h.logger)
	case errors.Is(err, domainErrors.ErrCodeAlreadyUsed):
		ErrorResponse(c, http.StatusUnauthorized, "Code already used", "code_used", h.logger)
	case errors.Is(err, domainErrors.ErrInvalidCode):
		ErrorResponse(c, http.StatusUnauthorized, "Invalid code", "invalid_code", h.logger)
	case errors.Is(err, domainErrors.ErrTwoFactorNotConfigured):
		ErrorResponse(c, http.StatusConflict, "Second factor not configured for this login", "method_mismatch", h.logger)
	default:
		h.logger.Error(fallback, zap.Error(err))
		ErrorResponse(c, http.StatusInternalServerError, fallback, "internal_error", h.logger)
	}
}
