// File: internal/handler/http/activity_handler.go
package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/inkwell-cms/admin-auth/internal/handler/http/middleware"
	"github.com/inkwell-cms/admin-auth/internal/service"
)

const (
	defaultAttemptLimit = 20
	maxAttemptLimit     = 100
)

// ActivityHandler exposes the authenticated user's sign-in audit trail.
type ActivityHandler struct {
	login  *service.LoginService
	logger *zap.Logger
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(login *service.LoginService, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{login: login, logger: logger}
}

// ListLoginAttempts returns the caller's most recent login attempts,
// newest first. An optional limit query parameter caps the page size.
func (h *ActivityHandler) ListLoginAttempts(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Authentication required", "unauthorized", h.logger)
		return
	}

	limit := defaultAttemptLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			ErrorResponse(c, http.StatusBadRequest, "Invalid limit", "invalid_limit", h.logger)
			return
		}
		limit = parsed
	}
	if limit > maxAttemptLimit {
		limit = maxAttemptLimit
	}

	infos, err := h.login.RecentAttempts(c.Request.Context(), userID, limit)
	if err != nil {
		h.logger.Error("Failed to list login attempts", zap.Error(err))
		ErrorResponse(c, http.StatusInternalServerError, "Could not list login attempts", "internal_error", h.logger)
		return
	}
	DataResponse(c, http.StatusOK, gin.H{"attempts": infos})
}
