// File: internal/handler/http/device_handler.go
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inkwell-cms/admin-auth/internal/handler/http/middleware"
	"github.com/inkwell-cms/admin-auth/internal/service"
)

// DeviceHandler exposes the authenticated user's trusted-device registry.
type DeviceHandler struct {
	devices *service.TrustedDeviceService
	logger  *zap.Logger
}

// NewDeviceHandler creates a new DeviceHandler.
func NewDeviceHandler(devices *service.TrustedDeviceService, logger *zap.Logger) *DeviceHandler {
	return &DeviceHandler{devices: devices, logger: logger}
}

// List returns display metadata for the caller's trusted devices.
func (h *DeviceHandler) List(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Authentication required", "unauthorized", h.logger)
		return
	}

	infos, err := h.devices.List(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list trusted devices", zap.Error(err))
		ErrorResponse(c, http.StatusInternalServerError, "Could not list devices", "internal_error", h.logger)
		return
	}
	DataResponse(c, http.StatusOK, gin.H{"devices": infos})
}

// Revoke deletes one of the caller's trusted devices. Revoking a device
// that does not exist, or belongs to someone else, is indistinguishable
// from success.
func (h *DeviceHandler) Revoke(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Authentication required", "unauthorized", h.logger)
		return
	}

	deviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid device id", "invalid_id", h.logger)
		return
	}

	if err := h.devices.Revoke(c.Request.Context(), userID, deviceID); err != nil {
		h.logger.Error("Failed to revoke trusted device", zap.Error(err))
		ErrorResponse(c, http.StatusInternalServerError, "Could not revoke device", "internal_error", h.logger)
		return
	}
	c.Status(http.StatusNoContent)
}

// RevokeAll deletes every trusted device of the caller.
func (h *DeviceHandler) RevokeAll(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Authentication required", "unauthorized", h.logger)
		return
	}

	n, err := h.devices.RevokeAll(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to revoke trusted devices", zap.Error(err))
		ErrorResponse(c, http.StatusInternalServerError, "Could not revoke devices", "internal_error", h.logger)
		return
	}
	DataResponse(c, http.StatusOK, gin.H{"revoked": n})
}
