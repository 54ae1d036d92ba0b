// File: internal/handler/http/router.go
package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/inkwell-cms/admin-auth/internal/domain/interfaces"
	"github.com/inkwell-cms/admin-auth/internal/handler/http/middleware"
	"github.com/inkwell-cms/admin-auth/internal/service"
)

// SetupRouter wires handlers and middleware into the HTTP surface.
func SetupRouter(
	loginService *service.LoginService,
	setupService *service.SetupService,
	deviceService *service.TrustedDeviceService,
	sessions interfaces.SessionTokenService,
	logger *zap.Logger,
) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	authHandler := NewAuthHandler(loginService, setupService, logger)
	deviceHandler := NewDeviceHandler(deviceService, logger)
	activityHandler := NewActivityHandler(loginService, logger)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/login/2fa", authHandler.Verify2FA)
			auth.POST("/login/2fa/resend", authHandler.ResendCode)
			auth.POST("/setup", authHandler.BeginSetup)
			auth.POST("/setup/verify", authHandler.CompleteSetup)
		}

		me := api.Group("/me")
		me.Use(middleware.AuthMiddleware(sessions, logger))
		{
			me.GET("/devices", deviceHandler.List)
			me.DELETE("/devices/:id", deviceHandler.Revoke)
			me.DELETE("/devices", deviceHandler.RevokeAll)
			me.GET("/login-attempts", activityHandler.ListLoginAttempts)
		}
	}

	return router
}
