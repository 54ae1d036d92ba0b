// File: internal/handler/http/response.go
package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ResponseError is the error shape of every API response.
type ResponseError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ErrorResponse writes an error response and logs it.
func ErrorResponse(c *gin.Context, statusCode int, message, errorCode string, logger *zap.Logger) {
	logger.Warn("API error response",
		zap.Int("status_code", statusCode),
		zap.String("error_code", errorCode),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
	)
	c.JSON(statusCode, ResponseError{
		Error: message,
		Code:  errorCode,
	})
}

// DataResponse writes a success response carrying only data.
func DataResponse(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// MessageResponse writes a success response carrying only a message.
func MessageResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"message": message})
}
