package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// ContextLogger returns the request-scoped logger stored under "logger" by
// the request logging middleware, or the global logger.
func ContextLogger(c *gin.Context) *zap.Logger {
	if l, ok := c.Get("logger"); ok {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return GetLogger()
}

// JSONError writes a structured error. Server errors are logged at error
// level, client errors at debug.
func JSONError(c *gin.Context, status int, code, message, details string) {
	logger := ContextLogger(c)
	if status >= http.StatusInternalServerError {
		logger.Error(message, zap.String("code", code), zap.Int("status", status))
	} else {
		logger.Debug(message, zap.String("code", code), zap.Int("status", status), zap.String("details", details))
	}
	c.JSON(status, ErrorResponse{
		Code:      code,
		Message:   message,
		Details:   details,
		RequestID: c.GetString("requestID"),
	})
}

// ErrorHandler turns panics, and errors attached with c.Error by handlers that
// wrote nothing, into a 500 response.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				ContextLogger(c).Error("panic serving request", zap.Any("panic", rec), zap.Stack("stack"))
				JSONError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal Server Error", "")
				c.Abort()
			}
		}()
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			ContextLogger(c).Error("request failed", zap.Strings("errors", c.Errors.Errors()))
			JSONError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal Server Error", "")
		}
	}
}
