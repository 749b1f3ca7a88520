package middleware

import (
	"log/slog"
	"time"

	"github.com/SscSPs/ledger_sync/internal/platform/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StructuredLoggingMiddleware creates a Gin middleware handler that injects
// a request-scoped logger into the request context.
func StructuredLoggingMiddleware(baseLogger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()

		requestLogger := baseLogger.With(
			slog.String("request_id", requestID),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
		)

		c.Header("X-Request-ID", requestID)
		c.Request = c.Request.WithContext(logging.WithLogger(c.Request.Context(), requestLogger))

		c.Next()

		requestLogger.Debug("Request completed",
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		)
	}
}

// GetLoggerFromContext retrieves the request-scoped logger, or the default logger.
func GetLoggerFromContext(c *gin.Context) *slog.Logger {
	return logging.FromContext(c.Request.Context())
}
