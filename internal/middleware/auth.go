package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/SscSPs/ledger_sync/internal/dto"
	"github.com/gin-gonic/gin"
)

// BearerTokenAuth rejects requests whose Authorization header does not carry
// token as a bearer credential. Failures use the ledger's error body shape.
func BearerTokenAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromContext(c)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Warn("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Authorization header required"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			logger.Warn("Authorization header format invalid")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Authorization header format must be Bearer {token}"})
			return
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(token)) != 1 {
			logger.Warn("Invalid access token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Access token does not exist."})
			return
		}

		c.Next()
	}
}
