package middleware

import (
	"net/http"
	"strings"

	"bookly/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JWTAuthMiddleware accepts a bearer token signed with secret and puts its
// subject into the context as "userID".
func JWTAuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, found := strings.Cut(c.GetHeader("Authorization"), " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			utils.JSONError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Insufficient authorization", "")
			c.Abort()
			return
		}

		userID, err := utils.ExtractIDFromToken(secret, strings.TrimSpace(token))
		if err != nil {
			utils.ContextLogger(c).Debug("rejected token", zap.Error(err))
			utils.JSONError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token", "")
			c.Abort()
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}
