package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ringslot/internal/logger"
)

// TokenHeader carries the opaque session token on authenticated requests.
const TokenHeader = "X-Auth-Token"

// Middleware resolves the X-Auth-Token header against the sessions table and
// puts the caller's identity into the gin context.
func Middleware(sessions SessionRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(TokenHeader)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			c.Abort()
			return
		}

		su, err := sessions.FindByTokenHash(c.Request.Context(), HashToken(token))
		if err != nil {
			if errors.Is(err, ErrSessionNotFound) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			} else {
				logger.Errorf("failed to resolve session: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
			c.Abort()
			return
		}

		c.Set("user_id", su.UserID)
		c.Set("user_email", su.Email)
		c.Set("user_role", su.Role)

		c.Next()
	}
}

func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("user_role")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user role not found"})
			c.Abort()
			return
		}

		roleStr, ok := role.(string)
		if !ok || roleStr != requiredRole {
			c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			c.Abort()
			return
		}

		c.Next()
	}
}

func GetUserID(c *gin.Context) (int, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}

	id, ok := userID.(int)
	if !ok {
		return 0, false
	}

	return id, true
}
