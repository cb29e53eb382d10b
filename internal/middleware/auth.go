package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/huangang/folio/backend/internal/utils"
	"github.com/huangang/folio/backend/pkg/logger"
	"github.com/huangang/folio/backend/pkg/response"
)

const (
	ContextUserID = logger.UserIDKey
	ContextEmail  = "email"
)

// AuthRequired accepts a Bearer token or, failing that, the session cookie.
func AuthRequired(cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := extractToken(c, cookieName)
		if !ok {
			response.Unauthorized(c, "authentication required")
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)

		c.Next()
	}
}

// extractToken prefers the Authorization header. A malformed header is not
// rescued by the cookie.
func extractToken(c *gin.Context, cookieName string) (string, bool) {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			return "", false
		}
		return token, true
	}

	if cookieName == "" {
		return "", false
	}
	cookie, err := c.Cookie(cookieName)
	return cookie, err == nil && cookie != ""
}

// GetUserID gets the current user ID from context
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextUserID); exists {
		return id.(uint)
	}
	return 0
}

// GetEmail gets the current user's email from context
func GetEmail(c *gin.Context) string {
	if email, exists := c.Get(ContextEmail); exists {
		return email.(string)
	}
	return ""
}
