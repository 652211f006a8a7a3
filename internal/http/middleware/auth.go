// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements bearer-token authentication. Verification is delegated
// to a TokenVerifier function so the middleware stays decoupled from the JWT
// implementation (see services.AuthService.VerifyToken).
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// TokenVerifier validates a bearer token and returns the user ID it carries.
type TokenVerifier func(token string) (userID string, err error)

// RequireAuth returns a Gin middleware that rejects requests without a valid
// "Authorization: Bearer <token>" header. On success the user ID is stored in
// the Gin context under "userID", where the access logger, rate limiter, and
// idempotency layer pick it up.
func RequireAuth(verify TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			unauthorized(c, "missing bearer token")
			return
		}

		uid, err := verify(strings.TrimSpace(token))
		if err != nil {
			unauthorized(c, "invalid or expired token")
			return
		}

		c.Set("userID", uid)
		c.Next()
	}
}

// UserID returns the authenticated user ID set by RequireAuth, or "".
func UserID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get("X-Request-ID"),
		"code":       "unauthorized",
		"message":    msg,
	})
}
