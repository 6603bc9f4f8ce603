package server

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"campus-dispatch/internal/audit"
	"campus-dispatch/internal/security"
)

const (
	ctxOperatorID = "operatorID"
	ctxRole       = "operatorRole"
)

// Auth validates the bearer token and stores the operator identity on the
// request context.
func Auth(tokens *security.TokenProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")
		operatorID, role, err := tokens.ValidateAccess(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ctxOperatorID, operatorID)
		c.Set(ctxRole, role)
		c.Next()
	}
}

// RequireRole rejects requests whose operator does not hold one of the given
// roles. Admins pass every check.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ctxRole)
		if role == "admin" {
			c.Next()
			return
		}
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
	}
}

// RequestLog logs method, path, status and latency for every request, and
// stores the client IP on the request context for the audit trail.
func RequestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Request = c.Request.WithContext(audit.WithClientIP(c.Request.Context(), c.ClientIP()))
		c.Next()
		log.Printf("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// operatorID returns the authenticated operator, or "" on public routes.
func operatorID(c *gin.Context) string {
	return c.GetString(ctxOperatorID)
}
