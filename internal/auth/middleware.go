package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const identityKey = "auth.identity"

// Middleware authenticates the request when a bearer token is present and
// stores the identity in the gin context. It never rejects: anonymous
// requests pass through so public endpoints stay reachable.
func Middleware(a *Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity := a.Authenticate(c.Request.Context(), bearerToken(c)); identity != nil {
			c.Set(identityKey, identity)
		}
		c.Next()
	}
}

// RequireAuth aborts with 401 when the request is anonymous. Mount it after
// Middleware on endpoints that need an authenticated caller.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentIdentity(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// CurrentIdentity returns the authenticated caller, if any.
func CurrentIdentity(c *gin.Context) (*Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return nil, false
	}
	identity, ok := value.(*Identity)
	return identity, ok && identity != nil
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
