package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ecobazaar/internal/service"
)

const identityKey = "identity"

type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (service.Identity, error)
}

// Auth resolves the bearer token once and stores the caller's identity on
// the request. Handlers read it back with IdentityFrom.
func Auth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		identity, err := auth.Authenticate(c.Request.Context(), tokenStr)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
				return
			}
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

func IdentityFrom(c *gin.Context) (service.Identity, bool) {
	val, exists := c.Get(identityKey)
	if !exists {
		return service.Identity{}, false
	}
	identity, ok := val.(service.Identity)
	return identity, ok
}
