package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/token"
	appErrors "github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/errors"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/response"
)

// ContextUserKey is the gin context key storing verified token claims.
const ContextUserKey = "currentUser"

// Authenticate is the sole authorization gate for resource-service
// operations. It extracts the bearer token from the Authorization header,
// verifies it with the shared codec and stores the claims on the context.
// The three failure kinds all map to 401 but keep distinct codes.
func Authenticate(codec *token.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrMissingCredential)
			c.Abort()
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Error(c, appErrors.ErrMalformedCredential)
			c.Abort()
			return
		}

		claims, err := codec.Verify(parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

// ClaimsFromContext returns the verified claims stored by Authenticate, or
// nil when the route was not gated.
func ClaimsFromContext(c *gin.Context) *token.Claims {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*token.Claims)
	if !ok {
		return nil
	}
	return claims
}
