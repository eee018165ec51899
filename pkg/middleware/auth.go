package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/profilekit/profilekit/internal/sessions"
	"github.com/profilekit/profilekit/internal/tokens"
)

// ClaimsKey is the gin context key the verified claims are stored under.
const ClaimsKey = "claims"

// Verifier is the minimal interface the middleware depends on.
type Verifier interface {
	Verify(raw string) (*tokens.Claims, error)
}

// ExtractToken pulls the bearer token out of an Authorization header.
// Clients send either the raw token or the conventional
// "Bearer <token>" form; both are accepted.
func ExtractToken(header string) string {
	header = strings.TrimSpace(header)
	if rest, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(rest)
	}
	return header
}

// AuthMiddleware returns a Gin middleware that verifies bearer tokens
// using the provided verifier and attaches the claims to the request
// context. It is a synchronous gate: it does not re-fetch the user, so
// claims reflect issuance-time state.
func AuthMiddleware(ver Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := ExtractToken(c.GetHeader("Authorization"))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User is Unauthorized"})
			return
		}
		claims, err := ver.Verify(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User is Unauthorized"})
			return
		}
		// logged-out tokens are rejected even before their expiry
		if black, err := sessions.IsTokenBlacklisted(c.Request.Context(), raw); err == nil && black {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User is Unauthorized"})
			return
		}
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// ClaimsFromContext returns the verified claims attached by
// AuthMiddleware, or nil when the route is unprotected.
func ClaimsFromContext(c *gin.Context) *tokens.Claims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*tokens.Claims)
	return claims
}
