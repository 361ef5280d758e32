package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/offershare/pkg/log"
	"github.com/weiawesome/offershare/pkg/response"
)

const (
	UserIDKey     = "user_id"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
	TokenQueryKey = "token"
)

// IdentityResolver maps an access token to a stable user identity.
type IdentityResolver interface {
	ResolveIdentity(token string) (string, error)
}

// AuthMiddleware validates access tokens and attaches the caller identity.
type AuthMiddleware struct {
	resolver IdentityResolver
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(resolver IdentityResolver) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

// RequireAuth returns a Gin middleware that validates bearer tokens.
// The token may also be passed as ?token= for websocket upgrades, where
// browsers cannot set headers.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := extractToken(c)
		if !ok {
			response.Unauthorized(c, "missing or malformed authorization")
			c.Abort()
			return
		}

		userID, err := m.resolver.ResolveIdentity(token)
		if err != nil {
			l := log.Ctx(c.Request.Context())
			l.Debug().Err(err).Msg("token rejected")
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		c.Set(UserIDKey, userID)
		c.Request = c.Request.WithContext(log.With(c.Request.Context(), log.FieldUserID, userID))

		c.Next()
	}
}

func extractToken(c *gin.Context) (string, bool) {
	if authHeader := c.GetHeader(AuthHeaderKey); authHeader != "" {
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			return "", false
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerPrefix))
		return token, token != ""
	}
	if token := c.Query(TokenQueryKey); token != "" {
		return token, true
	}
	return "", false
}

// GetUserID extracts user ID from Gin context.
func GetUserID(c *gin.Context) string {
	if id, exists := c.Get(UserIDKey); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}
