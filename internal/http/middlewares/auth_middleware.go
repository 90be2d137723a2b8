package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/eventmanager/internal/apperr"
	"github.com/geocoder89/eventmanager/internal/auth"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	jwt TokenVerifier
}

func NewAuthMiddleware(jwt TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

// RequireAuth rejects anonymous callers with not_authenticated and bad
// tokens with token_not_valid.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, present := bearerToken(c)
		if !present {
			abortWith(c, apperr.ErrNotAuthenticated)
			return
		}

		if !m.authenticate(c, raw) {
			return
		}
		c.Next()
	}
}

// OptionalAuth lets anonymous callers through but still rejects a token
// that is present and invalid.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, present := bearerToken(c)
		if present && !m.authenticate(c, raw) {
			return
		}
		c.Next()
	}
}

func (m *AuthMiddleware) authenticate(c *gin.Context, raw string) bool {
	if raw == "" {
		abortWith(c, apperr.ErrInvalidToken)
		return false
	}

	claims, err := m.jwt.VerifyAccessToken(raw)
	if err != nil {
		abortWith(c, apperr.ErrInvalidToken)
		return false
	}

	// Stash useful bits of identity on the context
	SetActor(c, claims.UserID, claims.Username)
	return true
}

// bearerToken reports the token and whether an Authorization header was sent.
func bearerToken(c *gin.Context) (string, bool) {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if h == "" {
		return "", false
	}

	scheme, token, _ := strings.Cut(h, " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	return strings.TrimSpace(token), true
}
