package middlewares

import (
	"strings"

	"github.com/geocoder89/jobboard/internal/actorctx"
	"github.com/geocoder89/jobboard/internal/auth"
	"github.com/gin-gonic/gin"
)

const SessionCookieName = "session"

// Keep this small interface so tests can fake it easily.
type SessionValidator interface {
	Validate(token string) (auth.Session, error)
}

type AuthMiddleware struct {
	sessions SessionValidator
}

func NewAuthMiddleware(sessions SessionValidator) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// Authenticate resolves the caller's session from the bearer token or the
// session cookie. It never rejects: a missing or invalid token leaves the
// request anonymous and the gate on the route decides.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := tokenFromRequest(c)
		if raw == "" {
			c.Next()
			return
		}

		s, err := m.sessions.Validate(raw)
		if err != nil {
			c.Next()
			return
		}

		// Stash the session on both contexts
		c.Set(CtxSession, s)
		c.Request = c.Request.WithContext(actorctx.WithSession(c.Request.Context(), s))

		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		scheme, token, ok := strings.Cut(authHeader, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}

	raw, err := c.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}

	return raw
}

// SessionFromContext returns the session stored by Authenticate, or nil.
func SessionFromContext(c *gin.Context) *auth.Session {
	v, ok := c.Get(CtxSession)
	if !ok {
		return nil
	}
	s, ok := v.(auth.Session)
	if !ok {
		return nil
	}
	return &s
}

func UserIDFromContext(c *gin.Context) (string, bool) {
	s := SessionFromContext(c)
	if s == nil {
		return "", false
	}
	return s.UserID, true
}
