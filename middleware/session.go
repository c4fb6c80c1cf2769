package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/duynhne/profile-web/internal/core/session"
)

// SessionIDKey is the gin context key holding the browser session id.
const SessionIDKey = "session_id"

// SessionConfig configures the session cookie.
type SessionConfig struct {
	CookieName string
	Path       string
	MaxAge     int // seconds
	Secure     bool
}

// SessionMiddleware assigns every browser a session id cookie. The id keys
// the per-session UI state kept in the session store.
func SessionMiddleware(cfg SessionConfig) gin.HandlerFunc {
	if cfg.CookieName == "" {
		cfg.CookieName = "profile_session"
	}
	if cfg.Path == "" {
		cfg.Path = "/"
	}

	return func(c *gin.Context) {
		id, err := c.Cookie(cfg.CookieName)
		if err != nil || !session.ValidID(id) {
			id = session.NewID()
		}
		AddSpanAttributes(c.Request.Context(), attribute.String("session.id", id))

		// Refresh on every request so the cookie slides with the store TTL.
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.CookieName, id, cfg.MaxAge, cfg.Path, "", cfg.Secure, true)
		c.Set(SessionIDKey, id)
		c.Next()
	}
}

// GetSessionID returns the id set by SessionMiddleware.
func GetSessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}
