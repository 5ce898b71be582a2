package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rajac/admission-portal/internal/session"
)

// ContextSessionKey is the gin context key storing the *session.Request.
const ContextSessionKey = "session"

// CookieConfig names the browser cookies that key the storage scopes.
type CookieConfig struct {
	ClientCookie string
	TabCookie    string
	ClientTTL    time.Duration
	Domain       string
	Secure       bool
}

// Sessions attaches the per-request session objects. The client cookie is
// persistent and keys durable storage; the tab cookie has no Max-Age and keys
// transient storage.
func Sessions(factory *session.Factory, cfg CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetSameSite(http.SameSiteLaxMode)

		clientID := ensureCookie(c, cfg.ClientCookie, int(cfg.ClientTTL.Seconds()), cfg)
		tabID := ensureCookie(c, cfg.TabCookie, 0, cfg)

		req := factory.Request(clientID, tabID)
		defer req.Close()
		c.Set(ContextSessionKey, req)
		c.Next()
	}
}

// SessionFrom returns the session objects of the request, or nil outside
// the Sessions middleware.
func SessionFrom(c *gin.Context) *session.Request {
	v, ok := c.Get(ContextSessionKey)
	if !ok {
		return nil
	}
	req, _ := v.(*session.Request)
	return req
}

func ensureCookie(c *gin.Context, name string, maxAge int, cfg CookieConfig) string {
	if value, err := c.Cookie(name); err == nil {
		if _, parseErr := uuid.Parse(value); parseErr == nil {
			if maxAge > 0 {
				c.SetCookie(name, value, maxAge, "/", cfg.Domain, cfg.Secure, true)
			}
			return value
		}
	}
	value := uuid.NewString()
	c.SetCookie(name, value, maxAge, "/", cfg.Domain, cfg.Secure, true)
	return value
}
