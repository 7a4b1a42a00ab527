package middleware

import (
	"net/http"
	"strings"

	"github.com/dropguard/dashboard/internal/auth"
	"github.com/dropguard/dashboard/internal/navigation"
	apperrors "github.com/dropguard/dashboard/pkg/errors"
	"github.com/dropguard/dashboard/pkg/response"
	"github.com/gin-gonic/gin"
)

// SessionKey is the gin context key holding the auth.Session
const SessionKey = "session"

// RequireSession aborts requests made while logged out. Browsers are sent to
// the login page, API callers get a 401 envelope.
func RequireSession(provider *auth.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := provider.Snapshot()
		if !session.Authenticated() {
			if WantsHTML(c) {
				c.Redirect(http.StatusFound, navigation.LoginRoute)
				c.Abort()
				return
			}
			response.Error(c, apperrors.ErrAuthRequired)
			c.Abort()
			return
		}

		c.Set(SessionKey, session)
		c.Set("user_id", session.User.UserID)

		c.Next()
	}
}

// SessionFrom returns the session set by RequireSession
func SessionFrom(c *gin.Context) (auth.Session, bool) {
	v, ok := c.Get(SessionKey)
	if !ok {
		return auth.Session{}, false
	}
	session, ok := v.(auth.Session)
	return session, ok
}

// WantsHTML reports whether the client prefers an HTML response
func WantsHTML(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}
