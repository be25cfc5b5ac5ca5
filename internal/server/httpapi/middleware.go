package httpapi

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/travelog/internal/common"
	"github.com/dmitrijs2005/travelog/internal/logging"
	"github.com/dmitrijs2005/travelog/internal/server/auth"
	"github.com/dmitrijs2005/travelog/internal/server/session"
	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

// SessionResolver turns verified token claims into the current session.
type SessionResolver interface {
	Resolve(userID, tokenName string, issuedAt time.Time) session.State
}

// requestLogger writes one line per request through logger.
func requestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// accessToken reads the bearer token, falling back to the cookie.
func accessToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(tok)
		}
	}
	if tok, err := c.Cookie(common.AccessTokenHeaderName); err == nil {
		return tok
	}
	return ""
}

// sessionMiddleware attaches a session.State to every request. A missing
// or invalid token yields the logged-out state; it never rejects.
func sessionMiddleware(secret []byte, sessions SessionResolver, logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := session.Anonymous
		if tok := accessToken(c); tok != "" {
			claims, err := auth.ParseToken(tok, secret)
			if err != nil {
				logger.Debug(c.Request.Context(), "ignoring access token", "err", err)
			} else {
				st = sessions.Resolve(claims.UserID, claims.DisplayName, claims.Issued())
			}
		}
		c.Set(sessionKey, st)
		c.Request = c.Request.WithContext(session.WithState(c.Request.Context(), st))
		c.Next()
	}
}

func stateOf(c *gin.Context) session.State {
	if v, ok := c.Get(sessionKey); ok {
		if st, ok := v.(session.State); ok {
			return st
		}
	}
	return session.FromContext(c.Request.Context())
}
