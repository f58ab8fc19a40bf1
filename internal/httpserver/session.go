package httpserver

import (
	"context"
	"net/http"

	"chiringuito/internal/session"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ctxKey string

const sessionCtxKey ctxKey = "session"

// sessionMiddleware resolves the session id from the cookie, issuing a new one when
// absent. Known sessions have their idle expiry restarted, and the cookie is refreshed
// on every response.
func sessionMiddleware(store session.Store, opts SessionOptions, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(opts.CookieName)
		if err != nil || sid == "" {
			sid, err = session.NewID()
			if err != nil {
				logger.Error("issue session id", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Message: "Internal server error"})
				return
			}
		} else if err := store.Touch(c.Request.Context(), sid); err != nil {
			logger.Warn("touch session", zap.Error(err))
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(opts.CookieName, sid, int(opts.TTL.Seconds()), "/", "", opts.Secure, true)

		scope := session.NewScope(store, sid)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), sessionCtxKey, scope))
		c.Next()
	}
}

func sessionFrom(c *gin.Context) *session.Scope {
	scope, _ := c.Request.Context().Value(sessionCtxKey).(*session.Scope)
	return scope
}
