package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/health-navigator/internal/handler"
	"github.com/jwalitptl/health-navigator/internal/session"
	apperrors "github.com/jwalitptl/health-navigator/pkg/errors"
)

const ContextSession = "session"

type SessionSource interface {
	CurrentSession(ctx context.Context, token string) (*session.Session, error)
}

// BearerToken reads the access token from the Authorization header. GET
// requests may pass it as access_token instead, since EventSource cannot
// set headers.
func BearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if c.Request.Method == http.MethodGet {
		return c.Query("access_token")
	}
	return ""
}

// LoadSession attaches the live session, if any. A missing or dead token is
// not an error here; a failing session store is.
func LoadSession(src SessionSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			c.Next()
			return
		}
		sess, err := src.CurrentSession(c.Request.Context(), token)
		switch {
		case errors.Is(err, session.ErrNoSession):
		case err != nil:
			handler.RespondError(c, apperrors.Unavailable("session check failed", err))
			return
		default:
			c.Set(ContextSession, sess)
		}
		c.Next()
	}
}

// RequireSession rejects requests without a live session. It must run after
// LoadSession.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentSession(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.NewErrorResponse("not signed in"))
			return
		}
		c.Next()
	}
}

// CurrentSession returns the session LoadSession attached, or nil.
func CurrentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(ContextSession)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)
	return sess
}
