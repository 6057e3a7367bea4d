package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/health-navigator/internal/handler"
	"github.com/jwalitptl/health-navigator/internal/model"
	apperrors "github.com/jwalitptl/health-navigator/pkg/errors"
)

const ContextProfile = "profile"

type ProfileResolver interface {
	Resolve(ctx context.Context, identity *model.Identity) (*model.Profile, error)
}

// ResolveProfile attaches the caller's profile. Resolution failures are
// answered with 503 and never fall back to a default role.
func ResolveProfile(resolver ProfileResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := CurrentSession(c)
		if sess == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.NewErrorResponse("not signed in"))
			return
		}
		profile, err := resolver.Resolve(c.Request.Context(), sess.Identity)
		if err != nil {
			handler.RespondError(c, apperrors.Unavailable("profile could not be resolved", err))
			return
		}
		c.Set(ContextProfile, profile)
		c.Next()
	}
}

func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile := CurrentProfile(c)
		if profile == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.NewErrorResponse("not signed in"))
			return
		}
		for _, r := range roles {
			if profile.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, handler.NewErrorResponse("not available for your role"))
	}
}

func CurrentProfile(c *gin.Context) *model.Profile {
	v, ok := c.Get(ContextProfile)
	if !ok {
		return nil
	}
	p, _ := v.(*model.Profile)
	return p
}
