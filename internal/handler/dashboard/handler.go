package dashboard

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/health-navigator/internal/handler"
	"github.com/jwalitptl/health-navigator/internal/middleware"
	"github.com/jwalitptl/health-navigator/internal/model"
	apperrors "github.com/jwalitptl/health-navigator/pkg/errors"
)

type Service interface {
	Hospital(ctx context.Context, profile *model.Profile) (*model.HospitalDashboard, error)
	Patient(ctx context.Context, profile *model.Profile) (*model.PatientDashboard, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/dashboard", h.Get)
}

// Get loads the dashboard for the caller's role. When the client goes away
// before the loaders finish, nothing is written.
func (h *Handler) Get(c *gin.Context) {
	profile := middleware.CurrentProfile(c)
	ctx := c.Request.Context()

	var (
		data interface{}
		err  error
	)
	switch profile.Role {
	case model.RoleHospital:
		data, err = h.svc.Hospital(ctx, profile)
	case model.RolePatient:
		data, err = h.svc.Patient(ctx, profile)
	default:
		handler.RespondError(c, apperrors.Forbidden("no dashboard for this role"))
		return
	}

	switch {
	case errors.Is(err, context.Canceled):
		c.Abort()
		return
	case errors.Is(err, context.DeadlineExceeded):
		_ = c.Error(err)
		c.Abort()
		return
	case err != nil:
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(data))
}
