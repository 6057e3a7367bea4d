package hospital

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/health-navigator/internal/handler"
	"github.com/jwalitptl/health-navigator/internal/middleware"
	"github.com/jwalitptl/health-navigator/internal/model"
)

type Service interface {
	ForProfile(ctx context.Context, profile *model.Profile) (*model.Hospital, error)
	Register(ctx context.Context, profile *model.Profile, req *model.RegisterHospitalRequest) (*model.Hospital, bool, error)
	List(ctx context.Context) ([]*model.Hospital, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/hospitals", h.ListHospitals)

	own := r.Group("/hospital", middleware.RequireRole(model.RoleHospital))
	{
		own.GET("", h.GetHospital)
		own.PUT("", h.RegisterHospital)
	}
}

func (h *Handler) GetHospital(c *gin.Context) {
	hospital, err := h.service.ForProfile(c.Request.Context(), middleware.CurrentProfile(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(hospital))
}

// RegisterHospital creates the caller's hospital or updates it in place.
func (h *Handler) RegisterHospital(c *gin.Context) {
	var req model.RegisterHospitalRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	hospital, created, err := h.service.Register(c.Request.Context(), middleware.CurrentProfile(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, handler.NewSuccessResponse(hospital))
}

func (h *Handler) ListHospitals(c *gin.Context) {
	hospitals, err := h.service.List(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(hospitals))
}
