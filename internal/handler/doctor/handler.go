package doctor

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/health-navigator/internal/handler"
	"github.com/jwalitptl/health-navigator/internal/middleware"
	"github.com/jwalitptl/health-navigator/internal/model"
	apperrors "github.com/jwalitptl/health-navigator/pkg/errors"
)

type Service interface {
	Create(ctx context.Context, profile *model.Profile, req *model.CreateDoctorRequest) (*model.Doctor, error)
	Get(ctx context.Context, id string) (*model.Doctor, error)
	List(ctx context.Context, filter model.DoctorFilter) ([]*model.DoctorListing, error)
	Specializations(ctx context.Context) ([]string, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doctors := r.Group("/doctors")
	{
		doctors.GET("", h.ListDoctors)
		doctors.GET("/specializations", h.ListSpecializations)
		doctors.GET("/:id", h.GetDoctor)
		doctors.POST("", middleware.RequireRole(model.RoleHospital), h.CreateDoctor)
	}
}

func (h *Handler) CreateDoctor(c *gin.Context) {
	var req model.CreateDoctorRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	doctor, err := h.service.Create(c.Request.Context(), middleware.CurrentProfile(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(doctor))
}

func (h *Handler) GetDoctor(c *gin.Context) {
	doctor, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctor))
}

func (h *Handler) ListDoctors(c *gin.Context) {
	filter := model.DoctorFilter{
		Query:          c.Query("q"),
		Specialization: strings.TrimSpace(c.Query("specialization")),
	}
	if id := c.Query("hospital_id"); id != "" {
		hospitalID, err := uuid.Parse(id)
		if err != nil {
			handler.RespondError(c, apperrors.BadRequest("invalid hospital ID", err))
			return
		}
		filter.HospitalID = &hospitalID
	}

	doctors, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctors))
}

func (h *Handler) ListSpecializations(c *gin.Context) {
	specs, err := h.service.Specializations(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(specs))
}
