package patient

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/health-navigator/internal/handler"
	"github.com/jwalitptl/health-navigator/internal/middleware"
	"github.com/jwalitptl/health-navigator/internal/model"
)

type Service interface {
	Add(ctx context.Context, caller *model.Profile, req *model.AddPatientRequest) (*model.AddPatientResult, error)
	List(ctx context.Context, caller *model.Profile, search string) ([]*model.PatientDetails, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients", middleware.RequireRole(model.RoleHospital))
	{
		patients.GET("", h.ListPatients)
		patients.POST("", h.AddPatient)
	}
}

// AddPatient answers 201 when a patient row was written and 200 when the
// profile was already a patient.
func (h *Handler) AddPatient(c *gin.Context) {
	var req model.AddPatientRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Add(c.Request.Context(), middleware.CurrentProfile(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	c.JSON(status, handler.NewSuccessResponse(result))
}

func (h *Handler) ListPatients(c *gin.Context) {
	patients, err := h.service.List(c.Request.Context(), middleware.CurrentProfile(c), c.Query("search"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(patients))
}
