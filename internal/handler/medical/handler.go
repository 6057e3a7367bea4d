package medical

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/health-navigator/internal/handler"
	"github.com/jwalitptl/health-navigator/internal/middleware"
	"github.com/jwalitptl/health-navigator/internal/model"
)

type Service interface {
	Create(ctx context.Context, profile *model.Profile, req *model.CreateMedicalRecordRequest) (*model.MedicalRecord, error)
	ListByPatient(ctx context.Context, profile *model.Profile, patientID string) ([]*model.MedicalRecord, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	records := r.Group("/medical-records", middleware.NoStore())
	{
		records.GET("", h.ListMedicalRecords)
		records.POST("", middleware.RequireRole(model.RoleHospital), h.AddMedicalRecord)
	}
}

func (h *Handler) AddMedicalRecord(c *gin.Context) {
	var req model.CreateMedicalRecordRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	record, err := h.service.Create(c.Request.Context(), middleware.CurrentProfile(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(record))
}

// ListMedicalRecords lists a patient's records. Hospitals name the patient
// with patient_id; patients always get their own.
func (h *Handler) ListMedicalRecords(c *gin.Context) {
	records, err := h.service.ListByPatient(c.Request.Context(), middleware.CurrentProfile(c), c.Query("patient_id"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(records))
}
