package appointment

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/health-navigator/internal/handler"
	"github.com/jwalitptl/health-navigator/internal/middleware"
	"github.com/jwalitptl/health-navigator/internal/model"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Service interface {
	Book(ctx context.Context, profile *model.Profile, req *model.BookAppointmentRequest) (*model.Appointment, error)
	ListByDay(ctx context.Context, profile *model.Profile) ([]model.AppointmentDay, error)
	Export(ctx context.Context, profile *model.Profile, w io.Writer) error
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.GET("", h.ListAppointments)
		appointments.POST("", middleware.RequireRole(model.RolePatient), h.BookAppointment)
		appointments.GET("/export", middleware.RequireRole(model.RoleHospital), h.ExportAppointments)
	}
}

func (h *Handler) BookAppointment(c *gin.Context) {
	var req model.BookAppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	appointment, err := h.service.Book(c.Request.Context(), middleware.CurrentProfile(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(appointment))
}

// ListAppointments returns the caller's appointments grouped by day.
func (h *Handler) ListAppointments(c *gin.Context) {
	days, err := h.service.ListByDay(c.Request.Context(), middleware.CurrentProfile(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(days))
}

// ExportAppointments renders the workbook fully before writing so a failed
// export still gets an error response.
func (h *Handler) ExportAppointments(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.service.Export(c.Request.Context(), middleware.CurrentProfile(c), &buf); err != nil {
		handler.RespondError(c, err)
		return
	}

	filename := fmt.Sprintf("appointments-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
