package emergency

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/health-navigator/internal/handler"
	"github.com/jwalitptl/health-navigator/internal/middleware"
	"github.com/jwalitptl/health-navigator/internal/model"
)

type Service interface {
	Raise(ctx context.Context, profile *model.Profile, req *model.RaiseEmergencyRequest) (*model.EmergencyAlertDetails, error)
	List(ctx context.Context, profile *model.Profile) ([]*model.EmergencyAlertDetails, error)
	Stream(ctx context.Context, profile *model.Profile) (<-chan *model.EmergencyAlertDetails, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	emergencies := r.Group("/emergencies")
	{
		emergencies.GET("", h.ListEmergencies)
		emergencies.POST("", middleware.RequireRole(model.RolePatient), h.RaiseEmergency)
	}
}

func (h *Handler) RegisterStreams(r *gin.RouterGroup) {
	r.GET("/emergencies/stream", middleware.RequireRole(model.RoleHospital), h.StreamEmergencies)
}

func (h *Handler) RaiseEmergency(c *gin.Context) {
	var req model.RaiseEmergencyRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	alert, err := h.service.Raise(c.Request.Context(), middleware.CurrentProfile(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(alert))
}

func (h *Handler) ListEmergencies(c *gin.Context) {
	alerts, err := h.service.List(c.Request.Context(), middleware.CurrentProfile(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(alerts))
}

// StreamEmergencies sends each newly raised alert as an "emergency" event
// until the client disconnects.
func (h *Handler) StreamEmergencies(c *gin.Context) {
	alerts, err := h.service.Stream(c.Request.Context(), middleware.CurrentProfile(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		alert, ok := <-alerts
		if !ok {
			return false
		}
		c.SSEvent("emergency", alert)
		return true
	})
}
