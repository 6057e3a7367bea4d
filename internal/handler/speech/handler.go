package speech

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/health-navigator/internal/handler"
	"github.com/jwalitptl/health-navigator/internal/speech"
)

type Service interface {
	Speak(ctx context.Context, req *speech.Request) (*speech.Audio, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/speech", h.Speak)
}

// Speak returns audio bytes, or 204 when no audio is available.
func (h *Handler) Speak(c *gin.Context) {
	var req speech.Request
	if !handler.BindJSON(c, &req) {
		return
	}

	audio, err := h.service.Speak(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	if audio == nil {
		c.Status(http.StatusNoContent)
		return
	}

	c.Data(http.StatusOK, audio.ContentType, audio.Data)
}
