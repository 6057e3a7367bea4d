package location

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/health-navigator/internal/handler"
	"github.com/jwalitptl/health-navigator/internal/middleware"
	"github.com/jwalitptl/health-navigator/internal/model"
)

type Service interface {
	List(ctx context.Context) ([]*model.Location, error)
	Get(ctx context.Context, id string) (*model.Location, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	locations := r.Group("/locations", middleware.Cache(middleware.CacheConfig{MaxAge: 5 * time.Minute}))
	{
		locations.GET("", h.ListLocations)
		locations.GET("/:id", h.GetLocation)
	}
}

func (h *Handler) ListLocations(c *gin.Context) {
	locations, err := h.service.List(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(locations))
}

func (h *Handler) GetLocation(c *gin.Context) {
	location, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(location))
}
