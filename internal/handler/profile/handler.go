package profile

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/health-navigator/internal/handler"
	"github.com/jwalitptl/health-navigator/internal/middleware"
	"github.com/jwalitptl/health-navigator/internal/model"
)

type Service interface {
	Get(ctx context.Context, identityID uuid.UUID) (*model.Profile, error)
	Update(ctx context.Context, identityID uuid.UUID, req *model.UpdateProfileRequest) (*model.Profile, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/profile", h.GetProfile)
	r.PUT("/profile", h.UpdateProfile)
}

func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := h.service.Get(c.Request.Context(), middleware.CurrentProfile(c).IdentityID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(profile))
}

// UpdateProfile edits display fields. The role cannot be changed here.
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req model.UpdateProfileRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	profile, err := h.service.Update(c.Request.Context(), middleware.CurrentProfile(c).IdentityID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(profile))
}
