// Package reference serves static reference content: the supported
// languages and the first aid guide.
package reference

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/health-navigator/internal/handler"
	"github.com/jwalitptl/health-navigator/internal/i18n"
	"github.com/jwalitptl/health-navigator/internal/middleware"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/languages", middleware.Cache(middleware.CacheConfig{MaxAge: time.Hour, Vary: []string{"Accept-Language"}}), h.ListLanguages)
	r.GET("/first-aid", middleware.Cache(middleware.CacheConfig{MaxAge: 24 * time.Hour}), h.FirstAid)
}

type languagesResponse struct {
	Languages []i18n.Language `json:"languages"`
	Suggested string          `json:"suggested"`
}

func (h *Handler) ListLanguages(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(languagesResponse{
		Languages: i18n.Languages(),
		Suggested: i18n.Suggest(c.GetHeader("Accept-Language")),
	}))
}

func (h *Handler) FirstAid(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(i18n.FirstAid()))
}
