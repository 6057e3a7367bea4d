package auth

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/health-navigator/internal/handler"
	"github.com/jwalitptl/health-navigator/internal/middleware"
	"github.com/jwalitptl/health-navigator/internal/model"
	apperrors "github.com/jwalitptl/health-navigator/pkg/errors"
)

type Service interface {
	SignUp(ctx context.Context, req *model.SignUpRequest) (*model.Identity, error)
	ConfirmEmail(ctx context.Context, token string) error
	SignIn(ctx context.Context, req *model.SignInRequest) (*model.AuthResponse, error)
	SignOut(ctx context.Context, token string) error
	Refresh(ctx context.Context, token string) (*model.AuthResponse, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/signup", h.SignUp)
		auth.POST("/signin", h.SignIn)
		auth.POST("/signout", h.SignOut)
		auth.POST("/refresh", h.Refresh)
		auth.GET("/confirm", h.Confirm)
	}
}

func (h *Handler) SignUp(c *gin.Context) {
	var req model.SignUpRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	identity, err := h.svc.SignUp(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(identity))
}

func (h *Handler) SignIn(c *gin.Context) {
	var req model.SignInRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	resp, err := h.svc.SignIn(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(resp))
}

func (h *Handler) SignOut(c *gin.Context) {
	if err := h.svc.SignOut(c.Request.Context(), middleware.BearerToken(c)); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse("signed out"))
}

func (h *Handler) Refresh(c *gin.Context) {
	token := middleware.BearerToken(c)
	if token == "" {
		handler.RespondError(c, apperrors.Unauthorized(nil))
		return
	}

	resp, err := h.svc.Refresh(c.Request.Context(), token)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(resp))
}

func (h *Handler) Confirm(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		handler.RespondError(c, apperrors.BadRequest("token is required", nil))
		return
	}

	if err := h.svc.ConfirmEmail(c.Request.Context(), token); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse("email confirmed"))
}
