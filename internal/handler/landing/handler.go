// Package landing exposes the navigator over HTTP: where a client should
// land now, a stream of where it should land as its session changes, and
// the language gate.
package landing

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/health-navigator/internal/handler"
	"github.com/jwalitptl/health-navigator/internal/i18n"
	"github.com/jwalitptl/health-navigator/internal/middleware"
	"github.com/jwalitptl/health-navigator/internal/navigator"
	"github.com/jwalitptl/health-navigator/internal/session"
	apperrors "github.com/jwalitptl/health-navigator/pkg/errors"
)

type Handler struct {
	resolver navigator.ProfileResolver
	sessions session.Source
}

func NewHandler(resolver navigator.ProfileResolver, sessions session.Source) *Handler {
	return &Handler{resolver: resolver, sessions: sessions}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/landing", h.Landing)
	r.POST("/language", h.SelectLanguage)
}

// RegisterStreams registers long-lived routes. They must not sit behind the
// request timeout.
func (h *Handler) RegisterStreams(r *gin.RouterGroup) {
	r.GET("/landing/stream", h.Stream)
}

type landingResponse struct {
	navigator.Snapshot
	SuggestedLanguage string `json:"suggested_language,omitempty"`
}

func (h *Handler) respond(c *gin.Context, snap navigator.Snapshot) {
	resp := landingResponse{Snapshot: snap}
	if snap.State == navigator.StateLanguageSelect {
		resp.SuggestedLanguage = i18n.Suggest(c.GetHeader("Accept-Language"))
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(resp))
}

// Landing resolves the caller once and reports where it should land.
// Resolution failures are reported in the snapshot, not as an HTTP error.
func (h *Handler) Landing(c *gin.Context) {
	router := navigator.NewRouter(h.resolver, newCookiePreference(c))
	defer router.Close()

	snap := router.HandleSession(c.Request.Context(), middleware.CurrentSession(c))
	h.respond(c, snap)
}

type languageRequest struct {
	Language string `json:"language" binding:"required"`
}

func (h *Handler) SelectLanguage(c *gin.Context) {
	var req languageRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	router := navigator.NewRouter(h.resolver, newCookiePreference(c))
	defer router.Close()
	if sess := middleware.CurrentSession(c); sess != nil {
		router.HandleSession(c.Request.Context(), sess)
	}

	snap, err := router.SelectLanguage(req.Language)
	if errors.Is(err, navigator.ErrUnsupportedLanguage) {
		handler.RespondError(c, apperrors.Validation(map[string]string{"language": "unsupported language"}))
		return
	}
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	h.respond(c, snap)
}

// Stream sends a navigation event for the current session and one more
// each time that session is refreshed. It ends when that session signs
// out; the identity's other sessions do not affect it.
func (h *Handler) Stream(c *gin.Context) {
	ctx := c.Request.Context()
	router := navigator.NewRouter(h.resolver, newCookiePreference(c))
	defer router.Close()

	snaps := make(chan navigator.Snapshot, 16)
	remove := router.OnTransition(func(s navigator.Snapshot) {
		select {
		case snaps <- s:
		case <-ctx.Done():
		}
	})
	defer remove()

	sess := middleware.CurrentSession(c)
	if sess != nil {
		own := &sessionFollower{id: sess.ID}
		stop, err := h.sessions.OnSessionChange(ctx, sess.Identity.ID, func(ev session.Event) {
			if next, ok := own.apply(ev); ok {
				go router.HandleSession(ctx, next)
			}
		})
		if err != nil {
			handler.RespondError(c, apperrors.Unavailable("session events are unavailable", err))
			return
		}
		defer stop()
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	go router.HandleSession(ctx, sess)

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case snap := <-snaps:
			c.SSEvent("navigation", snap)
			if snap.State == navigator.StateLogin {
				log.Debug().Msg("navigation stream ended at login")
				return false
			}
			return true
		}
	})
}
