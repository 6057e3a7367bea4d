package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/health-navigator/internal/handler"
	apperrors "github.com/jwalitptl/health-navigator/pkg/errors"
)

// ErrorHandler logs errors handlers attached to the context. Server-side
// failures log at error level, client mistakes at debug. If the handler
// wrote nothing, the last error is answered in the standard envelope.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		for _, e := range c.Errors {
			status := http.StatusInternalServerError
			if appErr, ok := apperrors.As(e.Err); ok {
				status = appErr.StatusCode()
			}
			event := log.Debug()
			if status >= 500 {
				event = log.Error()
			}
			event.
				Err(e.Err).
				Str("request_id", c.GetString(ContextRequestID)).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Int("status", status).
				Msg("Request error")
		}

		if c.Writer.Written() {
			return
		}
		last := c.Errors.Last().Err
		if errors.Is(last, context.DeadlineExceeded) {
			c.JSON(http.StatusGatewayTimeout, handler.NewErrorResponse("request timeout"))
			return
		}
		status := http.StatusInternalServerError
		message := "internal server error"
		if appErr, ok := apperrors.As(last); ok {
			status, message = appErr.StatusCode(), appErr.Message
		}
		c.JSON(status, handler.NewErrorResponse(message))
	}
}
