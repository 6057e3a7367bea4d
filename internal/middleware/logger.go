package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Logger logs one line per request. Bodies are never logged: they carry
// passwords and medical notes.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		event := log.Info()
		msg := "Request processed"
		switch {
		case status >= 500:
			event, msg = log.Error(), "Server error"
		case status >= 400:
			event, msg = log.Warn(), "Client error"
		}
		event.
			Str("request_id", c.GetString(ContextRequestID)).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("ip", c.ClientIP()).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("user_agent", c.Request.UserAgent()).
			Msg(msg)
	}
}
