package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/health-navigator/internal/handler"
)

const DefaultMaxBodySize int64 = 1 << 20

// BodyLimit rejects declared bodies over max bytes and caps the reader for
// bodies that do not declare a length.
func BodyLimit(max int64) gin.HandlerFunc {
	if max <= 0 {
		max = DefaultMaxBodySize
	}
	message := fmt.Sprintf("request body exceeds %d bytes", max)

	return func(c *gin.Context) {
		if c.Request.ContentLength > max {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, handler.NewErrorResponse(message))
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		}
		c.Next()
	}
}
