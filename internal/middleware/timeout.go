package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// Timeout bounds the request context. Handlers run on the request goroutine
// and see the deadline through ctx; loaders that exceed it abandon their
// work and the error middleware answers for them.
func Timeout(d time.Duration) gin.HandlerFunc {
	if d <= 0 {
		d = 30 * time.Second
	}
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
