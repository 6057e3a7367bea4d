package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/health-navigator/pkg/metrics"
)

// Metrics records request counts and latency labelled by route template.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.RequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		m.RequestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		if c.Writer.Status() >= 500 {
			m.ErrorTotal.WithLabelValues(c.Request.Method, path, "server").Inc()
		} else if c.Writer.Status() >= 400 {
			m.ErrorTotal.WithLabelValues(c.Request.Method, path, "client").Inc()
		}
	}
}
