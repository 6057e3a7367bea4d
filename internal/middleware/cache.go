package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type CacheConfig struct {
	MaxAge  time.Duration
	Private bool
	NoStore bool
	Vary    []string
}

// Cache sets Cache-Control on successful GET responses. Other methods are
// always marked no-store.
func Cache(config CacheConfig) gin.HandlerFunc {
	value := cacheControl(config)
	vary := strings.Join(config.Vary, ", ")

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Header("Cache-Control", "no-store")
			c.Next()
			return
		}

		c.Header("Cache-Control", value)
		if vary != "" {
			c.Header("Vary", vary)
		}
		c.Next()
	}
}

// NoStore keeps responses out of every cache.
func NoStore() gin.HandlerFunc {
	return Cache(CacheConfig{NoStore: true})
}

func cacheControl(config CacheConfig) string {
	if config.NoStore {
		return "no-store"
	}

	directives := []string{"public"}
	if config.Private {
		directives[0] = "private"
	}
	if config.MaxAge > 0 {
		directives = append(directives, fmt.Sprintf("max-age=%d", int(config.MaxAge.Seconds())))
	} else {
		directives = append(directives, "no-cache")
	}
	return strings.Join(directives, ", ")
}
