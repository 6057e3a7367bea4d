package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/health-navigator/internal/config"
)

func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods:  cfg.AllowedMethods,
		AllowHeaders:  cfg.AllowedHeaders,
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", HeaderXRequestID},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			c.AllowAllOrigins = true
		}
	}
	if !c.AllowAllOrigins {
		c.AllowOrigins = cfg.AllowedOrigins
		c.AllowCredentials = true
	}
	return cors.New(c)
}
