package router

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/health-navigator/internal/config"
	"github.com/jwalitptl/health-navigator/internal/middleware"
	"github.com/jwalitptl/health-navigator/pkg/metrics"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// StreamHandler also serves server-sent event routes, which are registered
// outside the request timeout.
type StreamHandler interface {
	Handler
	RegisterStreams(*gin.RouterGroup)
}

// Handlers are grouped by the gate they sit behind.
type Handlers struct {
	// No session needed.
	Health    Handler
	Auth      Handler
	Reference Handler
	Locations Handler
	Speech    Handler

	// Session optional; the navigator decides.
	Landing StreamHandler

	// Live session and resolved profile required.
	Dashboard    Handler
	Appointments Handler
	Doctors      Handler
	Patients     Handler
	Hospitals    Handler
	Profile      Handler
	Medical      Handler
	Emergencies  StreamHandler
}

type RouterConfig struct {
	Server    config.ServerConfig
	RateLimit config.RateLimitConfig
	CORS      config.CORSConfig
	Metrics   config.MetricsConfig
}

type Router struct {
	engine   *gin.Engine
	sessions middleware.SessionSource
	resolver middleware.ProfileResolver
	metrics  *metrics.Metrics
	handlers Handlers
	config   RouterConfig
}

const apiVersion = "1.0"

func NewRouter(sessions middleware.SessionSource, resolver middleware.ProfileResolver, m *metrics.Metrics,
	handlers Handlers, config RouterConfig) *Router {
	engine := gin.New()

	r := &Router{
		engine:   engine,
		sessions: sessions,
		resolver: resolver,
		metrics:  m,
		handlers: handlers,
		config:   config,
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.ErrorHandler(),
		middleware.CORS(config.CORS),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
	)
	if m != nil {
		engine.Use(middleware.Metrics(m))
	}
	if config.RateLimit.Enabled {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  rate.Limit(config.RateLimit.RequestsPerSecond),
			Burst: config.RateLimit.Burst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	if r.metrics != nil && r.config.Metrics.Enabled {
		path := r.config.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.engine.GET(path, gin.WrapH(r.metrics.Handler()))
	}

	api := r.engine.Group("/api/v1", middleware.Version(apiVersion), middleware.BodyLimit(r.config.Server.MaxBodySize))

	streams := api.Group("", middleware.LoadSession(r.sessions))
	timed := api.Group("", middleware.Timeout(r.config.Server.Timeout))

	r.setupPublicRoutes(timed)

	sessionAware := timed.Group("", middleware.LoadSession(r.sessions))
	r.handlers.Landing.RegisterRoutes(sessionAware)
	r.handlers.Landing.RegisterStreams(streams)

	protected := sessionAware.Group("", middleware.RequireSession(), middleware.ResolveProfile(r.resolver))
	r.setupProtectedRoutes(protected)

	protectedStreams := streams.Group("", middleware.RequireSession(), middleware.ResolveProfile(r.resolver))
	r.handlers.Emergencies.RegisterStreams(protectedStreams)
}

func (r *Router) setupPublicRoutes(rg *gin.RouterGroup) {
	r.handlers.Health.RegisterRoutes(rg)
	r.handlers.Auth.RegisterRoutes(rg)
	r.handlers.Reference.RegisterRoutes(rg)
	r.handlers.Locations.RegisterRoutes(rg)
	r.handlers.Speech.RegisterRoutes(rg)
}

func (r *Router) setupProtectedRoutes(rg *gin.RouterGroup) {
	r.handlers.Dashboard.RegisterRoutes(rg)
	r.handlers.Appointments.RegisterRoutes(rg)
	r.handlers.Doctors.RegisterRoutes(rg)
	r.handlers.Patients.RegisterRoutes(rg)
	r.handlers.Hospitals.RegisterRoutes(rg)
	r.handlers.Profile.RegisterRoutes(rg)
	r.handlers.Medical.RegisterRoutes(rg)
	r.handlers.Emergencies.RegisterRoutes(rg)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
