package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/jwalitptl/health-navigator/internal/app"
	"github.com/jwalitptl/health-navigator/internal/config"
	"github.com/jwalitptl/health-navigator/internal/email"
	"github.com/jwalitptl/health-navigator/internal/handler/health"
	"github.com/jwalitptl/health-navigator/internal/middleware"
	"github.com/jwalitptl/health-navigator/internal/repository/postgres"
	"github.com/jwalitptl/health-navigator/internal/service/notification"
	"github.com/jwalitptl/health-navigator/pkg/logger"
	"github.com/jwalitptl/health-navigator/pkg/messaging/redis"
	"github.com/jwalitptl/health-navigator/pkg/metrics"
	"github.com/jwalitptl/health-navigator/pkg/worker"
)

func main() {
	configPath := flag.String("config", "", "path to a config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Error().Err(err).Msg("worker stopped")
		os.Exit(1)
	}
}

func run(configPath string) error {
	var paths []string
	if configPath != "" {
		paths = append(paths, configPath)
	}
	cfg, err := config.LoadConfig(paths...)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l := logger.Setup(&logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
	}).WithFields(map[string]interface{}{"component": "outbox-worker"})

	if cfg.Redis.URL == "" {
		return errors.New("the worker needs redis.url to publish events")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	client, err := redis.NewClient(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	})
	if err != nil {
		return err
	}
	defer client.Close()
	broker := redis.NewRedisBroker(client, *l.Zerolog())

	m := metrics.NewMetrics("health_navigator_worker")
	repos := postgres.NewRepositories(db)
	outbox := repos.Outbox

	processor, err := app.NewOutboxPublisher(cfg.Outbox, outbox, broker, l, m)
	if err != nil {
		return err
	}
	cleanup := worker.NewOutboxCleanupWorker(outbox, cfg.Outbox.Retention, cfg.Outbox.CleanupInterval, l)
	notifier := notification.NewService(broker, repos.Hospitals, email.NewService(cfg.SMTP, cfg.Auth.ConfirmURL))

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(middleware.Recovery())
	health.NewHandler(map[string]health.Check{
		"database": db.PingContext,
		"redis":    func(ctx context.Context) error { return client.Ping(ctx).Err() },
	}).RegisterRoutes(engine.Group(""))
	engine.GET("/metrics", gin.WrapH(m.Handler()))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Outbox.HealthPort),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		processor.Start(gctx)
		return nil
	})
	g.Go(func() error {
		cleanup.Start(gctx)
		return nil
	})
	g.Go(func() error {
		return notifier.Run(gctx)
	})
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("health server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		l.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
