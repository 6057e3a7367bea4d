package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/health-navigator/internal/app"
	"github.com/jwalitptl/health-navigator/internal/config"
	"github.com/jwalitptl/health-navigator/internal/email"
	"github.com/jwalitptl/health-navigator/internal/handler/health"
	"github.com/jwalitptl/health-navigator/internal/repository/postgres"
	"github.com/jwalitptl/health-navigator/internal/service/notification"
	"github.com/jwalitptl/health-navigator/internal/session"
	"github.com/jwalitptl/health-navigator/pkg/logger"
	"github.com/jwalitptl/health-navigator/pkg/messaging"
	"github.com/jwalitptl/health-navigator/pkg/messaging/redis"
	"github.com/jwalitptl/health-navigator/pkg/metrics"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:          "health-navigator",
		Short:        "Rural Health Navigator API",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a config file")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	var paths []string
	if configPath != "" {
		paths = append(paths, configPath)
	}
	cfg, err := config.LoadConfig(paths...)
	if err != nil {
		return nil, err
	}
	logger.Setup(&logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
	})
	return cfg, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}
}

func runServer(cfg *config.Config) error {
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	checks := map[string]health.Check{
		"database": db.PingContext,
	}

	var (
		kv     session.KV
		broker messaging.Broker
	)
	if cfg.Redis.URL != "" {
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
		kv = session.NewRedisKV(client)
		broker = redis.NewRedisBroker(client, log.Logger)
		checks["redis"] = func(ctx context.Context) error { return pingRedis(ctx, client) }
	} else {
		// Sessions and live updates stay inside this process.
		log.Warn().Msg("no redis url configured, using in-process sessions and broker")
		kv = session.NewMemoryKV()
		broker = messaging.NewMemoryBroker()
	}
	defer broker.Close()

	repos := postgres.NewRepositories(db)
	m := metrics.NewMetrics("health_navigator")
	mailer := email.NewService(cfg.SMTP, cfg.Auth.ConfirmURL)

	publishCtx, stopPublishing := context.WithCancel(context.Background())
	defer stopPublishing()
	if cfg.Redis.URL == "" {
		l := logger.NewLogger(&logger.Config{
			Level:  logger.ParseLevel(cfg.Log.Level),
			Format: cfg.Log.Format,
		}).WithFields(map[string]interface{}{"component": "outbox-publisher"})
		publisher, err := app.NewOutboxPublisher(cfg.Outbox, repos.Outbox, broker, l, m)
		if err != nil {
			return err
		}
		go publisher.Start(publishCtx)

		notifier := notification.NewService(broker, repos.Hospitals, mailer)
		go func() {
			if err := notifier.Run(publishCtx); err != nil {
				log.Error().Err(err).Msg("booking notifications stopped")
			}
		}()
	}

	r, err := app.NewRouter(cfg, app.Dependencies{
		Repos:   repos,
		KV:      kv,
		Broker:  broker,
		Mailer:  mailer,
		Checks:  checks,
		Metrics: m,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server exited properly")
	return nil
}

func pingRedis(ctx context.Context, client *goredis.Client) error {
	return client.Ping(ctx).Err()
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := postgres.NewDB(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			count, err := postgres.NewMigrator(db).Up(cmd.Context())
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := postgres.NewDB(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			statuses, err := postgres.NewMigrator(db).Status(cmd.Context())
			if err != nil {
				return err
			}
			for _, s := range statuses {
				state := "pending"
				if s.Applied {
					state = "applied"
				}
				fmt.Printf("%03d  %-40s %s\n", s.Version, s.Name, state)
			}
			return nil
		},
	})

	return cmd
}
