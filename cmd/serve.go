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

	"github.com/abaxoth0/go-pwgen"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/spf13/cobra"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/sbilibin2017/gw-auth-manager/internal/config"
	"github.com/sbilibin2017/gw-auth-manager/internal/facades"
	"github.com/sbilibin2017/gw-auth-manager/internal/handlers"
	"github.com/sbilibin2017/gw-auth-manager/internal/jwt"
	"github.com/sbilibin2017/gw-auth-manager/internal/logger"
	"github.com/sbilibin2017/gw-auth-manager/internal/metrics"
	"github.com/sbilibin2017/gw-auth-manager/internal/middlewares"
	"github.com/sbilibin2017/gw-auth-manager/internal/models"
	"github.com/sbilibin2017/gw-auth-manager/internal/repositories"
	"github.com/sbilibin2017/gw-auth-manager/internal/services"
)

const (
	shutdownTimeout    = 10 * time.Second
	healthCheckTimeout = 2 * time.Second
	limiterIdleTTL     = 10 * time.Minute

	// Events are written one at a time on the request path.
	kafkaBatchTimeout = 5 * time.Millisecond
	kafkaWriteTimeout = 2 * time.Second
)

func newServeCmd(load loadFunc) *cobra.Command {
	var migrate, seed bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			printBuildInfo(cmd.OutOrStdout())
			return run(cmd.Context(), cfg, migrate, seed)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "Apply database migrations on startup")
	cmd.Flags().BoolVar(&seed, "seed", true, "Create configured users on startup")

	return cmd
}

// run connects to PostgreSQL, Redis and Kafka and serves HTTP until a shutdown signal.
func run(ctx context.Context, cfg *config.Config, migrate, seed bool) error {
	if migrate {
		if err := repositories.Migrate(cfg.PostgresDSN(), repositories.MigrateUp); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	// Connect to PostgreSQL
	logger.Log.Infow("connecting to PostgreSQL", "host", cfg.PostgresHost, "port", cfg.PostgresPort, "db", cfg.PostgresDB)
	db, err := connectPostgres(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if seed {
		generated, err := seedUsers(ctx, cfg, db)
		if err != nil {
			return err
		}
		for name, password := range generated {
			logger.Log.Infow("generated password for user", "username", name, "password", password)
		}
	}

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr(),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		PoolSize:     cfg.RedisPoolSize,
		MinIdleConns: cfg.RedisMinIdleConns,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("Redis connection error: %w", err)
	}
	defer rdb.Close()

	events := facades.NewTokenEventKafkaFacade(newKafkaWriter(cfg), cfg.KafkaBreakerTimeout())
	defer events.Close()

	secret := cfg.JWTSecretKey
	if secret == "" {
		if secret, err = pwgen.Generate(64, pwgen.LOWER|pwgen.UPPER|pwgen.DIGITS); err != nil {
			return fmt.Errorf("failed to generate JWT secret: %w", err)
		}
		logger.Log.Warn("JWT_SECRET_KEY is not set, tokens will not survive a restart")
	}
	tokens := jwt.New(
		jwt.WithSecretKey(secret),
		jwt.WithIssuer(cfg.JWTIssuer),
		jwt.WithAudience(cfg.JWTAudience),
		jwt.WithLeeway(cfg.JWTLeeway()),
	)

	reg := prometheus.NewRegistry()
	if err := metrics.RegisterRuntimeCollectors(reg); err != nil {
		return err
	}
	m, err := metrics.NewPrometheusMetrics(reg)
	if err != nil {
		return err
	}

	revoked := repositories.NewRevokedTokenRepository(rdb)
	authService := services.NewAuthService(
		repositories.NewUserReadRepository(db),
		tokens,
		revoked,
		events,
		m,
		services.TokenTTL{API: cfg.TokenTTL(), CLI: cfg.CLITokenTTL()},
	)

	limiter := middlewares.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, limiterIdleTTL)

	r := newRouter(routerDeps{
		tokens:  authService,
		revoker: authService,
		tokener: tokens,
		revoked: revoked,
		metrics: m,
		limiter: limiter,
		checks: map[string]handlers.HealthCheck{
			"postgres": db.PingContext,
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		ticker := time.NewTicker(limiterIdleTTL)
		defer ticker.Stop()
		for {
			select {
			case <-ctxShutdown.Done():
				return
			case <-ticker.C:
				limiter.Cleanup()
			}
		}
	}()

	go func() {
		logger.Log.Infof("HTTP server listening on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}

// newKafkaWriter returns nil when no brokers are configured, which disables publishing.
func newKafkaWriter(cfg *config.Config) facades.KafkaWriter {
	if len(cfg.KafkaBrokers) == 0 {
		return nil
	}
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchSize:    1,
		BatchTimeout: kafkaBatchTimeout,
		WriteTimeout: kafkaWriteTimeout,
	}
}

type routerDeps struct {
	tokens  handlers.TokenCreator
	revoker handlers.TokenRevoker
	tokener middlewares.Tokener
	revoked middlewares.RevocationChecker
	metrics *metrics.PrometheusMetrics
	limiter *middlewares.RateLimiter
	checks  map[string]handlers.HealthCheck
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware)
	r.Use(middlewares.MetricsMiddleware(d.metrics))

	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(d.limiter.Middleware)
			r.Post("/token", handlers.NewCreateTokenHandler(d.tokens, models.ClientAPI))
			r.Post("/token/cli", handlers.NewCreateTokenHandler(d.tokens, models.ClientCLI))
		})

		r.Group(func(r chi.Router) {
			r.Use(middlewares.AuthMiddleware(d.tokener, d.revoked))
			r.Post("/logout", handlers.NewLogoutHandler(d.revoker))
			r.Get("/me", handlers.NewMeHandler())
		})
	})

	r.Get("/openapi.json", handlers.NewOpenAPIJSONHandler())
	r.Get("/openapi.yaml", handlers.NewOpenAPIYAMLHandler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Get("/health", handlers.NewHealthHandler(d.checks, healthCheckTimeout))
	r.Method(http.MethodGet, "/metrics", d.metrics.Handler())

	return r
}
