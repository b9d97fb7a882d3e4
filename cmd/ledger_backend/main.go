//go:generate swag init --dir ../.. --generalInfo cmd/ledger_backend/main.go --output ../docs --outputTypes go --parseInternal

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/ledger_core/internal/adapters/messaging"
	"github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_core/internal/core/services"
	"github.com/SscSPs/ledger_core/internal/handlers"
	"github.com/SscSPs/ledger_core/internal/middleware"
	"github.com/SscSPs/ledger_core/internal/platform/config"
	"github.com/SscSPs/ledger_core/internal/platform/logging"
	"github.com/SscSPs/ledger_core/internal/platform/metrics"
	"github.com/SscSPs/ledger_core/internal/repositories/database/pgsql"
	"github.com/SscSPs/ledger_core/internal/repositories/database/sqlite"
	"github.com/SscSPs/ledger_core/internal/repositories/memory"
	"github.com/SscSPs/ledger_core/internal/repositories/migrations"
	"github.com/SscSPs/ledger_core/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 15 * time.Second

// @title Ledger Core API
// @version 1.0
// @description Multi-tenant double-entry ledger: chart of accounts, journal entry lifecycle and financial reports.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := logging.InitLogger(logging.LogConfig{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if err := run(cfg, logger); err != nil {
		logger.Error("Server stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	publisher := messaging.NewAsyncPublisher(newEventSink(cfg, logger), cfg.EventBufferSize,
		messaging.WithDeliveryTimeout(cfg.EventPublishTimeout),
		messaging.WithRedelivery(cfg.EventDeliveryAttempts, 200*time.Millisecond),
		messaging.WithLogger(logger),
	)

	m, err := metrics.InitMetrics()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	metricsInterceptor, err := services.MetricsInterceptor(m.Meter(), cfg.SlowOperationThreshold)
	if err != nil {
		return err
	}

	container := services.NewContainer(repos, services.ContainerOptions{
		StrictLinePolicy: cfg.StrictLinePolicy,
		Publisher:        publisher,
		Interceptors: services.Chain{
			services.LoggingInterceptor(),
			metricsInterceptor,
			services.AuthorizationInterceptor(services.ClaimsAuthorizer{}),
		},
	})

	rateLimiter, err := middleware.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		return err
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	httpMetrics, err := middleware.HTTPMetrics(m.Meter())
	if err != nil {
		return fmt.Errorf("failed to create http metrics: %w", err)
	}
	r.Use(httpMetrics)

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", middleware.TenantHeader)
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"}
	r.Use(cors.New(corsConfig))

	if err := r.SetTrustedProxies(nil); err != nil {
		return fmt.Errorf("failed to set trusted proxies: %w", err)
	}

	routeOpts := handlers.RouteOptions{RateLimiter: rateLimiter}
	if cfg.MetricsEnabled {
		routeOpts.MetricsHandler = m.Handler
	}
	handlers.RegisterRoutes(r, cfg, container, routeOpts)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed to run: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
	}
	// Handlers are done, so nothing publishes any more.
	if err := publisher.Close(shutdownCtx); err != nil {
		logger.Error("Event publisher shutdown failed", slog.String("error", err.Error()))
	}
	if err := m.Shutdown(shutdownCtx); err != nil {
		logger.Error("Metrics shutdown failed", slog.String("error", err.Error()))
	}
	logger.Info("Server stopped")
	return nil
}

// openStore connects the configured store, applies migrations and returns the
// repositories with a function releasing the connection.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*repositories.RepositoryProvider, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		if cfg.RunMigrations {
			logger.Info("Running database migrations...")
			if err := migrations.RunPostgres(cfg.DatabaseURL, logger); err != nil {
				return nil, nil, err
			}
		}
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database pool: %w", err)
		}
		logger.Info("Database connection pool established.")
		return pgsql.NewRepositoryProvider(pool), func() { database.ClosePgxPool(pool) }, nil

	case config.StoreDriverSQLite:
		db, err := database.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if cfg.RunMigrations {
			logger.Info("Running database migrations...", slog.String("path", cfg.SQLitePath))
			if err := migrations.RunSQLite(db, logger); err != nil {
				closeSQLite(db, logger)
				return nil, nil, err
			}
		}
		return sqlite.NewRepositoryProvider(db), func() { closeSQLite(db, logger) }, nil

	default:
		logger.Warn("Using the in-memory store, data is lost on restart")
		return memory.NewRepositoryProvider(), func() {}, nil
	}
}

func closeSQLite(db *sql.DB, logger *slog.Logger) {
	if err := db.Close(); err != nil {
		logger.Error("Error closing sqlite database", slog.String("error", err.Error()))
	}
}

// newEventSink publishes to Kafka when brokers are configured and to the log otherwise.
func newEventSink(cfg *config.Config, logger *slog.Logger) messaging.Sink {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("No Kafka brokers configured, domain events go to the log")
		return messaging.NewLogSink(logger)
	}
	logger.Info("Publishing domain events to Kafka",
		slog.Any("brokers", cfg.KafkaBrokers),
		slog.String("ledger_topic", cfg.LedgerEventsTopic),
		slog.String("report_topic", cfg.ReportEventsTopic))
	return messaging.NewKafkaSink(messaging.KafkaConfig{
		Brokers:     cfg.KafkaBrokers,
		LedgerTopic: cfg.LedgerEventsTopic,
		ReportTopic: cfg.ReportEventsTopic,
	})
}
