package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	database "github.com/FACorreiaa/medibook-api/app/db"
	appLogger "github.com/FACorreiaa/medibook-api/app/logger"
	"github.com/FACorreiaa/medibook-api/app/observability/metrics"
	"github.com/FACorreiaa/medibook-api/app/tracer"
	"github.com/FACorreiaa/medibook-api/config"
	"github.com/FACorreiaa/medibook-api/internal/container"
)

func main() {
	// Use standard log until slog is configured, in case godotenv fails
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	mode := cfg.Mode
	if env := os.Getenv("APP_ENV"); env != "" {
		mode = env
	}
	logger := appLogger.New(mode, os.Stdout)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, &cfg, logger); err != nil {
		logger.Error("Application stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Application shut down complete.")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	telemetry, err := tracer.InitTracingAndMetrics(cfg.Observability.ServiceName)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	metrics.InitAppMetrics()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("Telemetry shutdown failed", slog.Any("error", err))
		}
	}()

	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		return fmt.Errorf("database config: %w", err)
	}

	// Run migrations *before* initializing the main pool
	if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	pool, err := database.Init(dbConfig, logger)
	if err != nil {
		return fmt.Errorf("database pool: %w", err)
	}

	if !database.WaitForDB(ctx, pool, logger) {
		pool.Close()
		return errors.New("database not ready after waiting")
	}

	c, err := container.NewContainer(cfg, pool, logger)
	if err != nil {
		pool.Close()
		return err
	}
	defer c.Close()

	apiServer := &http.Server{
		Addr:         ":" + cfg.Server.HTTPPort,
		Handler:      newHTTPHandler(logger, cfg.Server.Timeout, c.Router()),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.Server.Timeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", telemetry.Handler())
	metricsServer := &http.Server{
		Addr:              ":" + cfg.Observability.MetricsPort,
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	for name, srv := range map[string]*http.Server{"api": apiServer, "metrics": metricsServer} {
		g.Go(func() error {
			logger.Info("Starting HTTP server", slog.String("server", name), slog.String("address", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("%s server: %w", name, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutdown signal received, starting graceful shutdown...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return errors.Join(apiServer.Shutdown(shutdownCtx), metricsServer.Shutdown(shutdownCtx))
	})

	return g.Wait()
}

// newHTTPHandler wraps the API routes in the process-wide middleware stack.
// RemoteAddr is left as the socket peer: the auth throttle keys on it, and
// forwarded-for headers are client controlled.
func newHTTPHandler(logger *slog.Logger, timeout time.Duration, routes http.Handler) http.Handler {
	mux := chi.NewMux()
	mux.Use(middleware.RequestID)
	mux.Use(appLogger.StructuredLogger(logger))
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.StripSlashes)
	mux.Use(middleware.Timeout(timeout))
	mux.Use(middleware.Compress(5, "application/json"))
	mux.Mount("/", routes)
	return mux
}
