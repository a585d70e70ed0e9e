package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/triage-ai-platform/internal/api/router"
	"github.com/wolfman30/triage-ai-platform/internal/app/bootstrap"
	"github.com/wolfman30/triage-ai-platform/internal/compliance"
	appconfig "github.com/wolfman30/triage-ai-platform/internal/config"
	"github.com/wolfman30/triage-ai-platform/internal/escalation"
	"github.com/wolfman30/triage-ai-platform/internal/http/handlers"
	"github.com/wolfman30/triage-ai-platform/internal/imaging"
	"github.com/wolfman30/triage-ai-platform/internal/intake"
	"github.com/wolfman30/triage-ai-platform/internal/observability/metrics"
	"github.com/wolfman30/triage-ai-platform/internal/pharmacy"
	"github.com/wolfman30/triage-ai-platform/internal/pipeline"
	"github.com/wolfman30/triage-ai-platform/internal/therapy"
	"github.com/wolfman30/triage-ai-platform/pkg/logging"
)

func main() {
	// .env is optional; real deployments set env vars directly
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting triage-ai-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Reference data: Postgres when DATABASE_URL is set, bundled CSV/JSON
	// files otherwise
	store, err := bootstrap.LoadReferenceData(ctx, cfg, logger, func(url string) (*sql.DB, error) {
		return sql.Open("postgres", url)
	})
	if err != nil {
		logger.Error("failed to load reference data", "error", err)
		os.Exit(1)
	}
	logger.Info("reference data loaded",
		"medicines", len(store.Medicines()),
		"pharmacies", len(store.Pharmacies()),
	)

	// Uploads: S3 when UPLOAD_BUCKET is set, local disk otherwise
	uploads, err := bootstrap.BuildUploadStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize upload store", "error", err)
		os.Exit(1)
	}

	// Order sessions: Redis when REDIS_ADDR is set, in-process otherwise
	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	sessions := bootstrap.BuildSessionStore(redisClient, logger)

	registry := prometheus.NewRegistry()
	pipelineMetrics := metrics.NewPipelineMetrics(registry)

	coordinator := pipeline.NewCoordinator(pipeline.Config{
		Store:      store,
		Normalizer: intake.NewNormalizer(uploads, intake.NewMockExtractor(), logger),
		Estimator:  imaging.NewFilenameEstimator(),
		Therapy:    therapy.NewEngine(store, logger),
		Escalation: escalation.NewEvaluator(store, cfg.ConfidenceThreshold, logger),
		Pharmacy:   pharmacy.NewMatcher(store, logger),
		Disclaimer: compliance.NewDisclaimerService(compliance.DisclaimerMedium, ""),
		Metrics:    pipelineMetrics,
		Logger:     logger,
		DefaultLat: cfg.DefaultLatitude,
		DefaultLon: cfg.DefaultLongitude,
	})

	// Setup router
	routerCfg := &router.Config{
		Logger:             logger,
		TriageHandler:      handlers.NewTriageHandler(coordinator, logger),
		OrdersHandler:      handlers.NewOrdersHandler(sessions, pipelineMetrics, logger),
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	r := router.New(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}
