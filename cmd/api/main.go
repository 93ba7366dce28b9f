package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"institution-site-backend/config"
	"institution-site-backend/internal/content"
	v1 "institution-site-backend/internal/delivery/http/v1"
	"institution-site-backend/internal/usecase"
	"institution-site-backend/pkg/contentstore"
	"institution-site-backend/pkg/email"
	"institution-site-backend/pkg/logger"
	"institution-site-backend/pkg/metrics"
	redisclient "institution-site-backend/pkg/redis"
	"institution-site-backend/pkg/security"
	"institution-site-backend/pkg/validation"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting institution site backend", "port", cfg.Port)

	secLogger := security.InitSecurityLogger("institution-site-backend", security.Environment())
	defer secLogger.Sync()

	// 3. Setup Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	contactMetrics := metrics.NewContactMetrics(registry)
	contentMetrics := metrics.NewContentMetrics(registry)

	// 4. Setup Content Guard (Redis cache is optional)
	guardOpts := []content.GuardOption{content.WithMetrics(contentMetrics)}
	redisClient, err := redisclient.NewClient(context.Background(), redisclient.Config{
		URL:      cfg.UpstashRedisURL,
		Password: cfg.UpstashRedisPassword,
	})
	switch {
	case errors.Is(err, redisclient.ErrNotConfigured):
		logger.Log.Info("Redis not configured - content cache disabled")
	case err != nil:
		logger.Log.Warn("Redis unavailable - content cache disabled", "error", err)
	default:
		defer redisClient.Close()
		guardOpts = append(guardOpts, content.WithCache(redisclient.NewContentCache(redisClient, ""), cfg.ContentCacheTTL))
		logger.Log.Info("Content cache enabled", "ttl", cfg.ContentCacheTTL)
	}
	if cfg.SanityProjectID == "" {
		logger.Log.Warn("SANITY_PROJECT_ID not set - content endpoints will serve fallbacks")
	}
	guard := content.NewGuard(contentstore.NewClient(cfg), logger.Log, guardOpts...)

	// 5. Setup Email Dispatcher
	var dispatcher email.Dispatcher
	if cfg.MailDryRun {
		logger.Log.Warn("MAIL_DRY_RUN enabled - contact emails will be logged, not sent")
		dispatcher = email.NewStubDispatcher(logger.Log)
	} else {
		dispatcher = email.NewSMTPDispatcher(cfg, logger.Log)
	}
	if missing := cfg.MissingMailSettings(); len(missing) > 0 {
		logger.Log.Warn("Email service not fully configured - contact form will be unavailable", "missing", missing)
	}

	// 6. Setup UseCases
	contactUC := usecase.NewContactUsecase(usecase.ContactDeps{
		Config:         cfg,
		Validator:      validation.NewValidator(),
		Dispatcher:     dispatcher,
		SecurityLogger: secLogger,
		Metrics:        contactMetrics,
		Logger:         logger.Log,
	})
	contentUC := usecase.NewContentUsecase(guard)

	// 7. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		ContactUC:      contactUC,
		ContentUC:      contentUC,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Config:         cfg,
		Logger:         logger.Log,
	})

	// 8. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	// Long enough for an in-flight SMTP delivery to finish
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
