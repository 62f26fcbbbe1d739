package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/apptline/internal/api/router"
	"github.com/wolfman30/apptline/internal/appointments"
	"github.com/wolfman30/apptline/internal/call"
	appconfig "github.com/wolfman30/apptline/internal/config"
	"github.com/wolfman30/apptline/internal/observability/metrics"
	"github.com/wolfman30/apptline/internal/session"
	"github.com/wolfman30/apptline/pkg/logging"
)

func main() {
	// Load configuration
	_ = godotenv.Load()
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting apptline API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Appointment store: Postgres when configured, in-memory otherwise.
	var repo appointments.Repository
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		repo = appointments.NewPostgresRepository(pool)
		logger.Info("using postgres appointment store")
	} else {
		repo = appointments.NewInMemoryRepository()
		logger.Warn("DATABASE_URL not set, using in-memory appointment store")
	}

	// Transcript store: Redis when configured, in-memory otherwise.
	var transcripts call.TranscriptStore
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		transcripts = call.NewRedisTranscriptStore(redis.NewClient(opts), cfg.TranscriptTTL)
		logger.Info("using redis transcript store", "addr", cfg.RedisAddr)
	} else {
		transcripts = call.NewMemoryTranscriptStore()
	}

	apptMetrics := metrics.NewAppointmentMetrics(nil)
	callMetrics := metrics.NewCallMetrics(nil)

	// Session list: fetched once at startup; failures leave it in an error
	// state recoverable through the manual refresh endpoint.
	list := session.NewList(repo, logger)
	if err := list.Load(ctx); err != nil {
		logger.Error("initial appointment fetch failed, refresh required", "error", err)
	}

	onUpdate := func(appt appointments.Appointment, action string) {
		list.ReplaceByID(appt)
		apptMetrics.ObserveUpdate(action)
	}
	callService := call.NewService(repo, transcripts, onUpdate, callMetrics, logger)

	if cfg.UseAIIntentResolver && cfg.OpenRouterAPIKey != "" {
		// Alternate intent backend; off by default, the dialogue ships on
		// the local parser.
		callService.SetResolver(call.NewAIIntentResolver(cfg.OpenRouterAPIKey, cfg.OpenRouterBaseURL, cfg.OpenRouterModel, logger))
		logger.Info("AI intent resolver enabled", "model", cfg.OpenRouterModel)
	}

	// Initialize handlers
	appointmentsHandler := appointments.NewHandler(repo, list, apptMetrics, logger)
	callHandler := call.NewHandler(callService, logger)
	sessionHandler := session.NewHandler(list, logger)

	// Setup router
	r := router.New(&router.Config{
		Logger:              logger,
		AppointmentsHandler: appointmentsHandler,
		CallHandler:         callHandler,
		SessionHandler:      sessionHandler,
		MetricsHandler:      promhttp.Handler(),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
	})

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
