// Package main is the entrypoint for the event gateway server.
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

	"go.uber.org/zap"

	"github.com/edgehook/event-gateway/internal/clients"
	"github.com/edgehook/event-gateway/internal/config"
	"github.com/edgehook/event-gateway/internal/events"
	"github.com/edgehook/event-gateway/internal/health"
	"github.com/edgehook/event-gateway/internal/middleware"
	"github.com/edgehook/event-gateway/internal/statusz"
	"github.com/edgehook/event-gateway/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := config.MustNewLogger(cfg)
	defer func() { _ = logger.Sync() }()

	logger.Info("starting event gateway",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("alt_request_id_header", cfg.AltRequestIDHeader),
	)

	// Initialize Redis client
	redisClient, err := clients.NewRedisClient(cfg.RedisURL)
	if err != nil {
		logger.Fatal("failed to create redis client", zap.Error(err))
	}
	defer func() { _ = redisClient.Close() }()

	// Initialize RabbitMQ client
	rabbitMQClient, err := clients.NewRabbitMQClient(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatal("failed to create rabbitmq client", zap.Error(err))
	}
	defer func() { _ = rabbitMQClient.Close() }()

	// Create router
	mux := http.NewServeMux()

	// Health endpoints
	healthHandlers := health.NewHandlers(redisClient, rabbitMQClient)
	mux.HandleFunc("GET /health/live", healthHandlers.LiveHandler)
	mux.HandleFunc("GET /health/ready", healthHandlers.ReadyHandler)

	// Status endpoints
	statusHandlers := statusz.NewHandlers(logger, cfg.StatusNetworks)
	mux.HandleFunc("GET /_status/ping", statusHandlers.PingHandler)
	mux.HandleFunc("GET /_status/error", statusHandlers.ErrorHandler)

	// Event ingest endpoint
	eventsService := events.NewService(redisClient, rabbitMQClient, logger)
	eventsHandler := events.NewHandler(eventsService, logger)
	mux.HandleFunc("POST /api/v1/events", eventsHandler.HandleIngest)

	// Apply middleware chain: RequestID outermost so every inner layer,
	// recovery included, sees the identifier by ambient lookup.
	var handler http.Handler = mux
	handler = middleware.Recovery(logger)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Maintenance(cfg.MaintenanceMode, cfg.MaintenanceMessage, logger)(handler)
	handler = middleware.RequestID(cfg.AltRequestIDHeader)(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Background worker
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	if cfg.WorkerEnabled {
		consumer := worker.New(rabbitMQClient, logger)
		go func() {
			if err := consumer.Start(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("worker stopped", zap.Error(err))
			}
		}()
	}

	// Start server in goroutine
	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	stopWorker()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
