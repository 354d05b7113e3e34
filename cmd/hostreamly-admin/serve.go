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

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/jorgekof/hostreamly-admin/internal/metrics"
	chiTransport "github.com/jorgekof/hostreamly-admin/internal/transport/chi"
	"github.com/jorgekof/hostreamly-admin/internal/version"
)

func serve(c *cli.Context) error {
	d, err := bootstrap(c)
	if err != nil {
		return err
	}
	defer d.Close()

	cfg := d.cfg
	logger := d.logger
	logger.Info("Starting hostreamly-admin API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", d.env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("currency", d.formatter.Code()),
	)

	metrics.RegisterProviderMetrics()

	if cfg.Logs.SeedSample {
		if err := d.logs.SeedSample(c.Context); err != nil {
			return fmt.Errorf("seed logs: %w", err)
		}
	}
	if cfg.Provider.SecretKey != "" {
		logger.Info("Provider fallback secret configured")
	}

	server := chiTransport.NewServer(d.billing, d.credentials, d.logs, d.health, d.formatter, logger).
		WithTestRateLimit(cfg.Provider.TestRatePerMinute)

	r := newRouter(logger, cfg.HTTP.AllowedOrigins, cfg.Auth.APIKeys)
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-quit:
		logger.Info("Received shutdown signal")
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// newRouter builds the middleware stack shared by every route.
func newRouter(logger *zap.Logger, allowedOrigins, apiKeys []string) chi.Router {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   allowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(chiTransport.BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware("/metrics"))
	return r
}
