package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yourusername/floodgate/api"
	"github.com/yourusername/floodgate/config"
	"github.com/yourusername/floodgate/core"
	"github.com/yourusername/floodgate/metrics"
	"github.com/yourusername/floodgate/middleware"
	"github.com/yourusername/floodgate/service"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "floodgate",
		Short: "HTTP admission control service backed by a token bucket",
		Long: `Floodgate admits or rejects each incoming request against a single
process-wide token bucket. The bucket policy can be changed at runtime via
POST /update without dropping in-flight accounting.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}

	cmd.Flags().Float64("capacity", 5, "maximum tokens the bucket can hold (burst size)")
	cmd.Flags().Float64("refill_rate", 0.5, "tokens added per second")
	cmd.Flags().Int("port", 8000, "port to listen on")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	return cmd
}

// newRouter builds the route table. Only the exact root path goes through
// the admission gate, so unknown paths 404 without consuming a token.
func newRouter(svc *service.RateLimiterService, handler *api.Handler, metricsHandler *api.MetricsHandler, streamHandler *api.StreamHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/{$}", middleware.RateLimit(svc)(http.HandlerFunc(handler.Admitted)))
	mux.HandleFunc("/update", handler.UpdateRateLimit)
	mux.HandleFunc("/health", handler.Health)
	mux.Handle("/metrics", metricsHandler)
	mux.Handle("/metrics/stream", streamHandler)
	mux.HandleFunc("/dashboard", dashboardHandler)
	return mux
}

func run(cfg *config.Config) error {
	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	tracker := metrics.NewMetrics()

	svc, err := service.New(core.Config{
		Capacity:   cfg.Limiter.Capacity,
		RefillRate: cfg.Limiter.RefillRate,
	}, logger, tracker)
	if err != nil {
		return fmt.Errorf("failed to create rate limiter: %w", err)
	}

	handler := api.NewHandler(svc, logger)
	metricsHandler := api.NewMetricsHandler(tracker, svc)
	streamHandler := api.NewStreamHandler(tracker, svc, logger)

	mux := newRouter(svc, handler, metricsHandler, streamHandler)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      middleware.RequestID(logger)(mux),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		logger.Info("server started",
			zap.String("address", server.Addr),
			zap.Float64("capacity", cfg.Limiter.Capacity),
			zap.Float64("refill_rate", cfg.Limiter.RefillRate))

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return err
	}

	logger.Info("server stopped")
	return nil
}
