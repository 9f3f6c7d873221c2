package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"expensetracker/internal/cache"
	"expensetracker/internal/charts"
	"expensetracker/internal/cli"
	apphttp "expensetracker/internal/http"
	"expensetracker/internal/log"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := cli.ShutdownContext(logger)
	defer cancel()

	res := cli.InitBackend(ctx, logger, cfg, true)
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()

	caches := cache.NewManager()
	caches.Register(res.Service.Cache())
	caches.StartCleanup(cfg.CacheTTL)
	defer caches.Stop()

	renderer := charts.NewPNGRenderer(cfg.ChartWidth, cfg.ChartHeight)
	srv := apphttp.NewServer(":"+cfg.Port, res.Service, renderer, apphttp.Options{
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting expense tracker",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"amqp_enabled", cfg.AMQPEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			logger.Error("Server error", "error", err, "port", cfg.Port)
			res.Cleanup()
			os.Exit(1)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	logger.Info("Shutting down server", log.FieldOperation, log.OpShutdown)
	start := time.Now()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	m := srv.Metrics()
	logger.Info("Server stopped gracefully",
		"duration", time.Since(start),
		"requests_served", m.TotalRequests,
		"requests_failed", m.FailedRequests)
}
