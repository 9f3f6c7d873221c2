package main

import (
	"context"
	"errors"
	"os"
	"time"

	"expensetracker/internal/amqp"
	"expensetracker/internal/charts"
	"expensetracker/internal/cli"
	"expensetracker/internal/config"
	"expensetracker/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	logger.Info("Starting chart-worker", "chart_dir", cfg.ChartDir)
	if cfg.DataBackend == config.BackendMemory {
		logger.Warn("Memory backend is private to this process, charts will stay empty")
	}

	ctx, cancel := cli.ShutdownContext(logger)
	defer cancel()

	// The worker only reads; it never publishes events of its own.
	res := cli.InitBackend(ctx, logger, cfg, false)
	cleanup := func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}
	defer cleanup()

	renderer := charts.NewPNGRenderer(cfg.ChartWidth, cfg.ChartHeight)
	chartWorker := worker.NewChartWorker(res.Store, renderer, cfg.ChartDir, logger)

	if err := chartWorker.RenderAll(ctx); err != nil {
		logger.Error("Initial chart render failed", "error", err)
	}

	if cfg.AMQPEnabled() {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			cleanup()
			os.Exit(1)
		}
		defer amqpClient.Close()

		go func() {
			if err := amqpClient.ConsumeTransactionEvents(ctx, chartWorker.HandleTransactionEvent); err != nil {
				if !errors.Is(err, context.Canceled) {
					logger.Error("Event consumption failed", "error", err)
				}
				cancel()
			}
		}()
	} else {
		logger.Info("AMQP_URL not set, charts are refreshed on the interval only",
			"interval", cfg.ChartRefreshInterval)
	}

	ticker := time.NewTicker(cfg.ChartRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Worker shutdown complete")
			return
		case <-ticker.C:
			if err := chartWorker.RenderAll(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Periodic chart render failed", "error", err)
			}
		}
	}
}
