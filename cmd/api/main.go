package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	apihttp "todoserver/internal/adapter/http"
	adaptertelemetry "todoserver/internal/adapter/telemetry"
	"todoserver/internal/core/port"
	"todoserver/internal/core/telemetry"
	"todoserver/pkg/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()

	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	logger, err := config.NewAppLogger(cfg.Telemetry.ServiceName, cfg.LogLevel, cfg.LokiURL)

	if err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}

	defer logger.Sync()

	var (
		metrics *telemetry.AppMetrics
		probe   port.Telemetry
	)

	if cfg.Telemetry.Enabled {
		container, err := adaptertelemetry.NewContainer(ctx, cfg.Telemetry, cfg.Environment, logger.Logger.Logger)

		if err != nil {
			logger.Logger.Fatal("Failed to initialize telemetry", zap.Error(err))
		}

		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := container.Shutdown(shutdownCtx); err != nil {
				logger.Logger.Error("Failed to shut down telemetry", zap.Error(err))
			}
		}()

		metrics = container.AppMetrics
		probe = container.NewTelemetryProbe(logger)
	} else {
		metrics = telemetry.NewAppMetrics(prometheus.NewRegistry())
		probe = telemetry.NewOTELProbe(logger.Logger, metrics)
	}

	metrics.StartSystemMetrics(ctx)

	server, err := apihttp.NewServer(cfg, metrics, logger, probe)

	if err != nil {
		logger.Logger.Fatal("Failed to build server", zap.Error(err))
	}

	serverErr := make(chan error, 1)

	go func() {
		serverErr <- server.Start()
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Logger.Error("Server failed", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Logger.Info("Shutting down gracefully...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error("Failed to shut down server", zap.Error(err))
	}
}
