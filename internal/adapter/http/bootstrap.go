package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"todoserver/internal/adapter/http/routes"
	"todoserver/internal/core/port"
	"todoserver/internal/core/telemetry"
	"todoserver/pkg/config"
)

type Server struct {
	httpServer *http.Server
	container  *Container
	logger     *config.AppLogger
	config     *config.AppConfig
}

func NewServer(cfg *config.AppConfig, metrics *telemetry.AppMetrics, logger *config.AppLogger, probe port.Telemetry) (*Server, error) {
	container, err := NewContainer(cfg, logger, probe, metrics)

	if err != nil {
		return nil, err
	}

	router := routes.SetupRouterWithConfig(routes.HandlersConfig{
		TodoHandler: container.TodoHandler,
	}, metrics, logger, cfg)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      routes.NewHandler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	return &Server{
		httpServer: srv,
		container:  container,
		logger:     logger,
		config:     cfg,
	}, nil
}

// Start blocks until the server stops. A graceful Shutdown is not an error.
func (s *Server) Start() error {
	s.logger.Logger.Info("Server starting",
		zap.String("port", s.config.Port),
		zap.String("environment", s.config.Environment),
		zap.String("store_driver", s.config.StoreDriver),
		zap.Bool("rate_limit_enabled", s.config.RateLimitEnabled),
		zap.Bool("telemetry_enabled", s.config.Telemetry.Enabled))

	s.logger.Logger.Info("listening on " + s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)

	if closeErr := s.container.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	return err
}
