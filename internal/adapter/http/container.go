package http

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"todoserver/internal/adapter/database/memory"
	database "todoserver/internal/adapter/database/sqlite"
	repository "todoserver/internal/adapter/database/sqlite/repository"

	"todoserver/internal/adapter/http/handler"
	"todoserver/internal/core/port"
	"todoserver/internal/core/service"
	"todoserver/internal/core/telemetry"
	"todoserver/pkg/config"
	"todoserver/pkg/tracing"
)

type Container struct {
	TodoRepo    port.TodoRepository
	TodoService port.TodoService
	TodoHandler *handler.TodoHandler
}

func NewContainer(cfg *config.AppConfig, logger *config.AppLogger, probe port.Telemetry, metrics *telemetry.AppMetrics) (*Container, error) {
	todoRepo, err := newTodoRepository(cfg, probe, metrics)

	if err != nil {
		return nil, err
	}

	todoSvc := service.NewTodoService(todoRepo, probe)
	todoHandler := handler.NewTodoHandler(todoSvc, logger)

	return &Container{
		TodoRepo:    todoRepo,
		TodoService: todoSvc,
		TodoHandler: todoHandler,
	}, nil
}

func (c *Container) Close() error {
	return c.TodoRepo.Close()
}

func newTodoRepository(cfg *config.AppConfig, probe port.Telemetry, metrics *telemetry.AppMetrics) (port.TodoRepository, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		return memory.NewTodoStore(probe, metrics), nil
	case config.StoreDriverSQLite:
		var db *database.DB

		err := tracing.SpanWrapper(context.Background(), "sqlite.open", []attribute.KeyValue{
			attribute.String("db.system", "sqlite"),
		}, func(ctx context.Context) error {
			var err error
			db, err = database.NewDB(newSQLLogger(cfg.LogLevel))
			return err
		})

		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}

		return repository.NewTodoRepository(db, probe, metrics), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func newSQLLogger(level string) zerolog.Logger {
	zerologLevel, err := zerolog.ParseLevel(level)

	if err != nil {
		zerologLevel = zerolog.InfoLevel
	}

	return zerolog.New(os.Stdout).
		Level(zerologLevel).
		With().
		Timestamp().
		Str("component", "sqlite").
		Logger()
}
