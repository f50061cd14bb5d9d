package routes

import (
	"net/http"

	"todoserver/internal/adapter/http/handler"
	"todoserver/internal/adapter/http/helper"
	"todoserver/internal/adapter/http/middleware"
	"todoserver/internal/core/telemetry"
	"todoserver/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type HandlersConfig struct {
	TodoHandler *handler.TodoHandler
}

func SetupRouterWithConfig(handlers HandlersConfig, metrics *telemetry.AppMetrics, logger *config.AppLogger, cfg *config.AppConfig) *gin.Engine {
	gin.SetMode(cfg.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	router.Use(middleware.CurrentMiddleware())
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.MetricsMiddleware(metrics))
	router.Use(middleware.BodyLimitMiddleware(cfg.MaxBodyBytes))

	if cfg.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.RateLimit, logger.Logger.Logger, metrics)
		router.Use(rateLimiter.RateLimitMiddleware())
	}

	if handlers.TodoHandler != nil {
		setupTodoRoutes(router, handlers.TodoHandler)
	}

	router.NoRoute(helper.SendNotFound)

	return router
}

func setupTodoRoutes(router *gin.Engine, todoHandler *handler.TodoHandler) {
	todos := router.Group("/todos")
	{
		todos.GET("", todoHandler.GetAllTodos)
		todos.POST("", todoHandler.CreateTodo)
		todos.GET("/:id", todoHandler.GetTodo)
		todos.PUT("/:id", todoHandler.UpdateTodo)
		todos.DELETE("/:id", todoHandler.DeleteTodo)
	}
}

// NewHandler wraps the router with CORS handling for any origin. Preflight
// requests are answered before they reach gin.
func NewHandler(router *gin.Engine) http.Handler {
	return cors.AllowAll().Handler(router)
}
