package handler

import (
	"errors"
	"io"
	"net/http"

	. "todoserver/internal/adapter/http/helper"
	"todoserver/internal/core/domain"
	"todoserver/internal/core/model/request"
	"todoserver/internal/core/port"
	"todoserver/pkg/config"
	. "todoserver/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type TodoHandler struct {
	svc    port.TodoService
	Logger *config.AppLogger
}

func NewTodoHandler(todoService port.TodoService, logger *config.AppLogger) *TodoHandler {
	if logger == nil {
		logger = config.NewNopLogger()
	}

	return &TodoHandler{
		svc:    todoService,
		Logger: logger,
	}
}

func (t *TodoHandler) GetAllTodos(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.GetAllTodos", handlerAttributes(c, "GetAllTodos"))
	defer span.End()

	todos, err := t.svc.List(ctx)

	if err != nil {
		AddSpanError(span, err)

		t.Logger.Logger.Ctx(ctx).Error("Failed to list todos", zap.Error(err))

		SendInternalError(c, "Error listing todos")
		return
	}

	if todos == nil {
		todos = []domain.Todo{}
	}

	span.SetAttributes(attribute.Int("todo.count", len(todos)))
	AddHTTPAttributes(span, c.Request.Method, c.FullPath(), http.StatusOK)

	c.JSON(http.StatusOK, todos)
}

func (t *TodoHandler) GetTodo(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.GetTodo", handlerAttributes(c, "GetTodo"))
	defer span.End()

	id, err := domain.ParseID(c.Param("id"))

	if err != nil {
		SendNotFound(c)
		return
	}

	span.SetAttributes(attribute.Int("todo.id", id))

	todo, err := t.svc.Get(ctx, id)

	if err != nil {
		t.handleServiceError(c, span, err, "Error getting todo")
		return
	}

	AddHTTPAttributes(span, c.Request.Method, c.FullPath(), http.StatusOK)

	c.JSON(http.StatusOK, todo)
}

func (t *TodoHandler) CreateTodo(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.CreateTodo", handlerAttributes(c, "CreateTodo"))
	defer span.End()

	var params request.TodoRequest

	if !t.bindBody(c, span, &params) {
		return
	}

	todo, err := t.svc.Create(ctx, domain.Todo{
		Title:       params.Title,
		Description: params.Description,
		Completed:   params.Completed,
	})

	if err != nil {
		t.handleServiceError(c, span, err, "Error creating todo")
		return
	}

	t.Logger.InfoWithTrace(ctx, "Todo created", zap.Int("todo_id", todo.ID))

	span.SetAttributes(attribute.Int("todo.id", todo.ID))
	AddHTTPAttributes(span, c.Request.Method, c.FullPath(), http.StatusCreated)

	c.JSON(http.StatusCreated, todo)
}

// UpdateTodo decodes the body before it looks at the id, so a malformed body is
// a 400 even when the id matches nothing.
func (t *TodoHandler) UpdateTodo(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.UpdateTodo", handlerAttributes(c, "UpdateTodo"))
	defer span.End()

	var params request.UpdateTodoRequest

	if !t.bindBody(c, span, &params) {
		return
	}

	id, err := domain.ParseID(c.Param("id"))

	if err != nil {
		SendNotFound(c)
		return
	}

	span.SetAttributes(attribute.Int("todo.id", id))

	todo, err := t.svc.Update(ctx, domain.Todo{
		ID:          id,
		Title:       params.Title,
		Description: params.Description,
	})

	if err != nil {
		t.handleServiceError(c, span, err, "Error updating todo")
		return
	}

	AddHTTPAttributes(span, c.Request.Method, c.FullPath(), http.StatusOK)

	c.JSON(http.StatusOK, todo)
}

func (t *TodoHandler) DeleteTodo(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.DeleteTodo", handlerAttributes(c, "DeleteTodo"))
	defer span.End()

	id, err := domain.ParseID(c.Param("id"))

	if err != nil {
		SendNotFound(c)
		return
	}

	span.SetAttributes(attribute.Int("todo.id", id))

	if err := t.svc.Delete(ctx, id); err != nil {
		t.handleServiceError(c, span, err, "Error deleting todo")
		return
	}

	t.Logger.InfoWithTrace(ctx, "Todo deleted", zap.Int("todo_id", id))

	AddHTTPAttributes(span, c.Request.Method, c.FullPath(), http.StatusOK)

	SendEmpty(c, http.StatusOK)
}

// bindBody decodes the JSON body into dst. A missing or empty body leaves dst
// untouched. It writes the error response itself and reports whether the
// handler may continue.
func (t *TodoHandler) bindBody(c *gin.Context, span trace.Span, dst any) bool {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return true
	}

	err := c.ShouldBindJSON(dst)

	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	AddSpanError(span, err)

	var maxBytesErr *http.MaxBytesError

	if errors.As(err, &maxBytesErr) {
		SendPayloadTooLargeError(c, maxBytesErr.Limit)
		return false
	}

	t.Logger.Logger.Ctx(c.Request.Context()).Warn("Invalid request body", zap.Error(err))

	SendBadRequestError(c, "body", err.Error())
	return false
}

func (t *TodoHandler) handleServiceError(c *gin.Context, span trace.Span, err error, message string) {
	if errors.Is(err, domain.ErrTodoNotFound) {
		SendNotFound(c)
		return
	}

	AddSpanError(span, err)

	t.Logger.ErrorWithTrace(c.Request.Context(), message, zap.Error(err))

	SendInternalError(c, message)
}

func handlerAttributes(c *gin.Context, operation string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("handler.operation", operation),
		attribute.String("handler.method", c.Request.Method),
		attribute.String("handler.path", c.FullPath()),
	}
}
