package service

import (
	"context"
	"strconv"
	"time"

	"todoserver/internal/core/domain"
	"todoserver/internal/core/port"
	tel "todoserver/internal/core/telemetry"
)

const serviceName = "todo"

var _ port.TodoService = (*TodoService)(nil)

type TodoService struct {
	repo      port.TodoRepository
	telemetry port.Telemetry
}

func NewTodoService(repo port.TodoRepository, telemetry port.Telemetry) *TodoService {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TodoService{
		repo:      repo,
		telemetry: telemetry,
	}
}

func (ts *TodoService) List(ctx context.Context) ([]domain.Todo, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, serviceName, "list", nil)
	defer span.End()

	startTime := time.Now()

	todos, err := ts.repo.List(ctx)
	ts.telemetry.RecordServiceOperation(ctx, serviceName, "list", time.Since(startTime), err)

	if err != nil {
		return nil, err
	}

	return todos, nil
}

func (ts *TodoService) Get(ctx context.Context, id int) (domain.Todo, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, serviceName, "get", map[string]interface{}{
		"todo.id": id,
	})
	defer span.End()

	startTime := time.Now()

	todo, err := ts.repo.GetByID(ctx, id)
	ts.telemetry.RecordServiceOperation(ctx, serviceName, "get", time.Since(startTime), err)

	return todo, err
}

func (ts *TodoService) Create(ctx context.Context, todo domain.Todo) (domain.Todo, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, serviceName, "create", nil)
	defer span.End()

	startTime := time.Now()

	newTodo := domain.Todo{
		Title:       todo.Title,
		Description: todo.Description,
		Completed:   todo.Completed,
	}

	created, err := ts.repo.Create(ctx, newTodo)
	ts.telemetry.RecordServiceOperation(ctx, serviceName, "create", time.Since(startTime), err)

	if err != nil {
		return domain.Todo{}, err
	}

	ts.telemetry.RecordBusinessEvent(ctx, "created", "todo", strconv.Itoa(created.ID), created.ToMap())

	return created, nil
}

// Update replaces title and description of the todo identified by todo.ID.
func (ts *TodoService) Update(ctx context.Context, todo domain.Todo) (domain.Todo, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, serviceName, "update", map[string]interface{}{
		"todo.id": todo.ID,
	})
	defer span.End()

	startTime := time.Now()

	updated, err := ts.repo.UpdateByID(ctx, domain.Todo{
		ID:          todo.ID,
		Title:       todo.Title,
		Description: todo.Description,
	})
	ts.telemetry.RecordServiceOperation(ctx, serviceName, "update", time.Since(startTime), err)

	if err != nil {
		return domain.Todo{}, err
	}

	ts.telemetry.RecordBusinessEvent(ctx, "updated", "todo", strconv.Itoa(updated.ID), updated.ToMap())

	return updated, nil
}

func (ts *TodoService) Delete(ctx context.Context, id int) error {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, serviceName, "delete", map[string]interface{}{
		"todo.id": id,
	})
	defer span.End()

	startTime := time.Now()

	err := ts.repo.DeleteByID(ctx, id)
	ts.telemetry.RecordServiceOperation(ctx, serviceName, "delete", time.Since(startTime), err)

	if err != nil {
		return err
	}

	ts.telemetry.RecordBusinessEvent(ctx, "deleted", "todo", strconv.Itoa(id), nil)

	return nil
}
