package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"todoserver/internal/core/domain"
	"todoserver/internal/core/port"
	tel "todoserver/internal/core/telemetry"
)

const driverName = "memory"

var _ port.TodoRepository = (*TodoStore)(nil)

// TodoStore keeps todos in insertion order in a slice guarded by a single lock.
// Ids come from a counter that only moves forward, so they are never reused.
type TodoStore struct {
	mu     sync.RWMutex
	todos  []domain.Todo
	nextID int

	telemetry port.Telemetry
	metrics   *tel.AppMetrics
}

func NewTodoStore(telemetry port.Telemetry, metrics *tel.AppMetrics) *TodoStore {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TodoStore{
		todos:     make([]domain.Todo, 0),
		nextID:    1,
		telemetry: telemetry,
		metrics:   metrics,
	}
}

func (s *TodoStore) List(ctx context.Context) ([]domain.Todo, error) {
	ctx, span := s.telemetry.StartRepositorySpan(ctx, "List", "todo", map[string]interface{}{
		"db.system": driverName,
	})
	defer span.End()

	startTime := time.Now()

	s.mu.RLock()
	todos := make([]domain.Todo, 0, len(s.todos))

	for _, todo := range s.todos {
		todos = append(todos, todo.Clone())
	}
	s.mu.RUnlock()

	span.SetAttributes(map[string]interface{}{"todo.count": len(todos)})
	s.record(ctx, "List", startTime, nil)

	return todos, nil
}

func (s *TodoStore) GetByID(ctx context.Context, id int) (domain.Todo, error) {
	ctx, span := s.telemetry.StartRepositorySpan(ctx, "GetByID", "todo", map[string]interface{}{
		"db.system": driverName,
		"todo.id":   id,
	})
	defer span.End()

	startTime := time.Now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	index := s.indexOf(id)

	if index == -1 {
		err := fmt.Errorf("get todo %d: %w", id, domain.ErrTodoNotFound)
		s.record(ctx, "GetByID", startTime, err)
		return domain.Todo{}, err
	}

	s.record(ctx, "GetByID", startTime, nil)

	return s.todos[index].Clone(), nil
}

// Create ignores todo.ID and assigns the next counter value.
func (s *TodoStore) Create(ctx context.Context, todo domain.Todo) (domain.Todo, error) {
	ctx, span := s.telemetry.StartRepositorySpan(ctx, "Create", "todo", map[string]interface{}{
		"db.system": driverName,
	})
	defer span.End()

	startTime := time.Now()

	s.mu.Lock()

	stored := todo.Clone()
	stored.ID = s.nextID
	s.nextID++

	s.todos = append(s.todos, stored)
	s.setStored(ctx)

	s.mu.Unlock()

	span.SetAttributes(map[string]interface{}{"todo.id": stored.ID})
	s.record(ctx, "Create", startTime, nil)

	return stored.Clone(), nil
}

func (s *TodoStore) UpdateByID(ctx context.Context, todo domain.Todo) (domain.Todo, error) {
	ctx, span := s.telemetry.StartRepositorySpan(ctx, "UpdateByID", "todo", map[string]interface{}{
		"db.system": driverName,
		"todo.id":   todo.ID,
	})
	defer span.End()

	startTime := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.indexOf(todo.ID)

	if index == -1 {
		err := fmt.Errorf("update todo %d: %w", todo.ID, domain.ErrTodoNotFound)
		s.record(ctx, "UpdateByID", startTime, err)
		return domain.Todo{}, err
	}

	s.todos[index].ApplyUpdate(todo.Title, todo.Description)
	s.record(ctx, "UpdateByID", startTime, nil)

	return s.todos[index].Clone(), nil
}

func (s *TodoStore) DeleteByID(ctx context.Context, id int) error {
	ctx, span := s.telemetry.StartRepositorySpan(ctx, "DeleteByID", "todo", map[string]interface{}{
		"db.system": driverName,
		"todo.id":   id,
	})
	defer span.End()

	startTime := time.Now()

	s.mu.Lock()

	index := s.indexOf(id)

	if index == -1 {
		s.mu.Unlock()

		err := fmt.Errorf("delete todo %d: %w", id, domain.ErrTodoNotFound)
		s.record(ctx, "DeleteByID", startTime, err)
		return err
	}

	s.todos = append(s.todos[:index], s.todos[index+1:]...)
	s.setStored(ctx)

	s.mu.Unlock()

	s.record(ctx, "DeleteByID", startTime, nil)

	return nil
}

func (s *TodoStore) Close() error {
	return nil
}

// indexOf must be called with s.mu held.
func (s *TodoStore) indexOf(id int) int {
	for i := range s.todos {
		if s.todos[i].ID == id {
			return i
		}
	}

	return -1
}

func (s *TodoStore) record(ctx context.Context, operation string, startTime time.Time, err error) {
	s.telemetry.RecordRepositoryOperation(ctx, operation, "todo", time.Since(startTime), err)

	if s.metrics != nil {
		s.metrics.RecordStoreOperation(ctx, operation, driverName)
	}
}

// setStored must be called with s.mu held so gauge updates follow write order.
func (s *TodoStore) setStored(ctx context.Context) {
	if s.metrics != nil {
		s.metrics.SetTodosStored(ctx, len(s.todos))
	}
}
