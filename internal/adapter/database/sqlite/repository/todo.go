package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"

	"todoserver/internal/adapter/database/sqlite"
	"todoserver/internal/core/domain"
	"todoserver/internal/core/port"
	tel "todoserver/internal/core/telemetry"
)

const driverName = "sqlite"

var todoColumns = []string{"id", "title", "description", "completed"}

// TodoRepository stores each field as the JSON text the client sent; SQL NULL
// marks an absent field.
type TodoRepository struct {
	db        *sqlite.DB
	telemetry port.Telemetry
	metrics   *tel.AppMetrics

	// writeMu orders writes with their todos_stored gauge update.
	writeMu sync.Mutex
}

func NewTodoRepository(db *sqlite.DB, telemetry port.Telemetry, metrics *tel.AppMetrics) port.TodoRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TodoRepository{
		db:        db,
		telemetry: telemetry,
		metrics:   metrics,
	}
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (tr *TodoRepository) List(ctx context.Context) ([]domain.Todo, error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "List", "todo", map[string]interface{}{
		"db.system": driverName,
		"db.table":  "todos",
	})
	defer span.End()

	startTime := time.Now()

	query, args, err := tr.db.QueryBuilder.Select(todoColumns...).
		From("todos").
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, tr.fail(ctx, span, "List", startTime, err)
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "List", "todo", query, args)

	rows, err := tr.db.QueryContext(ctx, query, args...)

	if err != nil {
		return nil, tr.fail(ctx, span, "List", startTime, err)
	}

	defer rows.Close()

	todos := make([]domain.Todo, 0)

	for rows.Next() {
		todo, err := scanTodo(rows)

		if err != nil {
			return nil, tr.fail(ctx, span, "List", startTime, err)
		}

		todos = append(todos, todo)
	}

	if err := rows.Err(); err != nil {
		return nil, tr.fail(ctx, span, "List", startTime, err)
	}

	span.SetAttributes(map[string]interface{}{"todo.count": len(todos)})
	tr.record(ctx, "List", startTime, nil)

	return todos, nil
}

func (tr *TodoRepository) GetByID(ctx context.Context, id int) (domain.Todo, error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "GetByID", "todo", map[string]interface{}{
		"db.system": driverName,
		"db.table":  "todos",
		"todo.id":   id,
	})
	defer span.End()

	startTime := time.Now()

	todo, err := tr.findByID(ctx, tr.db, id)

	if err != nil {
		return domain.Todo{}, tr.fail(ctx, span, "GetByID", startTime, err)
	}

	tr.record(ctx, "GetByID", startTime, nil)

	return todo, nil
}

func (tr *TodoRepository) Create(ctx context.Context, todo domain.Todo) (domain.Todo, error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "Create", "todo", map[string]interface{}{
		"db.system": driverName,
		"db.table":  "todos",
	})
	defer span.End()

	startTime := time.Now()

	query, args, err := tr.db.QueryBuilder.Insert("todos").
		Columns("title", "description", "completed").
		Values(nullable(todo.Title), nullable(todo.Description), nullable(todo.Completed)).
		ToSql()

	if err != nil {
		return domain.Todo{}, tr.fail(ctx, span, "Create", startTime, err)
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "Create", "todo", query, args)

	tr.writeMu.Lock()
	defer tr.writeMu.Unlock()

	result, err := tr.db.ExecContext(ctx, query, args...)

	if err != nil {
		return domain.Todo{}, tr.fail(ctx, span, "Create", startTime, err)
	}

	id, err := result.LastInsertId()

	if err != nil {
		return domain.Todo{}, tr.fail(ctx, span, "Create", startTime, err)
	}

	created := todo.Clone()
	created.ID = int(id)

	span.SetAttributes(map[string]interface{}{"todo.id": created.ID})
	tr.record(ctx, "Create", startTime, nil)
	tr.setStored(ctx)

	return created, nil
}

// UpdateByID runs the update and the read-back in one transaction; the pool has a
// single connection, so no other operation can interleave.
func (tr *TodoRepository) UpdateByID(ctx context.Context, todo domain.Todo) (domain.Todo, error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "UpdateByID", "todo", map[string]interface{}{
		"db.system": driverName,
		"db.table":  "todos",
		"todo.id":   todo.ID,
	})
	defer span.End()

	startTime := time.Now()

	query, args, err := tr.db.QueryBuilder.Update("todos").
		Set("title", nullable(todo.Title)).
		Set("description", nullable(todo.Description)).
		Where(sq.Eq{"id": todo.ID}).
		ToSql()

	if err != nil {
		return domain.Todo{}, tr.fail(ctx, span, "UpdateByID", startTime, err)
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "UpdateByID", "todo", query, args)

	tx, err := tr.db.BeginTx(ctx, nil)

	if err != nil {
		return domain.Todo{}, tr.fail(ctx, span, "UpdateByID", startTime, err)
	}

	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, query, args...)

	if err != nil {
		return domain.Todo{}, tr.fail(ctx, span, "UpdateByID", startTime, err)
	}

	if err := requireAffected(result, todo.ID); err != nil {
		return domain.Todo{}, tr.fail(ctx, span, "UpdateByID", startTime, err)
	}

	updated, err := tr.findByID(ctx, tx, todo.ID)

	if err != nil {
		return domain.Todo{}, tr.fail(ctx, span, "UpdateByID", startTime, err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Todo{}, tr.fail(ctx, span, "UpdateByID", startTime, err)
	}

	tr.record(ctx, "UpdateByID", startTime, nil)

	return updated, nil
}

func (tr *TodoRepository) DeleteByID(ctx context.Context, id int) error {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "DeleteByID", "todo", map[string]interface{}{
		"db.system": driverName,
		"db.table":  "todos",
		"todo.id":   id,
	})
	defer span.End()

	startTime := time.Now()

	query, args, err := tr.db.QueryBuilder.Delete("todos").
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		return tr.fail(ctx, span, "DeleteByID", startTime, err)
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "DeleteByID", "todo", query, args)

	tr.writeMu.Lock()
	defer tr.writeMu.Unlock()

	result, err := tr.db.ExecContext(ctx, query, args...)

	if err != nil {
		return tr.fail(ctx, span, "DeleteByID", startTime, err)
	}

	if err := requireAffected(result, id); err != nil {
		return tr.fail(ctx, span, "DeleteByID", startTime, err)
	}

	tr.record(ctx, "DeleteByID", startTime, nil)
	tr.setStored(ctx)

	return nil
}

func (tr *TodoRepository) Close() error {
	return tr.db.Close()
}

func (tr *TodoRepository) findByID(ctx context.Context, q queryer, id int) (domain.Todo, error) {
	query, args, err := tr.db.QueryBuilder.Select(todoColumns...).
		From("todos").
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		return domain.Todo{}, err
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "GetByID", "todo", query, args)

	todo, err := scanTodo(q.QueryRowContext(ctx, query, args...))

	if errors.Is(err, sql.ErrNoRows) {
		return domain.Todo{}, fmt.Errorf("get todo %d: %w", id, domain.ErrTodoNotFound)
	}

	return todo, err
}

func (tr *TodoRepository) fail(ctx context.Context, span port.Span, operation string, startTime time.Time, err error) error {
	if !errors.Is(err, domain.ErrTodoNotFound) {
		span.SetStatus("error", err.Error())
		span.RecordError(err)
		err = fmt.Errorf("sqlite %s: %w", operation, err)
	}

	tr.record(ctx, operation, startTime, err)

	return err
}

func (tr *TodoRepository) record(ctx context.Context, operation string, startTime time.Time, err error) {
	tr.telemetry.RecordRepositoryOperation(ctx, operation, "todo", time.Since(startTime), err)

	if tr.metrics != nil {
		tr.metrics.RecordStoreOperation(ctx, operation, driverName)
	}
}

// setStored must be called with writeMu held.
func (tr *TodoRepository) setStored(ctx context.Context) {
	if tr.metrics == nil {
		return
	}

	query, args, err := tr.db.QueryBuilder.Select("COUNT(*)").From("todos").ToSql()

	if err != nil {
		return
	}

	var count int

	if err := tr.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		tr.telemetry.RecordRepositoryOperation(ctx, "Count", "todo", 0, err)
		return
	}

	tr.metrics.SetTodosStored(ctx, count)
}

func nullable(raw json.RawMessage) any {
	if raw == nil {
		return nil
	}

	return string(raw)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(row rowScanner) (domain.Todo, error) {
	var (
		id          int
		title       sql.NullString
		description sql.NullString
		completed   sql.NullString
	)

	if err := row.Scan(&id, &title, &description, &completed); err != nil {
		return domain.Todo{}, err
	}

	todo := domain.Todo{ID: id}

	if title.Valid {
		todo.Title = json.RawMessage(title.String)
	}

	if description.Valid {
		todo.Description = json.RawMessage(description.String)
	}

	if completed.Valid {
		todo.Completed = json.RawMessage(completed.String)
	}

	return todo, nil
}

func requireAffected(result sql.Result, id int) error {
	affected, err := result.RowsAffected()

	if err != nil {
		return err
	}

	if affected == 0 {
		return fmt.Errorf("todo %d: %w", id, domain.ErrTodoNotFound)
	}

	return nil
}
