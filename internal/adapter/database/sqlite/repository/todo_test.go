package repository_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"todoserver/internal/adapter/database/sqlite"
	"todoserver/internal/adapter/database/sqlite/repository"
	"todoserver/internal/core/domain"
	"todoserver/internal/core/port"
	"todoserver/internal/core/telemetry"
	. "todoserver/pkg/test"
	factory "todoserver/pkg/test/factory"
)

type TodoRepositoryTestSuite struct {
	suite.Suite
	DB       *sqlite.DB
	TodoRepo port.TodoRepository
}

var ctx = context.Background()

func (s *TodoRepositoryTestSuite) SetupTest() {
	s.DB = InitTestDB(s.T())
	s.TodoRepo = repository.NewTodoRepository(s.DB, telemetry.NewNoOpProbe(), nil)
}

func (s *TodoRepositoryTestSuite) TearDownTest() {
	s.TodoRepo.Close()
}

func TestTodoRepositoryTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(TodoRepositoryTestSuite))
}

func (s *TodoRepositoryTestSuite) TestRepository_List_Empty() {
	todos, err := s.TodoRepo.List(ctx)

	Expect(err).To(BeNil())
	Expect(todos).NotTo(BeNil())
	Expect(todos).To(BeEmpty())
}

func (s *TodoRepositoryTestSuite) TestRepository_Create_Success() {
	todo, err := s.TodoRepo.Create(ctx, domain.Todo{
		Title:       domain.StringValue("Buy groceries"),
		Description: domain.StringValue("I should buy groceries"),
		Completed:   domain.BoolValue(false),
	})

	Expect(err).To(BeNil())
	Expect(todo.ID).To(Equal(1))

	found, err := s.TodoRepo.GetByID(ctx, todo.ID)

	Expect(err).To(BeNil())
	Expect(found).To(Equal(todo))
}

func (s *TodoRepositoryTestSuite) TestRepository_Create_KeepsNullFields() {
	todo, _ := s.TodoRepo.Create(ctx, domain.Todo{Title: domain.StringValue("only title")})

	found, err := s.TodoRepo.GetByID(ctx, todo.ID)

	Expect(err).To(BeNil())
	Expect(found.Description).To(BeNil())
	Expect(found.Completed).To(BeNil())
}

func (s *TodoRepositoryTestSuite) TestRepository_List_InsertionOrder() {
	for _, title := range []string{"first", "second", "third"} {
		s.TodoRepo.Create(ctx, factory.NewTodo(map[string]any{"Title": title}))
	}

	todos, err := s.TodoRepo.List(ctx)

	Expect(err).To(BeNil())
	Expect(todos).To(HaveLen(3))
	Expect(todos[0].TitleOrEmpty()).To(Equal("first"))
	Expect(todos[2].TitleOrEmpty()).To(Equal("third"))
}

func (s *TodoRepositoryTestSuite) TestRepository_UpdateByID_Success() {
	todo, _ := s.TodoRepo.Create(ctx, domain.Todo{
		Title:       domain.StringValue("Buy groceries"),
		Description: domain.StringValue("I should buy groceries"),
		Completed:   domain.BoolValue(true),
	})

	updated, err := s.TodoRepo.UpdateByID(ctx, domain.Todo{
		ID:          todo.ID,
		Title:       domain.StringValue("Buy groceries"),
		Description: domain.StringValue("done"),
	})

	Expect(err).To(BeNil())
	Expect(string(updated.Description)).To(Equal(`"done"`))
	Expect(string(updated.Completed)).To(Equal("true"))
}

func (s *TodoRepositoryTestSuite) TestRepository_UpdateByID_NotFound() {
	_, err := s.TodoRepo.UpdateByID(ctx, domain.Todo{ID: 77, Title: domain.StringValue("x")})

	assert.ErrorIs(s.T(), err, domain.ErrTodoNotFound)
}

func (s *TodoRepositoryTestSuite) TestRepository_GetByID_NotFound() {
	_, err := s.TodoRepo.GetByID(ctx, 77)

	assert.ErrorIs(s.T(), err, domain.ErrTodoNotFound)
}

func (s *TodoRepositoryTestSuite) TestRepository_DeleteByID_Success() {
	a, _ := s.TodoRepo.Create(ctx, factory.NewTodo(map[string]any{"Title": "a"}))
	b, _ := s.TodoRepo.Create(ctx, factory.NewTodo(map[string]any{"Title": "b"}))

	err := s.TodoRepo.DeleteByID(ctx, a.ID)
	Expect(err).To(BeNil())
	Expect(CountRows(s.T(), s.DB, "todos")).To(Equal(1))

	todos, _ := s.TodoRepo.List(ctx)
	Expect(todos).To(HaveLen(1))
	Expect(todos[0].ID).To(Equal(b.ID))
}

func (s *TodoRepositoryTestSuite) TestRepository_DeleteByID_NotFound() {
	s.TodoRepo.Create(ctx, factory.NewTodo())

	err := s.TodoRepo.DeleteByID(ctx, 99)

	Expect(CountRows(s.T(), s.DB, "todos")).To(Equal(1))
	assert.ErrorIs(s.T(), err, domain.ErrTodoNotFound)
}

func (s *TodoRepositoryTestSuite) TestRepository_IDsNotReused() {
	first, _ := s.TodoRepo.Create(ctx, factory.NewTodo())
	s.TodoRepo.DeleteByID(ctx, first.ID)

	second, _ := s.TodoRepo.Create(ctx, factory.NewTodo())

	Expect(second.ID).To(BeNumerically(">", first.ID))
}

func (s *TodoRepositoryTestSuite) TestRepository_Create_StoresValuesOfAnyType() {
	todo, err := s.TodoRepo.Create(ctx, domain.Todo{
		Title:       json.RawMessage(`123`),
		Description: json.RawMessage(`{"steps":[1,2]}`),
		Completed:   json.RawMessage(`"yes"`),
	})
	Expect(err).To(BeNil())

	found, err := s.TodoRepo.GetByID(ctx, todo.ID)

	Expect(err).To(BeNil())
	Expect(string(found.Title)).To(Equal(`123`))
	Expect(string(found.Description)).To(Equal(`{"steps":[1,2]}`))
	Expect(string(found.Completed)).To(Equal(`"yes"`))
}

func (s *TodoRepositoryTestSuite) TestRepository_Create_KeepsExplicitNull() {
	todo, _ := s.TodoRepo.Create(ctx, domain.Todo{Title: json.RawMessage(`null`)})

	found, err := s.TodoRepo.GetByID(ctx, todo.ID)

	Expect(err).To(BeNil())
	Expect(string(found.Title)).To(Equal(`null`))
	Expect(found.Description).To(BeNil())
}

func TestTodoRepository_TracksStoredCount(t *testing.T) {
	RegisterTestingT(t)

	registry := prometheus.NewRegistry()
	repo := repository.NewTodoRepository(InitTestDB(t), telemetry.NewNoOpProbe(), telemetry.NewAppMetrics(registry))

	first, _ := repo.Create(ctx, factory.NewTodo())
	repo.Create(ctx, factory.NewTodo())
	repo.Create(ctx, factory.NewTodo())
	Expect(repo.DeleteByID(ctx, first.ID)).To(Succeed())

	expected := `
# HELP todos_stored Number of todos currently held in the store
# TYPE todos_stored gauge
todos_stored 2
`

	Expect(testutil.GatherAndCompare(registry, strings.NewReader(expected), "todos_stored")).To(Succeed())
}
