package factory

import (
	fab "github.com/Goldziher/fabricator"

	"todoserver/internal/core/domain"
)

// TodoAttributes is the flat shape fabricator fills in before it is turned into
// a domain.Todo with every field present.
type TodoAttributes struct {
	Title       string
	Description string
	Completed   bool
}

func NewTodoAttributes(customData ...map[string]any) TodoAttributes {
	instance := fab.New(TodoAttributes{})

	if len(customData) > 0 {
		return instance.Build(customData...)
	}

	return instance.Build()
}

func NewTodo(customData ...map[string]any) domain.Todo {
	attrs := NewTodoAttributes(customData...)

	return domain.Todo{
		Title:       domain.StringValue(attrs.Title),
		Description: domain.StringValue(attrs.Description),
		Completed:   domain.BoolValue(attrs.Completed),
	}
}
