package domain

import (
	"encoding/json"
	"errors"
	"strconv"
)

var ErrTodoNotFound = errors.New("todo not found")

// Todo is a single item of the collection. Title, Description and Completed hold
// the JSON value the client sent, whatever its type. A nil value is a field the
// client never sent and is omitted from the output.
type Todo struct {
	ID          int             `json:"id"`
	Title       json.RawMessage `json:"title,omitempty"`
	Description json.RawMessage `json:"description,omitempty"`
	Completed   json.RawMessage `json:"completed,omitempty"`
}

// Clone returns a deep copy so callers never share field storage with a store.
func (t Todo) Clone() Todo {
	return Todo{
		ID:          t.ID,
		Title:       cloneValue(t.Title),
		Description: cloneValue(t.Description),
		Completed:   cloneValue(t.Completed),
	}
}

// ApplyUpdate overwrites title and description. ID and Completed are left alone.
func (t *Todo) ApplyUpdate(title, description json.RawMessage) {
	t.Title = cloneValue(title)
	t.Description = cloneValue(description)
}

// TitleOrEmpty returns the title when it is a JSON string, its raw text when it
// is any other value, and "" when it is absent.
func (t *Todo) TitleOrEmpty() string {
	if t.Title == nil {
		return ""
	}

	var title string

	if err := json.Unmarshal(t.Title, &title); err != nil {
		return string(t.Title)
	}

	return title
}

func (t *Todo) ToMap() map[string]interface{} {
	data := map[string]interface{}{
		"id": t.ID,
	}

	if t.Title != nil {
		data["title"] = string(t.Title)
	}

	if t.Description != nil {
		data["description"] = string(t.Description)
	}

	if t.Completed != nil {
		data["completed"] = string(t.Completed)
	}

	return data
}

// ParseID decodes a path segment. Anything that is not a base-10 integer is
// reported as ErrTodoNotFound since no stored todo can match it.
func ParseID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)

	if err != nil {
		return 0, ErrTodoNotFound
	}

	return id, nil
}

func StringValue(s string) json.RawMessage {
	return mustMarshal(s)
}

func BoolValue(b bool) json.RawMessage {
	return mustMarshal(b)
}

func mustMarshal(v any) json.RawMessage {
	raw, err := json.Marshal(v)

	if err != nil {
		panic(err)
	}

	return raw
}

func cloneValue(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}

	return append(json.RawMessage{}, raw...)
}
