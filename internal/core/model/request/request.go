package request

import "encoding/json"

// TodoRequest is the body of POST /todos. Fields keep the raw JSON value the
// client sent, so a value of any type is stored as-is and a missing field stays
// nil.
type TodoRequest struct {
	Title       json.RawMessage `json:"title"`
	Description json.RawMessage `json:"description"`
	Completed   json.RawMessage `json:"completed"`
}

// UpdateTodoRequest is the body of PUT /todos/:id. Only title and description
// are read; any other key is ignored.
type UpdateTodoRequest struct {
	Title       json.RawMessage `json:"title"`
	Description json.RawMessage `json:"description"`
}
