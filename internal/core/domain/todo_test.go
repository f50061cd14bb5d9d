package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTodo_Clone(t *testing.T) {
	t.Run("should not share field storage with the original", func(t *testing.T) {
		original := Todo{
			ID:          1,
			Title:       StringValue("Buy groceries"),
			Description: StringValue("I should buy groceries"),
			Completed:   BoolValue(false),
		}

		clone := original.Clone()
		clone.Title[1] = 'X'
		clone.Completed[0] = 'F'

		assert.Equal(t, `"Buy groceries"`, string(original.Title))
		assert.Equal(t, `false`, string(original.Completed))
		assert.Equal(t, original.ID, clone.ID)
	})

	t.Run("should keep absent fields absent", func(t *testing.T) {
		clone := Todo{ID: 2}.Clone()

		assert.Nil(t, clone.Title)
		assert.Nil(t, clone.Description)
		assert.Nil(t, clone.Completed)
	})
}

func TestTodo_ApplyUpdate(t *testing.T) {
	t.Run("should change only title and description", func(t *testing.T) {
		todo := Todo{
			ID:          7,
			Title:       StringValue("old"),
			Description: StringValue("old description"),
			Completed:   BoolValue(true),
		}

		todo.ApplyUpdate(StringValue("new"), StringValue("done"))

		assert.Equal(t, 7, todo.ID)
		assert.Equal(t, `"new"`, string(todo.Title))
		assert.Equal(t, `"done"`, string(todo.Description))
		assert.Equal(t, `true`, string(todo.Completed))
	})

	t.Run("should clear fields missing from the update", func(t *testing.T) {
		todo := Todo{ID: 1, Title: StringValue("old"), Description: StringValue("old")}

		todo.ApplyUpdate(StringValue("new"), nil)

		assert.Equal(t, "new", todo.TitleOrEmpty())
		assert.Nil(t, todo.Description)
	})
}

func TestTodo_TitleOrEmpty(t *testing.T) {
	assert.Equal(t, "", (&Todo{}).TitleOrEmpty())
	assert.Equal(t, "plain", (&Todo{Title: StringValue("plain")}).TitleOrEmpty())
	assert.Equal(t, "123", (&Todo{Title: json.RawMessage(`123`)}).TitleOrEmpty())
}

func TestTodo_JSON(t *testing.T) {
	t.Run("should omit absent fields", func(t *testing.T) {
		body, err := json.Marshal(Todo{ID: 3, Title: StringValue("only title")})

		assert.NoError(t, err)
		assert.JSONEq(t, `{"id":3,"title":"only title"}`, string(body))
	})

	t.Run("should keep an explicit false completed flag", func(t *testing.T) {
		body, err := json.Marshal(Todo{ID: 3, Completed: BoolValue(false)})

		assert.NoError(t, err)
		assert.JSONEq(t, `{"id":3,"completed":false}`, string(body))
	})

	t.Run("should pass values of any type through unchanged", func(t *testing.T) {
		var todo Todo

		err := json.Unmarshal([]byte(`{"title":123,"description":{"a":[1,2]},"completed":"yes"}`), &todo)
		assert.NoError(t, err)

		body, err := json.Marshal(todo)

		assert.NoError(t, err)
		assert.JSONEq(t, `{"id":0,"title":123,"description":{"a":[1,2]},"completed":"yes"}`, string(body))
	})

	t.Run("should keep an explicit null", func(t *testing.T) {
		var todo Todo

		err := json.Unmarshal([]byte(`{"title":null}`), &todo)
		assert.NoError(t, err)

		body, err := json.Marshal(todo)

		assert.NoError(t, err)
		assert.JSONEq(t, `{"id":0,"title":null}`, string(body))
	})
}

func TestTodo_ToMap(t *testing.T) {
	todo := Todo{ID: 4, Description: StringValue("desc")}

	assert.Equal(t, map[string]interface{}{"id": 4, "description": `"desc"`}, todo.ToMap())
}

func TestParseID(t *testing.T) {
	cases := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{raw: "1", want: 1},
		{raw: "123", want: 123},
		{raw: "-5", want: -5},
		{raw: "abc", wantErr: true},
		{raw: "12abc", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			id, err := ParseID(tc.raw)

			if tc.wantErr {
				assert.ErrorIs(t, err, ErrTodoNotFound)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.want, id)
		})
	}
}
