package list

import "context"

// MaxNameLength is the longest list or todo name accepted, in characters.
const MaxNameLength = 100

// List is a named, ordered collection of todos.
type List struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Todos []Todo `json:"todos"`
}

// Todo is a single item on a list. Its ID is unique within the parent list only.
type Todo struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// Store is the persistence contract shared by the relational and session engines.
//
// Errors are returned for storage failures, and for a create or rename that
// collides with an existing name (wrapping ErrDuplicateName). Callers still
// check names with ErrorForListName first. Operations on ids that do not
// exist succeed without effect.
type Store interface {
	// AllLists returns every list in creation order with todos resolved.
	AllLists(ctx context.Context) ([]List, error)

	// FindList returns the list with its todos, or nil if it does not exist.
	FindList(ctx context.Context, id int64) (*List, error)

	// CreateNewList creates an empty list and returns its id. A taken name
	// yields ErrDuplicateName.
	CreateNewList(ctx context.Context, name string) (int64, error)

	// DeleteList removes a list and all of its todos.
	DeleteList(ctx context.Context, id int64) error

	// UpdateListName renames a list. Another list's name yields
	// ErrDuplicateName; a list may be renamed to its own name.
	UpdateListName(ctx context.Context, id int64, name string) error

	// CreateNewTodo appends an incomplete todo and returns its id.
	// Returns 0 when the list does not exist.
	CreateNewTodo(ctx context.Context, listID int64, name string) (int64, error)

	// DeleteTodoFromList removes one todo from a list.
	DeleteTodoFromList(ctx context.Context, listID, todoID int64) error

	// UpdateTodoStatus sets the completed flag of one todo.
	UpdateTodoStatus(ctx context.Context, listID, todoID int64, completed bool) error

	// MarkAllTodosAsCompleted sets every todo in the list to completed.
	MarkAllTodosAsCompleted(ctx context.Context, listID int64) error
}

// Clone returns a deep copy of l, so callers can hand lists out of an engine
// without sharing the todo slice.
func (l List) Clone() List {
	todos := make([]Todo, len(l.Todos))
	copy(todos, l.Todos)
	l.Todos = todos
	return l
}
