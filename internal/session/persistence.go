package session

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/todolists/internal/list"
)

// Persistence is the ephemeral list engine. It keeps lists inside one
// Session and implements list.Store. The only error it returns wraps
// list.ErrDuplicateName.
//
// New ids are max(existing ids)+1, or 1 when there are none. Unlike the
// relational engine, an id freed by deleting the highest entry is handed
// out again.
type Persistence struct {
	session *Session
}

var _ list.Store = (*Persistence)(nil)

// NewPersistence returns an engine backed by s.
func NewPersistence(s *Session) *Persistence {
	return &Persistence{session: s}
}

// AllLists returns copies of the session's lists in insertion order.
func (p *Persistence) AllLists(_ context.Context) ([]list.List, error) {
	return p.session.Lists(), nil
}

// FindList returns a copy of the list with id, or nil.
func (p *Persistence) FindList(_ context.Context, id int64) (*list.List, error) {
	i := p.session.listIndex(id)
	if i < 0 {
		return nil, nil
	}
	l := p.session.lists[i].Clone()
	return &l, nil
}

// CreateNewList appends an empty list.
// A name that is already taken yields an error wrapping list.ErrDuplicateName.
func (p *Persistence) CreateNewList(_ context.Context, name string) (int64, error) {
	if p.nameTaken(name, 0) {
		return 0, fmt.Errorf("create list %q: %w", name, list.ErrDuplicateName)
	}
	var id int64
	p.session.mutate(func(lists []list.List) ([]list.List, bool) {
		id = nextListID(lists)
		return append(lists, list.List{ID: id, Name: name, Todos: []list.Todo{}}), true
	})
	return id, nil
}

// DeleteList removes the list and, with it, its todos.
func (p *Persistence) DeleteList(_ context.Context, id int64) error {
	p.session.mutate(func(lists []list.List) ([]list.List, bool) {
		kept := slices.DeleteFunc(lists, func(l list.List) bool { return l.ID == id })
		return kept, len(kept) != len(lists)
	})
	return nil
}

// UpdateListName renames the list. Taking the name of another list yields an
// error wrapping list.ErrDuplicateName.
func (p *Persistence) UpdateListName(_ context.Context, id int64, name string) error {
	if p.session.listIndex(id) >= 0 && p.nameTaken(name, id) {
		return fmt.Errorf("rename list %d: %w", id, list.ErrDuplicateName)
	}
	p.withList(id, func(l *list.List) bool {
		l.Name = name
		return true
	})
	return nil
}

// CreateNewTodo appends an incomplete todo, returning 0 if the list is absent.
func (p *Persistence) CreateNewTodo(_ context.Context, listID int64, name string) (int64, error) {
	var id int64
	p.withList(listID, func(l *list.List) bool {
		id = nextTodoID(l.Todos)
		l.Todos = append(l.Todos, list.Todo{ID: id, Name: name})
		return true
	})
	return id, nil
}

// DeleteTodoFromList removes one todo from the list.
func (p *Persistence) DeleteTodoFromList(_ context.Context, listID, todoID int64) error {
	p.withList(listID, func(l *list.List) bool {
		before := len(l.Todos)
		l.Todos = slices.DeleteFunc(l.Todos, func(t list.Todo) bool { return t.ID == todoID })
		return len(l.Todos) != before
	})
	return nil
}

// UpdateTodoStatus sets the completed flag of one todo.
func (p *Persistence) UpdateTodoStatus(_ context.Context, listID, todoID int64, completed bool) error {
	p.withList(listID, func(l *list.List) bool {
		todo := list.FindTodoByID(l.Todos, todoID)
		if todo == nil {
			return false
		}
		todo.Completed = completed
		return true
	})
	return nil
}

// MarkAllTodosAsCompleted completes every todo of the list.
func (p *Persistence) MarkAllTodosAsCompleted(_ context.Context, listID int64) error {
	p.withList(listID, func(l *list.List) bool {
		for i := range l.Todos {
			l.Todos[i].Completed = true
		}
		return true
	})
	return nil
}

// withList runs fn on the stored list with id, if there is one.
func (p *Persistence) withList(id int64, fn func(l *list.List) bool) {
	p.session.mutate(func(lists []list.List) ([]list.List, bool) {
		i := slices.IndexFunc(lists, func(l list.List) bool { return l.ID == id })
		if i < 0 {
			return lists, false
		}
		return lists, fn(&lists[i])
	})
}

// nameTaken reports whether a list other than except is called name.
func (p *Persistence) nameTaken(name string, except int64) bool {
	return slices.ContainsFunc(p.session.lists, func(l list.List) bool {
		return l.ID != except && l.Name == name
	})
}

func nextListID(lists []list.List) int64 {
	var highest int64
	for _, l := range lists {
		highest = max(highest, l.ID)
	}
	return highest + 1
}

func nextTodoID(todos []list.Todo) int64 {
	var highest int64
	for _, t := range todos {
		highest = max(highest, t.ID)
	}
	return highest + 1
}
