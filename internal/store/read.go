package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/todolists/internal/list"
)

// AllLists returns every list ordered by id, each with its todos.
// Returns an empty slice (not nil) when there are no lists.
func (s *Store) AllLists(ctx context.Context) ([]list.List, error) {
	lists, err := s.listRows(ctx)
	if err != nil {
		return nil, err
	}

	for i := range lists {
		todos, err := s.todosForList(ctx, lists[i].ID)
		if err != nil {
			return nil, err
		}
		lists[i].Todos = todos
	}

	return lists, nil
}

// listRows reads the lists table without todos. The rows are closed before
// returning so the follow-up todo queries can use the single connection.
func (s *Store) listRows(ctx context.Context) ([]list.List, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name FROM lists
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query lists: %w", err)
	}
	defer rows.Close()

	lists := []list.List{}
	for rows.Next() {
		var l list.List
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		lists = append(lists, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lists: %w", err)
	}

	return lists, nil
}

// FindList returns the list with the given id and its todos, or nil if no
// such list exists.
func (s *Store) FindList(ctx context.Context, id int64) (*list.List, error) {
	var l list.List
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name FROM lists WHERE id = ?
	`, id).Scan(&l.ID, &l.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find list %d: %w", id, err)
	}

	todos, err := s.todosForList(ctx, id)
	if err != nil {
		return nil, err
	}
	l.Todos = todos

	return &l, nil
}

// todosForList returns the todos of one list in creation order, never nil.
func (s *Store) todosForList(ctx context.Context, listID int64) ([]list.Todo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, completed FROM todos
		WHERE list_id = ?
		ORDER BY id ASC
	`, listID)
	if err != nil {
		return nil, fmt.Errorf("query todos for list %d: %w", listID, err)
	}
	defer rows.Close()

	todos := []list.Todo{}
	for rows.Next() {
		var t list.Todo
		if err := rows.Scan(&t.ID, &t.Name, &t.Completed); err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate todos: %w", err)
	}

	return todos, nil
}
