package store

import (
	"context"
	"fmt"

	"github.com/roach88/todolists/internal/list"
)

// CreateNewList inserts an empty list and returns its id.
// A name that is already taken yields an error wrapping list.ErrDuplicateName;
// callers are expected to have checked with list.ErrorForListName first.
func (s *Store) CreateNewList(ctx context.Context, name string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO lists (name) VALUES (?)
	`, name)
	if isUniqueViolation(err) {
		return 0, fmt.Errorf("create list %q: %w", name, list.ErrDuplicateName)
	}
	if err != nil {
		return 0, fmt.Errorf("create list: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create list: last insert id: %w", err)
	}
	return id, nil
}

// DeleteList removes the list's todos and then the list, atomically.
func (s *Store) DeleteList(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete list: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, `DELETE FROM todos WHERE list_id = ?`, id); err != nil {
		return fmt.Errorf("delete list: delete todos: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM lists WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete list: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete list: commit: %w", err)
	}
	return nil
}

// UpdateListName renames a list. Unknown ids are ignored.
func (s *Store) UpdateListName(ctx context.Context, id int64, name string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE lists SET name = ? WHERE id = ?
	`, name, id)
	if isUniqueViolation(err) {
		return fmt.Errorf("rename list %d: %w", id, list.ErrDuplicateName)
	}
	if err != nil {
		return fmt.Errorf("rename list %d: %w", id, err)
	}
	return nil
}

// CreateNewTodo appends an incomplete todo to a list and returns its id.
// The insert selects the parent row, so a missing list inserts nothing and
// returns 0.
func (s *Store) CreateNewTodo(ctx context.Context, listID int64, name string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO todos (name, list_id)
		SELECT ?, id FROM lists WHERE id = ?
	`, name, listID)
	if err != nil {
		return 0, fmt.Errorf("create todo: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("create todo: rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return 0, nil
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create todo: last insert id: %w", err)
	}
	return id, nil
}

// DeleteTodoFromList removes one todo. Both ids must match.
func (s *Store) DeleteTodoFromList(ctx context.Context, listID, todoID int64) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM todos WHERE id = ? AND list_id = ?
	`, todoID, listID)
	if err != nil {
		return fmt.Errorf("delete todo %d: %w", todoID, err)
	}
	return nil
}

// UpdateTodoStatus sets the completed flag of one todo. Both ids must match.
func (s *Store) UpdateTodoStatus(ctx context.Context, listID, todoID int64, completed bool) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE todos SET completed = ? WHERE id = ? AND list_id = ?
	`, completed, todoID, listID)
	if err != nil {
		return fmt.Errorf("update todo %d: %w", todoID, err)
	}
	return nil
}

// MarkAllTodosAsCompleted completes every todo of a list.
func (s *Store) MarkAllTodosAsCompleted(ctx context.Context, listID int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE todos SET completed = 1 WHERE list_id = ?
	`, listID)
	if err != nil {
		return fmt.Errorf("complete todos of list %d: %w", listID, err)
	}
	return nil
}
