package list

import (
	"context"
	"errors"
	"fmt"
)

// ErrDuplicateName is returned by engines when a create or rename collides
// with an existing list.
var ErrDuplicateName = errors.New("list name already exists")

// NotFoundError reports that a referenced list does not exist.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("The specified list with id %d was not found.", e.ID)
}

// IsNotFound returns true if err is or wraps a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// LoadList finds a list by id, returning a *NotFoundError if it is absent.
// Storage failures are returned wrapped.
func LoadList(ctx context.Context, store Store, id int64) (*List, error) {
	l, err := store.FindList(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load list %d: %w", id, err)
	}
	if l == nil {
		return nil, &NotFoundError{ID: id}
	}
	return l, nil
}
