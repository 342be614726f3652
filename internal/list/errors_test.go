package list

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// findOnlyStore implements FindList and panics on everything else.
type findOnlyStore struct {
	Store
	lists map[int64]List
	err   error
}

func (s findOnlyStore) FindList(_ context.Context, id int64) (*List, error) {
	if s.err != nil {
		return nil, s.err
	}
	l, ok := s.lists[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func TestLoadList_Found(t *testing.T) {
	store := findOnlyStore{lists: map[int64]List{7: {ID: 7, Name: "Chores"}}}

	l, err := LoadList(context.Background(), store, 7)
	require.NoError(t, err)
	assert.Equal(t, "Chores", l.Name)
}

func TestLoadList_NotFound(t *testing.T) {
	store := findOnlyStore{lists: map[int64]List{}}

	l, err := LoadList(context.Background(), store, 42)
	require.Error(t, err)
	assert.Nil(t, l)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, "The specified list with id 42 was not found.", err.Error())
}

func TestLoadList_StorageError(t *testing.T) {
	boom := errors.New("disk on fire")
	store := findOnlyStore{err: boom}

	_, err := LoadList(context.Background(), store, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsNotFound(err))
}

func TestIsNotFound_Wrapped(t *testing.T) {
	err := fmt.Errorf("handler: %w", &NotFoundError{ID: 3})
	assert.True(t, IsNotFound(err))
	assert.False(t, IsNotFound(errors.New("other")))
	assert.False(t, IsNotFound(nil))
}
