package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/todolists/internal/list"
	"github.com/roach88/todolists/internal/list/listtest"
)

func TestContract(t *testing.T) {
	listtest.Run(t, func(t *testing.T) list.Store {
		return NewPersistence(New("contract"))
	})
}

func TestTodoIds_MaxPlusOne(t *testing.T) {
	ctx := context.Background()
	p := NewPersistence(New("t"))

	listID, _ := p.CreateNewList(ctx, "L")
	first, _ := p.CreateNewTodo(ctx, listID, "one")
	second, _ := p.CreateNewTodo(ctx, listID, "two")
	require.Equal(t, int64(1), first)
	require.Equal(t, int64(2), second)

	// Deleting 1 leaves {2}; the next id is 3, not 1 and not 2.
	require.NoError(t, p.DeleteTodoFromList(ctx, listID, first))
	third, err := p.CreateNewTodo(ctx, listID, "three")
	require.NoError(t, err)
	assert.Equal(t, int64(3), third)
}

func TestTodoIds_ReusedAfterDeletingHighest(t *testing.T) {
	ctx := context.Background()
	p := NewPersistence(New("t"))

	listID, _ := p.CreateNewList(ctx, "L")
	p.CreateNewTodo(ctx, listID, "one")
	second, _ := p.CreateNewTodo(ctx, listID, "two")
	require.NoError(t, p.DeleteTodoFromList(ctx, listID, second))

	again, err := p.CreateNewTodo(ctx, listID, "two again")
	require.NoError(t, err)
	assert.Equal(t, second, again)
}

func TestTodoIds_ScopedPerList(t *testing.T) {
	ctx := context.Background()
	p := NewPersistence(New("t"))

	a, _ := p.CreateNewList(ctx, "A")
	b, _ := p.CreateNewList(ctx, "B")
	inA, _ := p.CreateNewTodo(ctx, a, "x")
	inB, _ := p.CreateNewTodo(ctx, b, "y")

	assert.Equal(t, int64(1), inA)
	assert.Equal(t, int64(1), inB)

	require.NoError(t, p.UpdateTodoStatus(ctx, b, 1, true))
	la, _ := p.FindList(ctx, a)
	lb, _ := p.FindList(ctx, b)
	assert.False(t, la.Todos[0].Completed)
	assert.True(t, lb.Todos[0].Completed)
}

func TestListIds_MaxPlusOne(t *testing.T) {
	ctx := context.Background()
	p := NewPersistence(New("t"))

	one, _ := p.CreateNewList(ctx, "one")
	two, _ := p.CreateNewList(ctx, "two")
	assert.Equal(t, int64(1), one)
	assert.Equal(t, int64(2), two)

	require.NoError(t, p.DeleteList(ctx, two))
	reused, _ := p.CreateNewList(ctx, "three")
	assert.Equal(t, int64(2), reused)

	require.NoError(t, p.DeleteList(ctx, one))
	next, _ := p.CreateNewList(ctx, "four")
	assert.Equal(t, int64(3), next)
}

func TestPersistence_DirtyTracking(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		setup func(p *Persistence) (listID, todoID int64)
		op    func(p *Persistence, listID, todoID int64)
		dirty bool
	}{
		{
			name:  "create list",
			op:    func(p *Persistence, _, _ int64) { p.CreateNewList(ctx, "x") },
			dirty: true,
		},
		{
			name: "duplicate list name",
			setup: func(p *Persistence) (int64, int64) {
				id, _ := p.CreateNewList(ctx, "x")
				return id, 0
			},
			op:    func(p *Persistence, _, _ int64) { p.CreateNewList(ctx, "x") },
			dirty: false,
		},
		{
			name:  "delete missing list",
			op:    func(p *Persistence, _, _ int64) { p.DeleteList(ctx, 42) },
			dirty: false,
		},
		{
			name:  "rename missing list",
			op:    func(p *Persistence, _, _ int64) { p.UpdateListName(ctx, 42, "x") },
			dirty: false,
		},
		{
			name:  "todo on missing list",
			op:    func(p *Persistence, _, _ int64) { p.CreateNewTodo(ctx, 42, "x") },
			dirty: false,
		},
		{
			name: "reads",
			op: func(p *Persistence, _, _ int64) {
				p.AllLists(ctx)
				p.FindList(ctx, 1)
			},
			dirty: false,
		},
		{
			name: "status of missing todo",
			setup: func(p *Persistence) (int64, int64) {
				id, _ := p.CreateNewList(ctx, "L")
				return id, 0
			},
			op:    func(p *Persistence, listID, _ int64) { p.UpdateTodoStatus(ctx, listID, 99, true) },
			dirty: false,
		},
		{
			name: "status of existing todo",
			setup: func(p *Persistence) (int64, int64) {
				id, _ := p.CreateNewList(ctx, "L")
				todo, _ := p.CreateNewTodo(ctx, id, "t")
				return id, todo
			},
			op:    func(p *Persistence, listID, todoID int64) { p.UpdateTodoStatus(ctx, listID, todoID, true) },
			dirty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New("t")
			p := NewPersistence(s)
			var listID, todoID int64
			if tt.setup != nil {
				listID, todoID = tt.setup(p)
			}
			s.dirty = false

			tt.op(p, listID, todoID)
			assert.Equal(t, tt.dirty, s.Dirty())
		})
	}
}

func TestSession_Flashes(t *testing.T) {
	s := New("t")
	assert.Nil(t, s.PopFlashes())
	assert.False(t, s.Dirty())

	s.AddFlash(FlashSuccess, "The list has been created.")
	s.AddFlash(FlashError, "oops")
	assert.True(t, s.Dirty())

	flashes := s.PopFlashes()
	assert.Equal(t, []Flash{
		{Kind: FlashSuccess, Message: "The list has been created."},
		{Kind: FlashError, Message: "oops"},
	}, flashes)
	assert.Nil(t, s.PopFlashes())
}
