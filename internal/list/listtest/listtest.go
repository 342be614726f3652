// Package listtest provides the behavioural contract every list.Store must meet.
//
// Engine packages call Run from their own tests:
//
//	func TestContract(t *testing.T) {
//	    listtest.Run(t, func(t *testing.T) list.Store { return openTestStore(t) })
//	}
package listtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/todolists/internal/list"
)

// Factory returns a fresh, empty store for one subtest.
type Factory func(t *testing.T) list.Store

// Run executes the contract suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s list.Store)
	}{
		{"AllListsEmpty", testAllListsEmpty},
		{"CreateAndFind", testCreateAndFind},
		{"FindMissing", testFindMissing},
		{"AllListsCreationOrder", testAllListsCreationOrder},
		{"DuplicateNameRejected", testDuplicateNameRejected},
		{"EngineRejectsDuplicateName", testEngineRejectsDuplicateName},
		{"UpdateListName", testUpdateListName},
		{"CreateTodo", testCreateTodo},
		{"CreateTodoMissingList", testCreateTodoMissingList},
		{"TodoStatusRoundTrip", testTodoStatusRoundTrip},
		{"TodoScopedToList", testTodoScopedToList},
		{"DeleteTodo", testDeleteTodo},
		{"MarkAllCompleted", testMarkAllCompleted},
		{"DeleteListCascades", testDeleteListCascades},
		{"MissingIdsAreNoOps", testMissingIdsAreNoOps},
		{"ReturnedListsAreCopies", testReturnedListsAreCopies},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

func mustCreateList(t *testing.T, s list.Store, name string) int64 {
	t.Helper()
	id, err := s.CreateNewList(context.Background(), name)
	require.NoError(t, err)
	require.NotZero(t, id)
	return id
}

func mustCreateTodo(t *testing.T, s list.Store, listID int64, name string) int64 {
	t.Helper()
	id, err := s.CreateNewTodo(context.Background(), listID, name)
	require.NoError(t, err)
	require.NotZero(t, id)
	return id
}

func mustFind(t *testing.T, s list.Store, id int64) *list.List {
	t.Helper()
	l, err := s.FindList(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, l, "list %d should exist", id)
	return l
}

func testAllListsEmpty(t *testing.T, s list.Store) {
	lists, err := s.AllLists(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, lists)
	assert.Empty(t, lists)
}

func testCreateAndFind(t *testing.T, s list.Store) {
	id := mustCreateList(t, s, "Groceries")

	l := mustFind(t, s, id)
	assert.Equal(t, id, l.ID)
	assert.Equal(t, "Groceries", l.Name)
	assert.NotNil(t, l.Todos)
	assert.Empty(t, l.Todos)
	assert.False(t, list.IsListCompleted(*l))
}

func testFindMissing(t *testing.T, s list.Store) {
	mustCreateList(t, s, "Groceries")

	l, err := s.FindList(context.Background(), 9999)
	require.NoError(t, err)
	assert.Nil(t, l)

	_, err = list.LoadList(context.Background(), s, 9999)
	assert.True(t, list.IsNotFound(err))
}

func testAllListsCreationOrder(t *testing.T, s list.Store) {
	names := []string{"Work", "Home", "Errands"}
	for _, name := range names {
		mustCreateList(t, s, name)
	}

	lists, err := s.AllLists(context.Background())
	require.NoError(t, err)
	require.Len(t, lists, 3)
	for i, name := range names {
		assert.Equal(t, name, lists[i].Name)
		assert.NotNil(t, lists[i].Todos)
	}
}

func testDuplicateNameRejected(t *testing.T, s list.Store) {
	ctx := context.Background()
	mustCreateList(t, s, "X")

	lists, err := s.AllLists(ctx)
	require.NoError(t, err)
	assert.Equal(t, list.MsgListNameUnique, list.ErrorForListName("X", lists))
	assert.Empty(t, list.ErrorForListName("Y", lists))
}

func testEngineRejectsDuplicateName(t *testing.T, s list.Store) {
	ctx := context.Background()
	x := mustCreateList(t, s, "X")
	y := mustCreateList(t, s, "Y")

	_, err := s.CreateNewList(ctx, "X")
	assert.ErrorIs(t, err, list.ErrDuplicateName)

	assert.ErrorIs(t, s.UpdateListName(ctx, y, "X"), list.ErrDuplicateName)
	assert.NoError(t, s.UpdateListName(ctx, x, "X"), "renaming to its own name")
	assert.NoError(t, s.UpdateListName(ctx, 999, "X"), "missing id is a no-op")

	lists, err := s.AllLists(ctx)
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Equal(t, "X", lists[0].Name)
	assert.Equal(t, "Y", lists[1].Name)
}

func testUpdateListName(t *testing.T, s list.Store) {
	id := mustCreateList(t, s, "Old")
	mustCreateTodo(t, s, id, "keep me")

	require.NoError(t, s.UpdateListName(context.Background(), id, "New"))

	l := mustFind(t, s, id)
	assert.Equal(t, "New", l.Name)
	require.Len(t, l.Todos, 1)
	assert.Equal(t, "keep me", l.Todos[0].Name)
}

func testCreateTodo(t *testing.T, s list.Store) {
	id := mustCreateList(t, s, "Groceries")
	first := mustCreateTodo(t, s, id, "milk")
	second := mustCreateTodo(t, s, id, "eggs")
	assert.NotEqual(t, first, second)

	l := mustFind(t, s, id)
	require.Len(t, l.Todos, 2)
	assert.Equal(t, list.Todo{ID: first, Name: "milk"}, l.Todos[0])
	assert.Equal(t, list.Todo{ID: second, Name: "eggs"}, l.Todos[1])
	assert.Equal(t, 2, list.TodosRemainingCount(*l))
}

func testCreateTodoMissingList(t *testing.T, s list.Store) {
	id, err := s.CreateNewTodo(context.Background(), 9999, "orphan")
	require.NoError(t, err)
	assert.Zero(t, id)

	lists, err := s.AllLists(context.Background())
	require.NoError(t, err)
	assert.Empty(t, lists)
}

func testTodoStatusRoundTrip(t *testing.T, s list.Store) {
	ctx := context.Background()
	listID := mustCreateList(t, s, "Groceries")
	todoID := mustCreateTodo(t, s, listID, "buy milk")

	require.NoError(t, s.UpdateTodoStatus(ctx, listID, todoID, true))

	l := mustFind(t, s, listID)
	todo := list.FindTodoByID(l.Todos, todoID)
	require.NotNil(t, todo)
	assert.True(t, todo.Completed)
	assert.Equal(t, "buy milk", todo.Name)
	assert.True(t, list.IsListCompleted(*l))

	require.NoError(t, s.UpdateTodoStatus(ctx, listID, todoID, false))
	l = mustFind(t, s, listID)
	assert.False(t, l.Todos[0].Completed)
}

func testTodoScopedToList(t *testing.T, s list.Store) {
	ctx := context.Background()
	a := mustCreateList(t, s, "A")
	b := mustCreateList(t, s, "B")
	mustCreateTodo(t, s, a, "first in a")
	second := mustCreateTodo(t, s, a, "second in a")
	mustCreateTodo(t, s, b, "in b")

	// second exists in A only; addressing it through B must touch nothing.
	require.NoError(t, s.UpdateTodoStatus(ctx, b, second, true))
	require.NoError(t, s.DeleteTodoFromList(ctx, b, second))

	la := mustFind(t, s, a)
	require.Len(t, la.Todos, 2)
	assert.False(t, la.Todos[1].Completed)
	lb := mustFind(t, s, b)
	require.Len(t, lb.Todos, 1)
	assert.False(t, lb.Todos[0].Completed)
}

func testDeleteTodo(t *testing.T, s list.Store) {
	ctx := context.Background()
	listID := mustCreateList(t, s, "Groceries")
	milk := mustCreateTodo(t, s, listID, "milk")
	eggs := mustCreateTodo(t, s, listID, "eggs")

	require.NoError(t, s.DeleteTodoFromList(ctx, listID, milk))

	l := mustFind(t, s, listID)
	require.Len(t, l.Todos, 1)
	assert.Equal(t, eggs, l.Todos[0].ID)
}

func testMarkAllCompleted(t *testing.T, s list.Store) {
	ctx := context.Background()
	listID := mustCreateList(t, s, "Chores")
	other := mustCreateList(t, s, "Other")
	for _, name := range []string{"dishes", "laundry", "floors"} {
		mustCreateTodo(t, s, listID, name)
	}
	mustCreateTodo(t, s, other, "untouched")

	require.NoError(t, s.MarkAllTodosAsCompleted(ctx, listID))
	first := mustFind(t, s, listID)
	require.Len(t, first.Todos, 3)
	for _, todo := range first.Todos {
		assert.True(t, todo.Completed, "todo %q", todo.Name)
	}

	require.NoError(t, s.MarkAllTodosAsCompleted(ctx, listID))
	second := mustFind(t, s, listID)
	assert.Equal(t, first, second)

	o := mustFind(t, s, other)
	assert.False(t, o.Todos[0].Completed)
}

func testDeleteListCascades(t *testing.T, s list.Store) {
	ctx := context.Background()
	keep := mustCreateList(t, s, "Keep")
	mustCreateTodo(t, s, keep, "stay")
	doomed := mustCreateList(t, s, "L")
	mustCreateTodo(t, s, doomed, "one")
	mustCreateTodo(t, s, doomed, "two")

	require.NoError(t, s.DeleteList(ctx, doomed))

	l, err := s.FindList(ctx, doomed)
	require.NoError(t, err)
	assert.Nil(t, l)

	lists, err := s.AllLists(ctx)
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, "Keep", lists[0].Name)
	assert.Len(t, lists[0].Todos, 1)
}

func testMissingIdsAreNoOps(t *testing.T, s list.Store) {
	ctx := context.Background()
	listID := mustCreateList(t, s, "Only")
	todoID := mustCreateTodo(t, s, listID, "item")
	before := mustFind(t, s, listID)

	require.NoError(t, s.DeleteList(ctx, 9999))
	require.NoError(t, s.UpdateListName(ctx, 9999, "ghost"))
	require.NoError(t, s.DeleteTodoFromList(ctx, 9999, todoID))
	require.NoError(t, s.DeleteTodoFromList(ctx, listID, 9999))
	require.NoError(t, s.UpdateTodoStatus(ctx, 9999, todoID, true))
	require.NoError(t, s.UpdateTodoStatus(ctx, listID, 9999, true))
	require.NoError(t, s.MarkAllTodosAsCompleted(ctx, 9999))

	after := mustFind(t, s, listID)
	assert.Equal(t, before, after)

	lists, err := s.AllLists(ctx)
	require.NoError(t, err)
	assert.Len(t, lists, 1)
}

func testReturnedListsAreCopies(t *testing.T, s list.Store) {
	listID := mustCreateList(t, s, "Mine")
	mustCreateTodo(t, s, listID, "item")

	l := mustFind(t, s, listID)
	l.Name = "changed"
	l.Todos[0].Completed = true

	fresh := mustFind(t, s, listID)
	assert.Equal(t, "Mine", fresh.Name)
	assert.False(t, fresh.Todos[0].Completed)
}
