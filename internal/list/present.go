package list

// IsListCompleted reports whether l has at least one todo and all are completed.
func IsListCompleted(l List) bool {
	return TodosCount(l) > 0 && TodosRemainingCount(l) == 0
}

// ListClass returns the CSS class for a list row.
func ListClass(l List) string {
	if IsListCompleted(l) {
		return "complete"
	}
	return ""
}

// TodosCount returns the number of todos in l.
func TodosCount(l List) int {
	return len(l.Todos)
}

// TodosRemainingCount returns the number of incomplete todos in l.
func TodosRemainingCount(l List) int {
	remaining := 0
	for _, t := range l.Todos {
		if !t.Completed {
			remaining++
		}
	}
	return remaining
}

// IsTodoCompleted reports whether t is completed.
func IsTodoCompleted(t Todo) bool {
	return t.Completed
}

// SortItems returns a new slice with the items for which completed is false,
// in their original order, followed by the rest in their original order.
func SortItems[T any](items []T, completed func(T) bool) []T {
	sorted := make([]T, 0, len(items))
	for _, item := range items {
		if !completed(item) {
			sorted = append(sorted, item)
		}
	}
	for _, item := range items {
		if completed(item) {
			sorted = append(sorted, item)
		}
	}
	return sorted
}

// SortLists orders lists with incomplete lists first.
func SortLists(lists []List) []List {
	return SortItems(lists, IsListCompleted)
}

// SortTodos orders todos with incomplete todos first.
func SortTodos(todos []Todo) []Todo {
	return SortItems(todos, IsTodoCompleted)
}

// FindTodoByID returns the todo with the given id, or nil.
func FindTodoByID(todos []Todo, id int64) *Todo {
	for i := range todos {
		if todos[i].ID == id {
			return &todos[i]
		}
	}
	return nil
}
