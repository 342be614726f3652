// Package list defines named lists of todos and the storage contract that
// both list engines implement.
//
// # Storage Scope
//
// A Store is a uniqueness domain for list names: every list in the relational
// database, or every list in one browser session. Name uniqueness is checked
// by the caller with ErrorForListName before CreateNewList or UpdateListName;
// engines do not re-check it.
//
// # Missing Ids
//
// Mutations that reference a list or todo id that does not exist are silent
// no-ops. FindList reports absence as a nil *List with a nil error, which is
// distinct from a list that has no todos. LoadList converts absence into a
// *NotFoundError for callers that want to short-circuit.
//
// # Derived State
//
// Completion of a list is never stored. IsListCompleted, TodosRemainingCount
// and SortItems compute display state from the todos a Store returns.
package list
