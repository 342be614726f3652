// Package store provides the durable, SQLite-backed list engine.
//
// The store keeps two tables:
//   - lists: id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL UNIQUE
//   - todos: id INTEGER PRIMARY KEY AUTOINCREMENT, name, completed, list_id REFERENCES lists(id)
//
// Ids are assigned by SQLite and never reused, even after deletes.
//
// # Schema Setup
//
// Open looks each table up in sqlite_master and creates only the missing
// ones, inside a single transaction. Reopening an existing database is a
// no-op.
//
// # Writes
//
// Every mutation commits on its own. DeleteList removes a list's todos and the
// list itself in one transaction so a failure between the two statements
// cannot leave orphaned todos.
//
// # Reads
//
// Lists are read first, then the todos of each list with one follow-up query
// per list. Both are ordered by id so results follow creation order.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
