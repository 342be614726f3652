// Package harness runs list scenarios against the storage engines and checks
// that they agree.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	setup:
//	  - action: List.create
//	    args: { name: Groceries }
//	    as: groceries
//	flow:
//	  - invoke: Todo.create
//	    args: { list_id: $groceries, name: milk }
//	    as: milk
//	    expect:
//	      case: Success
//	  - invoke: Todo.setStatus
//	    args: { list_id: $groceries, todo_id: $milk, completed: true }
//	assertions:
//	  - type: trace_contains
//	    action: Todo.create
//	    args: { name: milk }
//	  - type: final_state
//	    table: todos
//	    where: { list: Groceries, name: milk }
//	    expect: { completed: true }
//
// A step's "as" binds the id it returns; later steps refer to it as "$name".
// Engines number todos differently, so scenarios that should hold for every
// engine refer to ids through bindings.
//
// # Actions
//
// Actions validate their input the way the web handlers do before touching
// the store. Actions addressing a list report NotFound when it is absent,
// except List.delete, which like the store is a no-op:
//
//   - List.create {name}: Success {id} or ValidationError {message}
//   - List.rename {id, name}: Success or ValidationError {message}
//   - List.delete {id}: Success
//   - List.find {id}: Success {name, todos, remaining, completed}
//   - List.completeAll {id}: Success
//   - Todo.create {list_id, name}: Success {id} or ValidationError {message}
//   - Todo.delete {list_id, todo_id}: Success
//   - Todo.setStatus {list_id, todo_id, completed}: Success
//
// # Assertion Types
//
//   - trace_contains: an action appears in the trace with matching args
//   - trace_order: actions appear in the given order
//   - trace_count: an action appears exactly N times
//   - final_state: exactly one row of the "lists" or "todos" state table
//     matches where, and has the expected values
//
// # Engine Parity
//
// RunAll executes a scenario once per engine, each against fresh storage, and
// compares their snapshots. A snapshot holds the trace and final state
// without ids, so two engines that agree on behaviour produce identical
// bytes. Snapshots are canonical JSON and double as golden files.
package harness
