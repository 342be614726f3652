package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/todolists/internal/list"
	"github.com/roach88/todolists/internal/session"
	"github.com/roach88/todolists/internal/store"
	"github.com/roach88/todolists/internal/testutil"
)

// Engine opens fresh, empty storage for one scenario run.
type Engine struct {
	Name string
	Open func() (st list.Store, closeFn func() error, err error)
}

// DatabaseEngine runs scenarios against an in-memory SQLite store.
func DatabaseEngine() Engine {
	return Engine{
		Name: "database",
		Open: func() (list.Store, func() error, error) {
			st, err := store.Open(":memory:")
			if err != nil {
				return nil, nil, err
			}
			return st, st.Close, nil
		},
	}
}

// SessionEngine runs scenarios against a fresh session.
func SessionEngine() Engine {
	return Engine{
		Name: "session",
		Open: func() (list.Store, func() error, error) {
			p := session.NewPersistence(session.New("harness"))
			return p, func() error { return nil }, nil
		},
	}
}

// Engines returns every storage engine.
func Engines() []Engine {
	return []Engine{DatabaseEngine(), SessionEngine()}
}

type loggerKey struct{}

// WithLogger returns a copy of ctx that makes Run log each completed step to
// logger at Debug. Without it, steps are not logged.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

func loggerFrom(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.New(slog.DiscardHandler)
}

// Harness executes one scenario against one store.
type Harness struct {
	store    list.Store
	seq      *testutil.Sequence
	bindings map[string]int64
	logger   *slog.Logger
}

// Run executes a scenario against fresh storage from engine.
//
// Execution flow:
//  1. Open fresh storage
//  2. Execute setup steps, which must succeed
//  3. Execute flow steps, checking expect clauses
//  4. Capture the final state tables
//  5. Evaluate assertions
//
// The returned error reports a scenario that could not be executed (storage
// failure, bad arguments). Failed expectations are reported in the Result.
func Run(ctx context.Context, scenario *Scenario, engine Engine) (*Result, error) {
	st, closeFn, err := engine.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s engine: %w", engine.Name, err)
	}
	defer closeFn()

	h := &Harness{
		store:    st,
		seq:      testutil.NewSequence(),
		bindings: make(map[string]int64),
		logger:   loggerFrom(ctx).With("scenario", scenario.Name, "engine", engine.Name),
	}

	result := NewResult(engine.Name)
	if err := h.executeSetup(ctx, scenario.Setup, result); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}
	if err := h.executeFlow(ctx, scenario.Flow, result); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	state, err := captureState(ctx, st)
	if err != nil {
		return nil, fmt.Errorf("failed to capture state: %w", err)
	}
	result.State = state

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// RunAll executes a scenario once per engine and reports any engine whose
// snapshot differs from the first engine's as a failure.
func RunAll(ctx context.Context, scenario *Scenario, engines ...Engine) ([]*Result, error) {
	if len(engines) == 0 {
		engines = Engines()
	}

	results := make([]*Result, 0, len(engines))
	snapshots := make([][]byte, 0, len(engines))
	for _, engine := range engines {
		result, err := Run(ctx, scenario, engine)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", engine.Name, err)
		}
		snap, err := Snapshot(scenario.Name, result)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", engine.Name, err)
		}
		results = append(results, result)
		snapshots = append(snapshots, snap)
	}

	for i := 1; i < len(results); i++ {
		if string(snapshots[i]) != string(snapshots[0]) {
			results[i].AddError(fmt.Sprintf("engine %s disagrees with %s:\n  %s: %s\n  %s: %s",
				results[i].Engine, results[0].Engine,
				results[0].Engine, snapshots[0],
				results[i].Engine, snapshots[i]))
		}
	}
	return results, nil
}

// executeSetup runs all setup steps. Any outcome other than Success is an
// error, since later steps depend on the state setup establishes.
func (h *Harness) executeSetup(ctx context.Context, setup []ActionStep, result *Result) error {
	for i, step := range setup {
		outputCase, _, err := h.invoke(ctx, step.Action, step.Args, step.As, result)
		if err != nil {
			return fmt.Errorf("setup step %d: %w", i, err)
		}
		if outputCase != CaseSuccess {
			return fmt.Errorf("setup step %d: %s returned %s", i, step.Action, outputCase)
		}
	}
	return nil
}

// executeFlow runs all flow steps and validates expect clauses.
func (h *Harness) executeFlow(ctx context.Context, flow []FlowStep, result *Result) error {
	for i, step := range flow {
		outputCase, out, err := h.invoke(ctx, step.Invoke, step.Args, step.As, result)
		if err != nil {
			return fmt.Errorf("flow step %d: %w", i, err)
		}

		if step.Expect == nil {
			continue
		}
		if outputCase != step.Expect.Case {
			result.AddError(fmt.Sprintf("flow step %d (%s): expected case %s, got %s %v",
				i, step.Invoke, step.Expect.Case, outputCase, out))
			continue
		}
		if !matchArgs(out, step.Expect.Result) {
			result.AddError(fmt.Sprintf("flow step %d (%s): expected result %v, got %v",
				i, step.Invoke, step.Expect.Result, out))
		}
	}
	return nil
}

// invoke runs one action, records it in the trace, and binds the returned id.
func (h *Harness) invoke(ctx context.Context, action string, rawArgs map[string]any, as string, result *Result) (string, map[string]any, error) {
	fn, ok := actions[action]
	if !ok {
		return "", nil, fmt.Errorf("unknown action %q", action)
	}
	args, err := h.resolveArgs(rawArgs)
	if err != nil {
		return "", nil, err
	}

	result.AddInvocationTrace(action, rawArgs, h.seq.Next())

	outputCase, out, err := fn(ctx, h.store, args)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", action, err)
	}
	result.AddCompletionTrace(outputCase, out, h.seq.Next())

	if as != "" {
		id, ok := out["id"].(int64)
		if !ok {
			return "", nil, fmt.Errorf("%s: cannot bind %q, %s returned no id", action, as, outputCase)
		}
		h.bindings[as] = id
	}

	h.logger.Debug("step completed",
		"action", action,
		"output_case", outputCase,
		"seq", h.seq.Current(),
	)
	return outputCase, out, nil
}

// resolveArgs replaces "$name" references with bound ids.
func (h *Harness) resolveArgs(args map[string]any) (map[string]any, error) {
	resolved := make(map[string]any, len(args))
	for key, val := range args {
		if ref, ok := bindingRef(val); ok {
			id, bound := h.bindings[ref]
			if !bound {
				return nil, fmt.Errorf("arg %q refers to unbound $%s", key, ref)
			}
			resolved[key] = id
			continue
		}
		resolved[key] = val
	}
	return resolved, nil
}

func bindingRef(val any) (string, bool) {
	s, ok := val.(string)
	if !ok || len(s) < 2 || !strings.HasPrefix(s, "$") {
		return "", false
	}
	return s[1:], true
}

type actionFunc func(ctx context.Context, st list.Store, args map[string]any) (string, map[string]any, error)

var actions = map[string]actionFunc{
	"List.create":      createList,
	"List.rename":      renameList,
	"List.delete":      deleteList,
	"List.find":        findList,
	"List.completeAll": completeAll,
	"Todo.create":      createTodo,
	"Todo.delete":      deleteTodo,
	"Todo.setStatus":   setTodoStatus,
}

func createList(ctx context.Context, st list.Store, args map[string]any) (string, map[string]any, error) {
	name, err := stringArg(args, "name")
	if err != nil {
		return "", nil, err
	}
	name = list.NormalizeName(name)

	lists, err := st.AllLists(ctx)
	if err != nil {
		return "", nil, err
	}
	if msg := list.ErrorForListName(name, lists); msg != "" {
		return validationError(msg)
	}

	id, err := st.CreateNewList(ctx, name)
	if errors.Is(err, list.ErrDuplicateName) {
		return validationError(list.MsgListNameUnique)
	}
	if err != nil {
		return "", nil, err
	}
	return CaseSuccess, map[string]any{"id": id}, nil
}

func renameList(ctx context.Context, st list.Store, args map[string]any) (string, map[string]any, error) {
	l, outputCase, err := loadListArg(ctx, st, args, "id")
	if l == nil {
		return outputCase, map[string]any{}, err
	}
	name, err := stringArg(args, "name")
	if err != nil {
		return "", nil, err
	}
	name = list.NormalizeName(name)

	lists, err := st.AllLists(ctx)
	if err != nil {
		return "", nil, err
	}
	if msg := list.ErrorForListName(name, lists); msg != "" {
		return validationError(msg)
	}

	err = st.UpdateListName(ctx, l.ID, name)
	if errors.Is(err, list.ErrDuplicateName) {
		return validationError(list.MsgListNameUnique)
	}
	if err != nil {
		return "", nil, err
	}
	return CaseSuccess, map[string]any{}, nil
}

func deleteList(ctx context.Context, st list.Store, args map[string]any) (string, map[string]any, error) {
	id, err := intArg(args, "id")
	if err != nil {
		return "", nil, err
	}
	if err := st.DeleteList(ctx, id); err != nil {
		return "", nil, err
	}
	return CaseSuccess, map[string]any{}, nil
}

func findList(ctx context.Context, st list.Store, args map[string]any) (string, map[string]any, error) {
	l, outputCase, err := loadListArg(ctx, st, args, "id")
	if l == nil {
		return outputCase, map[string]any{}, err
	}
	return CaseSuccess, map[string]any{
		"name":      l.Name,
		"todos":     int64(list.TodosCount(*l)),
		"remaining": int64(list.TodosRemainingCount(*l)),
		"completed": list.IsListCompleted(*l),
	}, nil
}

func completeAll(ctx context.Context, st list.Store, args map[string]any) (string, map[string]any, error) {
	l, outputCase, err := loadListArg(ctx, st, args, "id")
	if l == nil {
		return outputCase, map[string]any{}, err
	}
	if err := st.MarkAllTodosAsCompleted(ctx, l.ID); err != nil {
		return "", nil, err
	}
	return CaseSuccess, map[string]any{}, nil
}

func createTodo(ctx context.Context, st list.Store, args map[string]any) (string, map[string]any, error) {
	l, outputCase, err := loadListArg(ctx, st, args, "list_id")
	if l == nil {
		return outputCase, map[string]any{}, err
	}
	name, err := stringArg(args, "name")
	if err != nil {
		return "", nil, err
	}
	name = list.NormalizeName(name)
	if msg := list.ErrorForTodo(name); msg != "" {
		return validationError(msg)
	}

	id, err := st.CreateNewTodo(ctx, l.ID, name)
	if err != nil {
		return "", nil, err
	}
	if id == 0 {
		return CaseNotFound, map[string]any{}, nil
	}
	return CaseSuccess, map[string]any{"id": id}, nil
}

func deleteTodo(ctx context.Context, st list.Store, args map[string]any) (string, map[string]any, error) {
	l, outputCase, err := loadListArg(ctx, st, args, "list_id")
	if l == nil {
		return outputCase, map[string]any{}, err
	}
	todoID, err := intArg(args, "todo_id")
	if err != nil {
		return "", nil, err
	}
	if err := st.DeleteTodoFromList(ctx, l.ID, todoID); err != nil {
		return "", nil, err
	}
	return CaseSuccess, map[string]any{}, nil
}

func setTodoStatus(ctx context.Context, st list.Store, args map[string]any) (string, map[string]any, error) {
	l, outputCase, err := loadListArg(ctx, st, args, "list_id")
	if l == nil {
		return outputCase, map[string]any{}, err
	}
	todoID, err := intArg(args, "todo_id")
	if err != nil {
		return "", nil, err
	}
	completed, err := boolArg(args, "completed")
	if err != nil {
		return "", nil, err
	}
	if err := st.UpdateTodoStatus(ctx, l.ID, todoID, completed); err != nil {
		return "", nil, err
	}
	return CaseSuccess, map[string]any{}, nil
}

// loadListArg loads the list named by args[key]. A nil list comes with
// either CaseNotFound or an error.
func loadListArg(ctx context.Context, st list.Store, args map[string]any, key string) (*list.List, string, error) {
	id, err := intArg(args, key)
	if err != nil {
		return nil, "", err
	}
	l, err := list.LoadList(ctx, st, id)
	if list.IsNotFound(err) {
		return nil, CaseNotFound, nil
	}
	if err != nil {
		return nil, "", err
	}
	return l, CaseSuccess, nil
}

func validationError(msg string) (string, map[string]any, error) {
	return CaseValidationError, map[string]any{"message": msg}, nil
}

func stringArg(args map[string]any, key string) (string, error) {
	switch v := args[key].(type) {
	case string:
		return v, nil
	case nil:
		return "", fmt.Errorf("missing arg %q", key)
	default:
		return "", fmt.Errorf("arg %q: expected string, got %T", key, v)
	}
}

func intArg(args map[string]any, key string) (int64, error) {
	switch v := args[key].(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case nil:
		return 0, fmt.Errorf("missing arg %q", key)
	default:
		return 0, fmt.Errorf("arg %q: expected integer, got %T", key, v)
	}
}

func boolArg(args map[string]any, key string) (bool, error) {
	switch v := args[key].(type) {
	case bool:
		return v, nil
	case nil:
		return false, fmt.Errorf("missing arg %q", key)
	default:
		return false, fmt.Errorf("arg %q: expected bool, got %T", key, v)
	}
}

// captureState builds the engine-independent state tables. Rows follow
// creation order and carry no ids.
func captureState(ctx context.Context, st list.Store) (map[string][]map[string]any, error) {
	lists, err := st.AllLists(ctx)
	if err != nil {
		return nil, err
	}

	listRows := make([]map[string]any, 0, len(lists))
	todoRows := make([]map[string]any, 0)
	for _, l := range lists {
		listRows = append(listRows, map[string]any{
			"name":      l.Name,
			"todos":     int64(list.TodosCount(l)),
			"remaining": int64(list.TodosRemainingCount(l)),
			"completed": list.IsListCompleted(l),
		})
		for _, t := range l.Todos {
			todoRows = append(todoRows, map[string]any{
				"list":      l.Name,
				"name":      t.Name,
				"completed": t.Completed,
			})
		}
	}

	return map[string][]map[string]any{
		TableLists: listRows,
		TableTodos: todoRows,
	}, nil
}
