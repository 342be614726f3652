package harness

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"
)

// AssertionError describes a failed assertion. Trace assertions carry the
// trace they were checked against.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

func (e *AssertionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Assertion failed: %s\n  Expected: %s\n  Actual: %s\n", e.Type, e.Expected, e.Actual)

	calls := invocations(e.Trace)
	if len(calls) == 0 {
		return b.String()
	}
	b.WriteString("\nFull trace:\n")
	for _, call := range calls {
		fmt.Fprintf(&b, "  [%d] %s %v\n", call.Seq, call.ActionURI, call.Args)
	}
	return b.String()
}

// invocations returns the invocation events of trace in order.
func invocations(trace []TraceEvent) []TraceEvent {
	var calls []TraceEvent
	for _, event := range trace {
		if event.Type == EventInvocation {
			calls = append(calls, event)
		}
	}
	return calls
}

func assertTraceContains(trace []TraceEvent, a Assertion) error {
	found := slices.ContainsFunc(invocations(trace), func(call TraceEvent) bool {
		return call.ActionURI == a.Action && matchArgs(call.Args, a.Args)
	})
	if found {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("%s invoked with %v", a.Action, a.Args),
		Actual:   "no matching invocation",
		Trace:    trace,
	}
}

// assertTraceOrder checks that the first invocation of each action comes
// after the first invocation of the action listed before it. Other
// invocations may come in between.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	calls := invocations(trace)
	first := make([]int, len(a.Actions))
	for i, action := range a.Actions {
		first[i] = slices.IndexFunc(calls, func(call TraceEvent) bool { return call.ActionURI == action })
		if first[i] < 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all of %v invoked", a.Actions),
				Actual:   "missing action: " + action,
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(first); i++ {
		if first[i-1] < first[i] {
			continue
		}
		return &AssertionError{
			Type:     AssertTraceOrder,
			Expected: fmt.Sprintf("%v invoked in order", a.Actions),
			Actual: fmt.Sprintf("%s (seq %d) should be before %s (seq %d)",
				a.Actions[i-1], calls[first[i-1]].Seq, a.Actions[i], calls[first[i]].Seq),
			Trace: trace,
		}
	}
	return nil
}

func assertTraceCount(trace []TraceEvent, a Assertion) error {
	n := 0
	for _, call := range invocations(trace) {
		if call.ActionURI == a.Action {
			n++
		}
	}
	if n == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("%s invoked %d times", a.Action, a.Count),
		Actual:   fmt.Sprintf("%d occurrences", n),
		Trace:    trace,
	}
}

// assertFinalState finds the single row of a state table matching the
// where clause and compares the expected fields.
func assertFinalState(state map[string][]map[string]any, a Assertion) error {
	rows, ok := state[a.Table]
	if !ok {
		return fmt.Errorf("final_state: unknown table %q", a.Table)
	}

	var row map[string]any
	matches := 0
	for _, r := range rows {
		if matchArgs(r, a.Where) {
			row = r
			matches++
		}
	}

	where := formatWhereClause(a.Where)
	switch matches {
	case 1:
	case 0:
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("row in %s where %s", a.Table, where),
			Actual:   "row not found",
		}
	default:
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("exactly one row in %s where %s", a.Table, where),
			Actual:   fmt.Sprintf("multiple rows matched (%d)", matches),
		}
	}

	for _, key := range sortedKeys(a.Expect) {
		want := a.Expect[key]
		got, ok := row[key]
		if !ok {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("field %q to exist", key),
				Actual:   fmt.Sprintf("row has %v", row),
			}
		}
		if !valuesEqual(got, want) {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("field %q = %v", key, want),
				Actual:   fmt.Sprintf("field %q = %v", key, got),
			}
		}
	}
	return nil
}

func formatWhereClause(where map[string]any) string {
	if len(where) == 0 {
		return "(no conditions)"
	}
	conds := make([]string, 0, len(where))
	for _, k := range sortedKeys(where) {
		conds = append(conds, fmt.Sprintf("%s=%v", k, where[k]))
	}
	return strings.Join(conds, " AND ")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// matchArgs reports whether actual holds every key of expected with an
// equal value. Extra keys in actual are ignored.
func matchArgs(actual, expected map[string]any) bool {
	for key, want := range expected {
		got, ok := actual[key]
		if !ok || !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

// valuesEqual compares values after widening int to int64, since YAML
// decodes integers as int and engines report int64.
func valuesEqual(actual, expected any) bool {
	return reflect.DeepEqual(normalizeValue(actual), normalizeValue(expected))
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case int:
		return int64(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = normalizeValue(elem)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = normalizeValue(elem)
		}
		return out
	}
	return v
}

type assertionFunc func(result *Result, a Assertion) error

var assertionFuncs = map[string]assertionFunc{
	AssertTraceContains: func(r *Result, a Assertion) error { return assertTraceContains(r.Trace, a) },
	AssertTraceOrder:    func(r *Result, a Assertion) error { return assertTraceOrder(r.Trace, a) },
	AssertTraceCount:    func(r *Result, a Assertion) error { return assertTraceCount(r.Trace, a) },
	AssertFinalState:    func(r *Result, a Assertion) error { return assertFinalState(r.State, a) },
}

// EvaluateAssertions checks every assertion against result and returns the
// messages of those that failed.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		check, ok := assertionFuncs[a.Type]
		if !ok {
			failures = append(failures, fmt.Sprintf("assertion[%d]: unknown assertion type %q", i, a.Type))
			continue
		}
		if err := check(result, a); err != nil {
			failures = append(failures, err.Error())
		}
	}
	return failures
}
