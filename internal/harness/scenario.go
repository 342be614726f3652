package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a sequence of list operations plus assertions on the trace and
// final state.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Setup contains actions run before the flow. They must succeed.
	Setup []ActionStep `yaml:"setup,omitempty"`

	// Flow contains the main test flow, with optional expected results.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the final trace and state.
	Assertions []Assertion `yaml:"assertions"`
}

// ActionStep is a setup action.
type ActionStep struct {
	// Action is the action URI (e.g., "List.create").
	Action string `yaml:"action"`

	// Args contains the action arguments. Strings of the form "$name" are
	// replaced by the id bound to name.
	Args map[string]any `yaml:"args"`

	// As binds the id returned by the action.
	As string `yaml:"as,omitempty"`
}

// FlowStep is a step of the main flow.
type FlowStep struct {
	// Invoke is the action URI to invoke.
	Invoke string `yaml:"invoke"`

	// Args contains the action arguments.
	Args map[string]any `yaml:"args"`

	// As binds the id returned by the action.
	As string `yaml:"as,omitempty"`

	// Expect specifies the expected completion. If nil, any case is accepted.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause is the completion a flow step must produce. Result is
// matched as a subset of the action's result.
type ExpectClause struct {
	Case   string         `yaml:"case"`
	Result map[string]any `yaml:"result,omitempty"`
}

// Assertion checks the trace or the final state once the flow has run.
//
// Which fields apply depends on Type:
//
//	trace_contains  Action, Args (subset of the invocation args)
//	trace_order     Actions, by first invocation
//	trace_count     Action, Count
//	final_state     Table, Where (selects exactly one row), Expect (subset)
type Assertion struct {
	Type    string         `yaml:"type"`
	Action  string         `yaml:"action,omitempty"`
	Args    map[string]any `yaml:"args,omitempty"`
	Actions []string       `yaml:"actions,omitempty"`
	Count   int            `yaml:"count,omitempty"`
	Table   string         `yaml:"table,omitempty"`
	Where   map[string]any `yaml:"where,omitempty"`
	Expect  map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// State table names.
const (
	TableLists = "lists"
	TableTodos = "todos"
)

// LoadScenario reads and parses a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes scenario YAML and validates it. Unknown fields are
// rejected.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow must contain at least one step")
	}

	bound := make(map[string]bool)
	for i, step := range s.Setup {
		if err := validateStep(fmt.Sprintf("setup[%d]", i), step.Action, step.Args, step.As, bound); err != nil {
			return err
		}
	}
	for i, step := range s.Flow {
		if err := validateStep(fmt.Sprintf("flow[%d]", i), step.Invoke, step.Args, step.As, bound); err != nil {
			return err
		}
		if step.Expect != nil && !isKnownCase(step.Expect.Case) {
			return fmt.Errorf("flow[%d]: unknown expected case %q", i, step.Expect.Case)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(where, action string, args map[string]any, as string, bound map[string]bool) error {
	if action == "" {
		return fmt.Errorf("%s: action is required", where)
	}
	if _, ok := actions[action]; !ok {
		return fmt.Errorf("%s: unknown action %q", where, action)
	}
	for key, val := range args {
		if ref, ok := bindingRef(val); ok && !bound[ref] {
			return fmt.Errorf("%s: arg %q refers to unbound $%s", where, key, ref)
		}
	}
	if as != "" {
		if bound[as] {
			return fmt.Errorf("%s: %q is already bound", where, as)
		}
		bound[as] = true
	}
	return nil
}

func isKnownCase(c string) bool {
	switch c {
	case CaseSuccess, CaseValidationError, CaseNotFound:
		return true
	default:
		return false
	}
}

func validateAssertion(index int, a Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Actions) == 0 {
			return fmt.Errorf("assertions[%d]: actions list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if a.Table != TableLists && a.Table != TableTodos {
			return fmt.Errorf("assertions[%d]: table must be %q or %q for final_state", index, TableLists, TableTodos)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
