package harness

// Output cases reported by actions.
const (
	CaseSuccess         = "Success"
	CaseValidationError = "ValidationError"
	CaseNotFound        = "NotFound"
)

// Trace event types.
const (
	EventInvocation = "invocation"
	EventCompletion = "completion"
)

// TraceEvent records either an invocation or its completion.
type TraceEvent struct {
	Type       string         `json:"type"` // EventInvocation or EventCompletion
	ActionURI  string         `json:"action_uri,omitempty"`
	Args       map[string]any `json:"args,omitempty"`
	OutputCase string         `json:"output_case,omitempty"`
	Result     map[string]any `json:"result,omitempty"`
	Seq        int64          `json:"seq"`
}

// Result is the outcome of running a scenario against one engine.
type Result struct {
	// Engine names the storage engine the scenario ran against.
	Engine string `json:"engine"`

	// Pass is true if every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace contains all invocations and completions in order. Invocation
	// args are recorded as written in the scenario, before bindings are
	// resolved.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State contains the final state tables, keyed by table name.
	State map[string][]map[string]any `json:"state,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(engine string) *Result {
	return &Result{
		Engine: engine,
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		State:  make(map[string][]map[string]any),
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddInvocationTrace adds an invocation to the trace.
func (r *Result) AddInvocationTrace(actionURI string, args map[string]any, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:      EventInvocation,
		ActionURI: actionURI,
		Args:      args,
		Seq:       seq,
	})
}

// AddCompletionTrace adds a completion to the trace.
func (r *Result) AddCompletionTrace(outputCase string, result map[string]any, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:       EventCompletion,
		OutputCase: outputCase,
		Result:     result,
		Seq:        seq,
	})
}
