package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/todolists/internal/canon"
)

// GoldenDir holds golden snapshots, relative to the test's package.
const GoldenDir = "testdata/golden"

// Snapshot renders a result as canonical JSON. Ids are left out, as are the
// engine name and pass status, so engines that behave alike produce
// identical bytes.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	trace := make([]any, len(result.Trace))
	for i, event := range result.Trace {
		eventMap := map[string]any{
			"type": event.Type,
			"seq":  event.Seq,
		}
		if event.ActionURI != "" {
			eventMap["action_uri"] = event.ActionURI
		}
		if len(event.Args) > 0 {
			eventMap["args"] = event.Args
		}
		if event.OutputCase != "" {
			eventMap["output_case"] = event.OutputCase
		}
		if res := withoutID(event.Result); len(res) > 0 {
			eventMap["result"] = res
		}
		trace[i] = eventMap
	}

	state := make(map[string]any, len(result.State))
	for table, rows := range result.State {
		tableRows := make([]any, len(rows))
		for i, row := range rows {
			tableRows[i] = row
		}
		state[table] = tableRows
	}

	return canon.Marshal(map[string]any{
		"scenario_name": scenarioName,
		"trace":         trace,
		"state":         state,
	})
}

func withoutID(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if k != "id" {
			out[k] = v
		}
	}
	return out
}

// RunWithGolden runs a scenario against every engine, fails t on any
// expectation, assertion or parity failure, and compares the shared snapshot
// against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	results, err := RunAll(context.Background(), scenario)
	if err != nil {
		return err
	}
	for _, result := range results {
		for _, msg := range result.Errors {
			t.Errorf("%s [%s]: %s", scenario.Name, result.Engine, msg)
		}
	}

	return AssertGolden(t, scenario.Name, results[0])
}

// AssertGolden compares a result's snapshot against its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snap, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, snap)
	return nil
}
