package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/todolists/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // glob matched against scenario file names
}

// ScenarioResult is the outcome of one scenario file.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult summarizes a test run.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

func (r TestResult) String() string {
	if r.Total == 0 {
		return "No scenarios found."
	}
	var b strings.Builder
	for _, s := range r.Scenarios {
		if s.Pass {
			fmt.Fprintf(&b, "PASS %s\n", s.Name)
			continue
		}
		fmt.Fprintf(&b, "FAIL %s\n", s.Name)
		for _, e := range s.Errors {
			fmt.Fprintf(&b, "  %s\n", e)
		}
	}
	fmt.Fprintf(&b, "\nTest Summary: %d passed, %d failed, %d total", r.Passed, r.Failed, r.Total)
	return b.String()
}

func (r *TestResult) add(s ScenarioResult) {
	r.Scenarios = append(r.Scenarios, s)
	r.Total++
	if s.Pass {
		r.Passed++
	} else {
		r.Failed++
	}
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run storage engine scenarios",
		Long: `Run YAML scenarios against both storage engines.

Each scenario runs once against an in-memory database and once against a
fresh session. A scenario passes when its expectations and assertions hold,
both engines agree, and the result matches golden/<name>.golden next to the
scenario file, if one exists.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  todolists test ./scenarios
  todolists test ./scenarios --filter "list_*"
  todolists test ./scenarios --update
  todolists test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(commandContext(cmd), opts.formatter(cmd), args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func (o *TestOptions) run(ctx context.Context, out *OutputFormatter, dir string) error {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", dir))
	}

	files, err := findScenarioFiles(dir, o.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	ctx = harness.WithLogger(ctx, o.newLogger(out.GetErrWriter()))
	result := TestResult{Scenarios: []ScenarioResult{}}
	for _, file := range files {
		out.VerboseLog("running %s", file)
		result.add(o.runScenario(ctx, file))
	}

	if result.Failed == 0 {
		return out.Report(result, nil)
	}
	msg := fmt.Sprintf("%d scenario(s) failed", result.Failed)
	if err := out.Report(result, &CLIError{Code: CodeTestFailed, Message: msg}); err != nil {
		return err
	}
	return NewExitError(ExitFailure, msg)
}

// findScenarioFiles returns the YAML files under dir whose base name, less
// its extension, matches filter. Golden directories are skipped.
func findScenarioFiles(dir, filter string) ([]string, error) {
	if filter != "" {
		if _, err := filepath.Match(filter, ""); err != nil {
			return nil, fmt.Errorf("invalid filter pattern: %w", err)
		}
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		switch {
		case err != nil:
			return err
		case d.IsDir():
			if path != dir && d.Name() == "golden" {
				return filepath.SkipDir
			}
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			if ok, _ := filepath.Match(filter, strings.TrimSuffix(d.Name(), ext)); !ok {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

// runScenario runs one scenario file against every engine and checks it
// against its golden file.
func (o *TestOptions) runScenario(ctx context.Context, file string) ScenarioResult {
	scenario, err := harness.LoadScenario(file)
	if err != nil {
		return ScenarioResult{
			Name:   filepath.Base(file),
			Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)},
		}
	}

	res := ScenarioResult{Name: scenario.Name}
	if errs := o.check(ctx, scenario, goldenFilePath(file)); len(errs) > 0 {
		res.Errors = errs
		return res
	}
	res.Pass = true
	return res
}

func (o *TestOptions) check(ctx context.Context, scenario *harness.Scenario, goldenPath string) []string {
	results, err := harness.RunAll(ctx, scenario)
	if err != nil {
		return []string{fmt.Sprintf("execution failed: %v", err)}
	}

	var errs []string
	for _, r := range results {
		for _, e := range r.Errors {
			errs = append(errs, fmt.Sprintf("[%s] %s", r.Engine, e))
		}
	}
	if len(errs) > 0 {
		return errs
	}

	snapshot, err := harness.Snapshot(scenario.Name, results[0])
	if err != nil {
		return []string{fmt.Sprintf("failed to snapshot result: %v", err)}
	}

	if o.Update {
		if err := writeGoldenFile(goldenPath, snapshot); err != nil {
			return []string{fmt.Sprintf("failed to update golden file: %v", err)}
		}
		return nil
	}

	golden, err := os.ReadFile(goldenPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return []string{fmt.Sprintf("failed to read golden file: %v", err)}
	case string(golden) != string(snapshot):
		return []string{"result does not match golden file (run with --update to regenerate)"}
	}
	return nil
}

// goldenFilePath maps dir/name.yaml to dir/golden/name.golden.
func goldenFilePath(scenarioFile string) string {
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(scenarioFile), "golden", name+".golden")
}

func writeGoldenFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
