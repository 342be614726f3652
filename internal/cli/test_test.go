package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: complete_groceries
description: "Completing every todo completes the list"
flow:
  - invoke: List.create
    args: { name: Groceries }
    as: groceries
    expect:
      case: Success
  - invoke: Todo.create
    args: { list_id: $groceries, name: milk }
    expect:
      case: Success
  - invoke: List.completeAll
    args: { id: $groceries }
    expect:
      case: Success
assertions:
  - type: final_state
    table: lists
    where: { name: Groceries }
    expect: { completed: true, remaining: 0 }
`

const failingScenario = `name: wrong_expectation
flow:
  - invoke: List.create
    args: { name: Groceries }
    expect:
      case: ValidationError
`

func writeScenario(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func executeTest(t *testing.T, format string, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return buf, cmd.Execute()
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := executeTest(t, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	_, err := executeTest(t, "text", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenarios directory not found")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	buf, err := executeTest(t, "text", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No scenarios found")
}

func TestTestCommandEmptyScenariosDirJSON(t *testing.T) {
	buf, err := executeTest(t, "json", t.TempDir())
	require.NoError(t, err)

	var response CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &response))
	assert.Equal(t, "ok", response.Status)
}

func TestTestCommandPassingScenario(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "complete.yaml", passingScenario)

	buf, err := executeTest(t, "text", dir)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "PASS complete_groceries")
	assert.Contains(t, buf.String(), "1 passed, 0 failed, 1 total")
}

func TestTestCommandVerboseLogsSteps(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "complete.yaml", passingScenario)

	for _, verbose := range []bool{false, true} {
		stderr := &bytes.Buffer{}
		cmd := NewTestCommand(&RootOptions{Format: "text", Verbose: verbose})
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(stderr)
		cmd.SetArgs([]string{dir})
		require.NoError(t, cmd.Execute())

		if !verbose {
			assert.NotContains(t, stderr.String(), "step completed")
			continue
		}
		assert.Contains(t, stderr.String(), `msg="step completed"`)
		assert.Contains(t, stderr.String(), "scenario=complete_groceries")
		assert.Contains(t, stderr.String(), "engine=database")
		assert.Contains(t, stderr.String(), "engine=session")
		assert.Contains(t, stderr.String(), "action=List.completeAll")
	}
}

func TestTestCommandFailingScenario(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "complete.yaml", passingScenario)
	writeScenario(t, dir, "wrong.yaml", failingScenario)

	buf, err := executeTest(t, "text", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "FAIL wrong_expectation")
	assert.Contains(t, buf.String(), "[database]")
	assert.Contains(t, buf.String(), "1 passed, 1 failed, 2 total")
}

func TestTestCommandFailingScenarioJSON(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "wrong.yaml", failingScenario)

	buf, err := executeTest(t, "json", dir)
	require.Error(t, err)

	var response struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &response))
	assert.Equal(t, "error", response.Status)
	require.NotNil(t, response.Error)
	assert.Equal(t, CodeTestFailed, response.Error.Code)
	assert.Equal(t, 1, response.Data.Failed)
	require.Len(t, response.Data.Scenarios, 1)
	assert.NotEmpty(t, response.Data.Scenarios[0].Errors)
}

func TestTestCommandInvalidScenarioFile(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "broken.yaml", "name: broken\nflow: []\n")

	buf, err := executeTest(t, "text", dir)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "FAIL broken.yaml")
	assert.Contains(t, buf.String(), "failed to load scenario")
}

func TestTestCommandGoldenUpdateAndCompare(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "complete.yaml", passingScenario)

	_, err := executeTest(t, "text", dir, "--update")
	require.NoError(t, err)

	goldenPath := filepath.Join(dir, "golden", "complete.golden")
	golden, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"scenario_name":"complete_groceries"`)

	_, err = executeTest(t, "text", dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(goldenPath, []byte(`{"stale":true}`), 0644))
	buf, err := executeTest(t, "text", dir)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "does not match golden file")
}

func TestTestCommandFilter(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "complete.yaml", passingScenario)
	writeScenario(t, dir, "wrong.yaml", failingScenario)

	buf, err := executeTest(t, "text", dir, "--filter", "comp*")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "1 passed, 0 failed, 1 total")
}

func TestTestHelpText(t *testing.T) {
	buf, err := executeTest(t, "text", "--help")
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "both storage engines")
	assert.Contains(t, output, "--update")
	assert.Contains(t, output, "--filter")
	assert.Contains(t, output, "scenarios-dir")
}

func TestFindScenarioFiles(t *testing.T) {
	tmpDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "test1.yaml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "test2.yml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "ignore.txt"), []byte(""), 0644))

	files, err := findScenarioFiles(tmpDir, "")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestFindScenarioFilesWithFilter(t *testing.T) {
	tmpDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "list-create.yaml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "list-delete.yaml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "todo-create.yaml"), []byte(""), 0644))

	files, err := findScenarioFiles(tmpDir, "list-*")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	for _, f := range files {
		assert.Contains(t, filepath.Base(f), "list-")
	}
}

func TestFindScenarioFilesSkipsGoldenDir(t *testing.T) {
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "subdir")
	goldenDir := filepath.Join(tmpDir, "golden")
	require.NoError(t, os.MkdirAll(subDir, 0755))
	require.NoError(t, os.MkdirAll(goldenDir, 0755))

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "root.yaml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(subDir, "sub.yaml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(goldenDir, "stray.yaml"), []byte(""), 0644))

	files, err := findScenarioFiles(tmpDir, "")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestGoldenFilePath(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"/path/to/scenario.yaml", "/path/to/golden/scenario.golden"},
		{"/path/to/scenario.yml", "/path/to/golden/scenario.golden"},
		{"scenarios/test.yaml", "scenarios/golden/test.golden"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, goldenFilePath(tc.input))
	}
}
