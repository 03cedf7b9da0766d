package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI with args and returns stdout, stderr, and the
// command error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestValidate_ValidModule(t *testing.T) {
	out, _, err := execute(t, "validate", "testdata/valid.cue")
	require.NoError(t, err)
	assert.Contains(t, out, `module "valid": OK (1 ops)`)
}

func TestValidate_InvalidModule(t *testing.T) {
	out, _, err := execute(t, "validate", "testdata/invalid.cue")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	// Both failures are reported, with their codes.
	assert.Contains(t, out, "Q101")
	assert.Contains(t, out, "Q112")
}

func TestValidate_MissingFile(t *testing.T) {
	_, _, err := execute(t, "validate", "testdata/nope.cue")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidate_JSONOutput(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "validate", "testdata/valid.cue")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "valid", data["module"])
	assert.Equal(t, true, data["valid"])
	assert.NotEmpty(t, data["hash"])
}

func TestValidate_JSONOutputInvalid(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "validate", "testdata/invalid.cue")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	data := resp.Data.(map[string]any)
	assert.Equal(t, false, data["valid"])
	assert.Len(t, data["errors"], 2)
}

func TestNormalize_FoldsCasts(t *testing.T) {
	out, _, err := execute(t, "normalize", "testdata/fold.cue")
	require.NoError(t, err)

	// The inverse cast pair is gone and the stats op reads the module
	// argument directly.
	assert.Contains(t, out, "quant.stats(%in)")
	assert.NotContains(t, out, "%back")
}

func TestNormalize_RejectsInvalidModule(t *testing.T) {
	_, _, err := execute(t, "normalize", "testdata/invalid.cue")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestStats_ImportAndAnnotate(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "calib.db")
	reportPath := filepath.Join(dir, "report.yaml")
	report := `
label: test
stats:
  - value: in
    min: -1.0
    max: 1.0
`
	require.NoError(t, os.WriteFile(reportPath, []byte(report), 0o644))

	out, _, err := execute(t, "stats", "import", reportPath,
		"--module", "testdata/valid.cue", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 1 records as run ")

	// The annotated module carries the inserted stats op alongside the
	// one the source file already had.
	out, _, err = execute(t, "stats", "annotate", "testdata/valid.cue", "--db", dbPath)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "quant.stats(%in)"))
	assert.Contains(t, out, "dense<[-1.0, 1.0]> : tensor<2xf32>")
}

func TestStats_AnnotateWithoutRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "calib.db")

	_, _, err := execute(t, "stats", "annotate", "testdata/valid.cue", "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRoot_RejectsBadFormat(t *testing.T) {
	_, _, err := execute(t, "--format", "xml", "validate", "testdata/valid.cue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitCommandError, GetExitCode(&ExitError{Code: ExitCommandError, Message: "x"}))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
}
