package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/fixture-survey/internal/config"
	"github.com/ginjaninja78/fixture-survey/internal/session"
)

const surveyCSV = `Apt #,Kitchen Aerator,Bath Aerator,Shower Head,Toilet,Comments
101,Male,1.0 gpm,,yes,
Grand Total,1,1,0,1,
102,,,,,
`

// execute runs the CLI against a file store in dir.
func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvStoreDriver, "file")
	t.Setenv(config.EnvStorePath, filepath.Join(dir, "state.json"))
	t.Setenv(config.EnvOutputDir, filepath.Join(dir, "out"))
	t.Setenv(config.EnvLogLevel, "error")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(dir, "missing.yaml")}, args...))
	defer teardown()

	err := rootCmd.Execute()
	return out.String(), err
}

func TestWorkflow(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "survey.csv")
	require.NoError(t, os.WriteFile(input, []byte(surveyCSV), 0644))

	out, err := execute(t, dir, "ingest", input, "--customer", "Acme Housing")
	require.NoError(t, err)
	assert.Contains(t, out, "Unit column:   Apt #")
	assert.Contains(t, out, "Units:         2")

	_, err = execute(t, dir, "edit", "note", "101", "Tenant refused entry.")
	require.NoError(t, err)

	_, err = execute(t, dir, "edit", "note", "999", "nope")
	assert.Error(t, err)

	out, err = execute(t, dir, "row", "add")
	require.NoError(t, err)
	id := strings.TrimSpace(strings.TrimPrefix(out, "Added row "))
	require.NotEmpty(t, id)

	_, err = execute(t, dir, "edit", "unit", id, "1")
	require.NoError(t, err)

	out, err = execute(t, dir, "report", "--format", "json", "--output", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "Tenant refused entry.")
	assert.Contains(t, out, "Acme Housing")
	assert.Less(t, strings.Index(out, `"unit": "1"`), strings.Index(out, `"unit": "101"`))

	out, err = execute(t, dir, "report", "--format", "pdf", "--output", "")
	require.NoError(t, err)
	assert.Contains(t, out, "Report written to")
	matches, err := filepath.Glob(filepath.Join(dir, "out", "*.pdf"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	_, err = execute(t, dir, "reset")
	require.NoError(t, err)

	_, err = execute(t, dir, "report", "--format", "table")
	assert.ErrorIs(t, err, session.ErrNoSession)
}
