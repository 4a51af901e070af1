// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/svg-a4-batch/internal/batch"
)

type result struct {
	stdout string
	stderr string
	err    error
}

func execute(t *testing.T, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(strings.NewReader(""), &stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent of testing.T.Chdir for Go < 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

// isolate moves the test into an empty directory that also serves as HOME,
// so no real config file or secrets are picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", dir)
	return dir
}

// workspace switches into a fresh directory containing a fake interpreter
// that logs every invocation to calls.log. The fake pip exits with pipExit.
func workspace(t *testing.T, pipExit int, inputs ...string) (dir, python string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake interpreter is a shell script")
	}
	dir = isolate(t)

	python = filepath.Join(dir, "fake-python")
	script := fmt.Sprintf(`#!/bin/sh
if [ "$1" = "--version" ]; then echo "Python 3.12.0"; exit 0; fi
if [ "$1" = "-m" ]; then echo "pip $*" >> %[1]q; exit %[2]d; fi
echo "tool $*" >> %[1]q
exit 0
`, filepath.Join(dir, "calls.log"), pipExit)
	require.NoError(t, os.WriteFile(python, []byte(script), 0o755))

	for _, name := range inputs {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("<svg/>"), 0o644))
	}
	return dir, python
}

func calls(t *testing.T, dir string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "calls.log"))
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestRun_InterpreterMissingIsFatal(t *testing.T) {
	dir, _ := workspace(t, 0, "nested2.svg")

	res := execute(t, "--python", filepath.Join(dir, "no-such-python"), "--pause", "never")

	require.Error(t, res.err)
	assert.ErrorIs(t, res.err, batch.ErrInterpreterNotFound)
	assert.True(t, batch.IsReported(res.err))
	assert.Contains(t, res.stderr, "ERROR: Python is not installed")
	assert.NotContains(t, res.stdout, "Expected output files")
	assert.Empty(t, calls(t, dir))
}

func TestRun_OnlyNestedPresent(t *testing.T) {
	dir, python := workspace(t, 0, "nested2.svg")

	res := execute(t, "--python", python)

	require.NoError(t, res.err)
	assert.Equal(t, []string{
		"pip -m pip install -q -r requirements.txt",
		"tool process_svg_to_a4_pdf.py nested2.svg --output ./output_nested",
	}, calls(t, dir))
	assert.Contains(t, res.stdout, "File not found: ladyghoststl-2-014.svg (skipped)")
	assert.Contains(t, res.stdout, "nested2_A4.pdf")
}

func TestRun_BothMissing(t *testing.T) {
	dir, python := workspace(t, 0)

	res := execute(t, "--python", python)

	require.NoError(t, res.err)
	assert.Equal(t, 2, strings.Count(res.stdout, "File not found:"))
	assert.Contains(t, res.stdout, "Expected output files")
	assert.Equal(t, []string{"pip -m pip install -q -r requirements.txt"}, calls(t, dir))
}

func TestRun_PipFailureStillProcesses(t *testing.T) {
	dir, python := workspace(t, 1, "ladyghoststl-2-014.svg", "nested2.svg")

	res := execute(t, "--python", python, "--pause", "never")

	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "WARNING: Failed to install dependencies")
	got := calls(t, dir)
	require.Len(t, got, 3)
	assert.Equal(t, "tool process_svg_to_a4_pdf.py ladyghoststl-2-014.svg --output ./output_ladyghost", got[1])
	assert.Equal(t, "tool process_svg_to_a4_pdf.py nested2.svg --output ./output_nested", got[2])
}

func TestRun_Idempotent(t *testing.T) {
	dir, python := workspace(t, 0, "nested2.svg")

	first := execute(t, "--python", python)
	require.NoError(t, first.err)
	afterFirst := calls(t, dir)

	second := execute(t, "--python", python)
	require.NoError(t, second.err)
	afterSecond := calls(t, dir)

	require.Len(t, afterSecond, 2*len(afterFirst))
	assert.Equal(t, afterFirst, afterSecond[len(afterFirst):])
	assert.Equal(t, first.stdout, second.stdout)
}

func TestRun_ConfigFileAndJobFile(t *testing.T) {
	dir, python := workspace(t, 0, "a.svg")

	jobs := "jobs:\n  - input: a.svg\n    output_dir: ./out_a\n  - input: b.svg\n    output_dir: ./out_b\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jobs.yaml"), []byte(jobs), 0o644))
	cfg := fmt.Sprintf("interpreters:\n  - %s\njobs_file: jobs.yaml\npause: never\nrequirements: deps.txt\n", python)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "svg-a4-batch.yaml"), []byte(cfg), 0o644))

	res := execute(t)

	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "Using config file:")
	assert.Equal(t, []string{
		"pip -m pip install -q -r deps.txt",
		"tool process_svg_to_a4_pdf.py a.svg --output ./out_a",
	}, calls(t, dir))
	assert.Contains(t, res.stdout, "File not found: b.svg (skipped)")
}

func TestRun_SecretsReachPip(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake interpreter is a shell script")
	}
	dir := isolate(t)

	python := filepath.Join(dir, "fake-python")
	script := fmt.Sprintf(`#!/bin/sh
if [ "$1" = "--version" ]; then echo "Python 3.12.0"; exit 0; fi
echo "index=$PIP_INDEX_URL" >> %q
`, filepath.Join(dir, "calls.log"))
	require.NoError(t, os.WriteFile(python, []byte(script), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".secrets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".secrets", "pip-index-url"), []byte("https://mirror.example/simple\n"), 0o600))

	res := execute(t, "--python", python)

	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "Loaded secrets: [pip-index-url]")
	assert.Equal(t, []string{"index=https://mirror.example/simple"}, calls(t, dir))
}

func TestHistoryRecordsRuns(t *testing.T) {
	dir, python := workspace(t, 0, "nested2.svg")
	db := filepath.Join(dir, "state", "history.db")

	require.NoError(t, execute(t, "--python", python, "--history", db).err)

	res := execute(t, "history", "--history", db)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "ladyghoststl-2-014.svg=skipped")
	assert.Contains(t, res.stdout, "nested2.svg=processed")

	res = execute(t, "history", "--history", db, "--json")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, `"status": "processed"`)
}

func TestHistoryRequiresDatabase(t *testing.T) {
	isolate(t)
	res := execute(t, "history")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "no history database")
}

func TestJobsCommand(t *testing.T) {
	isolate(t)
	res := execute(t, "jobs")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "input: ladyghoststl-2-014.svg")
	assert.Contains(t, res.stdout, "output_dir: ./output_nested")
	assert.Contains(t, res.stdout, "- nested2_numbered.svg")
}

func TestCheckCommand(t *testing.T) {
	_, python := workspace(t, 0)

	res := execute(t, "check", "--python", python)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "(Python 3.12.0)")

	res = execute(t, "check", "--python", "definitely-not-python-7f3a")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "python.org")
}

func TestInvalidPauseMode(t *testing.T) {
	isolate(t)
	res := execute(t, "--pause", "sometimes")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "invalid pause mode")
}

func TestRejectsArguments(t *testing.T) {
	isolate(t)
	res := execute(t, "input.svg")
	require.Error(t, res.err)
}

func TestVersion(t *testing.T) {
	isolate(t)
	res := execute(t, "version")
	require.NoError(t, res.err)
	assert.Equal(t, "svg-a4-batch dev\n", res.stdout)
}
