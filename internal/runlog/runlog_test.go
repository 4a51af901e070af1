// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package runlog

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

func TestSetupDiscardByDefault(t *testing.T) {
	l, cleanup, err := Setup(Config{})
	require.NoError(t, err)
	require.NotNil(t, cleanup)
	l.Info("ignored")
	assert.NoError(t, cleanup())
}

func TestSetupFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "batch.log")

	l, cleanup, err := Setup(Config{Path: path})
	require.NoError(t, err)
	l.Info("job.processed", "input", "nested2.svg")
	require.NoError(t, cleanup())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2, "init record plus one entry")

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &rec))
	assert.Equal(t, "job.processed", rec["msg"])
	assert.Equal(t, "nested2.svg", rec["input"])
	assert.True(t, strings.HasSuffix(rec["time"].(string), "Z"), "time should be UTC: %v", rec["time"])
}

func TestSetupVerboseAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.log")
	var stderr bytes.Buffer

	l, cleanup, err := Setup(Config{Path: path, Verbose: true, Stderr: &stderr})
	require.NoError(t, err)
	l.Warn("deps.install_failed", "exit_code", 1)
	require.NoError(t, cleanup())

	assert.Contains(t, stderr.String(), "deps.install_failed")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"exit_code":1`)
}

func TestSetupUnwritablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	l, cleanup, err := Setup(Config{Path: filepath.Join(blocker, "batch.log")})
	require.Error(t, err)
	require.NotNil(t, l)
	require.NotNil(t, cleanup)
}
