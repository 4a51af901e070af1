// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets reads package-index credentials from a directory of
// plain-text files and turns them into environment variables for pip.
// The file name is the key and the trimmed contents are the value.
//
// Recognized keys: pip-index-url, pip-extra-index-url, pip-trusted-host.
package secrets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// pipVars maps secret file names to the pip environment variables they set.
var pipVars = map[string]string{
	"pip-index-url":       "PIP_INDEX_URL",
	"pip-extra-index-url": "PIP_EXTRA_INDEX_URL",
	"pip-trusted-host":    "PIP_TRUSTED_HOST",
}

// Load returns the non-empty secrets found in dir. A missing directory is
// not an error. Unreadable files are reported to warn and skipped.
func Load(dir string, warn io.Writer) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	found := make(map[string]string, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(warn, "warning: could not read secret %s: %v\n", name, err)
			continue
		}
		if v := strings.TrimSpace(string(data)); v != "" {
			found[name] = v
		}
	}
	return found, nil
}

// PipEnv returns KEY=VALUE pairs for the recognized secrets, sorted by
// variable name. Unrecognized secrets are ignored.
func PipEnv(s map[string]string) []string {
	var env []string
	for key, v := range s {
		if name, ok := pipVars[key]; ok {
			env = append(env, name+"="+v)
		}
	}
	sort.Strings(env)
	return env
}
