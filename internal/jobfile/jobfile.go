// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package jobfile reads and writes YAML job lists. A job file replaces the
// two built-in jobs with any number of input/output pairs.
package jobfile

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/svg-a4-batch/pkg/types"
)

// File is the on-disk representation of a job list.
type File struct {
	Jobs []types.Job `yaml:"jobs"`
}

// Read loads and validates the job file at path.
func Read(path string) ([]types.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading job file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing job file %s: %w", path, err)
	}
	if err := Validate(f.Jobs); err != nil {
		return nil, fmt.Errorf("job file %s: %w", path, err)
	}
	return f.Jobs, nil
}

// Validate checks that every job names an input and an output directory.
func Validate(jobs []types.Job) error {
	if len(jobs) == 0 {
		return fmt.Errorf("no jobs defined")
	}
	for i, j := range jobs {
		if strings.TrimSpace(j.Input) == "" {
			return fmt.Errorf("job %d: input is required", i+1)
		}
		if strings.TrimSpace(j.OutputDir) == "" {
			return fmt.Errorf("job %d (%s): output_dir is required", i+1, j.Input)
		}
	}
	return nil
}

// plannedJob is a job annotated with its expected artifacts for display.
type plannedJob struct {
	Input     string   `yaml:"input"`
	OutputDir string   `yaml:"output_dir"`
	Artifacts []string `yaml:"artifacts"`
}

// WritePlan writes jobs as YAML, each with the artifacts the tool is
// expected to produce. The output is itself a valid job file.
func WritePlan(w io.Writer, jobs []types.Job) error {
	plan := struct {
		Jobs []plannedJob `yaml:"jobs"`
	}{Jobs: make([]plannedJob, len(jobs))}
	for i, j := range jobs {
		plan.Jobs[i] = plannedJob{Input: j.Input, OutputDir: j.OutputDir, Artifacts: j.Artifacts()}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&plan); err != nil {
		return fmt.Errorf("encoding job plan: %w", err)
	}
	return enc.Close()
}
