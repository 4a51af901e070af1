package types

import "time"

// JobStatus records what happened to a single job.
type JobStatus string

const (
	JobProcessed  JobStatus = "processed"
	JobSkipped    JobStatus = "skipped"
	JobToolFailed JobStatus = "tool-failed"
)

// JobOutcome pairs a job with its status. ExitCode is the tool's exit status
// and is -1 when the tool could not be started or was not run.
type JobOutcome struct {
	Job      Job       `json:"job" yaml:"job"`
	Status   JobStatus `json:"status" yaml:"status"`
	ExitCode int       `json:"exit_code" yaml:"exit_code"`
}

// RunReport describes one complete pass of the runner.
type RunReport struct {
	// Interpreter is the resolved interpreter path, empty when none was found.
	Interpreter string `json:"interpreter" yaml:"interpreter"`

	// DepsInstalled is false when the dependency install reported a failure.
	DepsInstalled bool `json:"deps_installed" yaml:"deps_installed"`

	Outcomes   []JobOutcome `json:"outcomes" yaml:"outcomes"`
	StartedAt  time.Time    `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time    `json:"finished_at" yaml:"finished_at"`
}

// Count returns how many outcomes have the given status.
func (r RunReport) Count(status JobStatus) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}
