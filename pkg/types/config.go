package types

import "runtime"

const (
	// DefaultRequirements is the dependency manifest handed to pip.
	DefaultRequirements = "requirements.txt"

	// DefaultTool is the external conversion script run by the interpreter.
	DefaultTool = "process_svg_to_a4_pdf.py"
)

// PauseMode controls whether the runner waits for the user to press Enter
// at the fatal and advisory stops.
type PauseMode string

const (
	// PauseAuto pauses on Windows only, where the console window would
	// otherwise close before the message can be read.
	PauseAuto   PauseMode = "auto"
	PauseAlways PauseMode = "always"
	PauseNever  PauseMode = "never"
)

// Enabled reports whether the mode pauses on the given GOOS.
func (m PauseMode) Enabled(goos string) bool {
	switch m {
	case PauseAlways:
		return true
	case PauseNever:
		return false
	default:
		return goos == "windows"
	}
}

// Valid reports whether m is one of the known modes. The empty string is
// treated as PauseAuto.
func (m PauseMode) Valid() bool {
	switch m {
	case "", PauseAuto, PauseAlways, PauseNever:
		return true
	}
	return false
}

// RunnerConfig holds everything the batch runner needs for one run.
type RunnerConfig struct {
	// Interpreters lists the interpreter binaries to probe, in order.
	Interpreters []string `json:"interpreters" yaml:"interpreters"`

	// Requirements is the path of the dependency manifest (default requirements.txt).
	Requirements string `json:"requirements" yaml:"requirements"`

	// Tool is the path of the external conversion script.
	Tool string `json:"tool" yaml:"tool"`

	// Jobs are the conditional tool invocations, processed in order.
	Jobs []Job `json:"jobs" yaml:"jobs"`

	// Pause selects when the runner waits for acknowledgment.
	Pause PauseMode `json:"pause" yaml:"pause"`
}

// DefaultInterpreters returns the interpreter candidates for goos. Windows
// installs usually expose python and the py launcher; POSIX systems expose
// python3.
func DefaultInterpreters(goos string) []string {
	if goos == "windows" {
		return []string{"python", "py"}
	}
	return []string{"python3", "python"}
}

// DefaultRunnerConfig returns the fixed configuration used when the CLI is
// invoked without flags or a config file.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Interpreters: DefaultInterpreters(runtime.GOOS),
		Requirements: DefaultRequirements,
		Tool:         DefaultTool,
		Jobs:         DefaultJobs(),
		Pause:        PauseAuto,
	}
}
