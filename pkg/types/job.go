package types

import (
	"path/filepath"
	"strings"
)

// Job is one conditional invocation of the conversion tool: if Input exists,
// the tool is run with Input and --output OutputDir.
type Job struct {
	// Input is the SVG file to convert, relative to the working directory.
	Input string `json:"input" yaml:"input"`

	// OutputDir is passed verbatim as the tool's --output argument.
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// DefaultJobs returns the two jobs the runner processes when no job file is
// given.
func DefaultJobs() []Job {
	return []Job{
		{Input: "ladyghoststl-2-014.svg", OutputDir: "./output_ladyghost"},
		{Input: "nested2.svg", OutputDir: "./output_nested"},
	}
}

// Artifact suffixes appended by the conversion tool to the input stem.
const (
	SuffixA4       = "_A4.pdf"
	SuffixNumbered = "_numbered.svg"
	SuffixLong     = "_long.pdf"
)

// Stem returns the input file name without directory and extension.
func (j Job) Stem() string {
	base := filepath.Base(j.Input)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Artifacts returns the file names the tool is expected to write for this
// job, in the order the summary lists them. The names follow the tool's
// convention and are not checked.
func (j Job) Artifacts() []string {
	stem := j.Stem()
	return []string{
		stem + SuffixA4,
		stem + SuffixNumbered,
		stem + SuffixLong,
	}
}
