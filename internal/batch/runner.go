// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch runs the fixed conversion sequence: interpreter check,
// dependency install, one tool invocation per present input, summary.
//
// Only a missing interpreter stops the sequence. Dependency install failures
// and missing inputs are reported and skipped; the tool's own failures are
// passed through and recorded without changing control flow.
package batch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/pdiddy/svg-a4-batch/internal/toolchain"
	"github.com/pdiddy/svg-a4-batch/pkg/types"
)

// ErrInterpreterNotFound is the only fatal condition of a run.
var ErrInterpreterNotFound = errors.New("interpreter not found")

// Interpreter runs the package manager and the conversion script.
// *toolchain.Interpreter implements it.
type Interpreter interface {
	Name() string
	InstallRequirements(ctx context.Context, manifest string, env []string, stdout, stderr io.Writer) error
	RunScript(ctx context.Context, dir, script string, args []string, stdin io.Reader, stdout, stderr io.Writer) error
}

// DetectFunc locates an interpreter. It returns an error when none is usable.
type DetectFunc func(ctx context.Context) (Interpreter, error)

// Options carries the process-level collaborators of a Runner. Zero values
// fall back to the os streams, the current directory, runtime.GOOS and a
// discarding logger.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Dir is the working directory inputs are resolved against and the
	// tool is started in.
	Dir string

	// PipEnv is appended to the environment of the dependency install only.
	PipEnv []string

	// GOOS decides the auto pause mode and the platform notes.
	GOOS string

	Logger *slog.Logger
}

// Runner executes one batch. It holds no state between runs.
type Runner struct {
	cfg    types.RunnerConfig
	detect DetectFunc
	opts   Options

	interp Interpreter
}

// New creates a Runner for cfg.
func New(cfg types.RunnerConfig, detect DetectFunc, opts Options) *Runner {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.GOOS == "" {
		opts.GOOS = runtime.GOOS
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Requirements == "" {
		cfg.Requirements = types.DefaultRequirements
	}
	if cfg.Tool == "" {
		cfg.Tool = types.DefaultTool
	}
	return &Runner{cfg: cfg, detect: detect, opts: opts}
}

// Run executes check, install, process for every job, then summarize. The
// returned report is filled in as far as the run got; the error is non-nil
// only when the interpreter is missing or ctx is cancelled.
func (r *Runner) Run(ctx context.Context) (types.RunReport, error) {
	report := types.RunReport{StartedAt: time.Now().UTC()}

	r.opts.Logger.Info("batch.start", "jobs", len(r.cfg.Jobs), "tool", r.cfg.Tool)

	if err := r.CheckInterpreter(ctx); err != nil {
		report.FinishedAt = time.Now().UTC()
		return report, err
	}
	report.Interpreter = r.interp.Name()

	report.DepsInstalled = r.InstallDependencies(ctx)

	for _, job := range r.cfg.Jobs {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = time.Now().UTC()
			return report, err
		}
		report.Outcomes = append(report.Outcomes, r.ProcessIfPresent(ctx, job))
	}

	r.Summarize()

	report.FinishedAt = time.Now().UTC()
	r.opts.Logger.Info("batch.finish",
		"processed", report.Count(types.JobProcessed),
		"skipped", report.Count(types.JobSkipped),
		"tool_failed", report.Count(types.JobToolFailed),
		"deps_installed", report.DepsInstalled,
	)
	return report, nil
}

// CheckInterpreter locates the interpreter. On failure it prints the error
// with an installation pointer, pauses when enabled, and returns an error
// wrapping ErrInterpreterNotFound.
func (r *Runner) CheckInterpreter(ctx context.Context) error {
	fmt.Fprintln(r.opts.Stdout, "Checking for Python...")

	ip, err := r.detect(ctx)
	if err != nil {
		r.interp = nil
		r.opts.Logger.Error("interpreter.missing", "err", err)
		fmt.Fprintf(r.opts.Stderr, "ERROR: Python is not installed or not on PATH (%v)\n", err)
		fmt.Fprintf(r.opts.Stderr, "Install Python 3 from %s and try again.\n", toolchain.InstallHint)
		r.pause()
		return fmt.Errorf("%w: %w", ErrInterpreterNotFound, err)
	}

	r.interp = ip
	r.opts.Logger.Info("interpreter.found", "name", ip.Name())
	fmt.Fprintf(r.opts.Stdout, "Using %s\n", ip.Name())
	return nil
}

// InstallDependencies installs the requirements manifest quietly. It reports
// whether the install succeeded; a failure prints a warning with the manual
// fallback command and never stops the run. CheckInterpreter must have
// succeeded first.
func (r *Runner) InstallDependencies(ctx context.Context) bool {
	fmt.Fprintf(r.opts.Stdout, "\nInstalling dependencies from %s...\n", r.cfg.Requirements)

	err := r.interp.InstallRequirements(ctx, r.cfg.Requirements, r.opts.PipEnv, r.opts.Stdout, r.opts.Stderr)
	if err != nil {
		r.opts.Logger.Warn("deps.install_failed", "manifest", r.cfg.Requirements, "exit_code", toolchain.ExitCode(err), "err", err)
		fmt.Fprintln(r.opts.Stderr, "WARNING: Failed to install dependencies.")
		fmt.Fprintf(r.opts.Stderr, "Try installing them manually: pip install -r %s\n", r.cfg.Requirements)
		r.pause()
		return false
	}

	r.opts.Logger.Info("deps.installed", "manifest", r.cfg.Requirements)
	fmt.Fprintln(r.opts.Stdout, "Dependencies installed.")
	return true
}

// ProcessIfPresent runs the tool on job.Input when that file exists and
// skips it with a notice otherwise. The tool's streams are attached
// directly; its exit status is recorded but not acted upon.
func (r *Runner) ProcessIfPresent(ctx context.Context, job types.Job) types.JobOutcome {
	outcome := types.JobOutcome{Job: job, ExitCode: -1}

	if _, err := os.Stat(r.resolve(job.Input)); err != nil {
		r.opts.Logger.Info("job.skipped", "input", job.Input, "err", err)
		fmt.Fprintf(r.opts.Stdout, "\nFile not found: %s (skipped)\n", job.Input)
		outcome.Status = types.JobSkipped
		return outcome
	}

	fmt.Fprintf(r.opts.Stdout, "\nProcessing %s -> %s\n", job.Input, job.OutputDir)

	args := []string{job.Input, "--output", job.OutputDir}
	err := r.interp.RunScript(ctx, r.opts.Dir, r.cfg.Tool, args, r.opts.Stdin, r.opts.Stdout, r.opts.Stderr)
	outcome.ExitCode = toolchain.ExitCode(err)
	if err != nil {
		r.opts.Logger.Warn("job.tool_failed", "input", job.Input, "exit_code", outcome.ExitCode, "err", err)
		outcome.Status = types.JobToolFailed
		return outcome
	}

	r.opts.Logger.Info("job.processed", "input", job.Input, "output_dir", job.OutputDir)
	outcome.Status = types.JobProcessed
	return outcome
}

// Summarize prints the artifacts each job is expected to produce.
func (r *Runner) Summarize() {
	w := r.opts.Stdout
	fmt.Fprintln(w, "\n========================================")
	fmt.Fprintln(w, "Done. Expected output files:")
	for _, job := range r.cfg.Jobs {
		fmt.Fprintf(w, "  %s\n", job.OutputDir)
		for _, name := range job.Artifacts() {
			fmt.Fprintf(w, "    %s\n", name)
		}
	}
	fmt.Fprintln(w, "  *_A4.pdf       PDF split into A4 pages")
	fmt.Fprintln(w, "  *_numbered.svg SVG with numbered layers")
	fmt.Fprintln(w, "  *_long.pdf     full drawing on one long page")
	if r.opts.GOOS == "windows" {
		fmt.Fprintln(w, "\nNote: the GTK3 runtime (cairo) must be installed for SVG to PDF conversion.")
	}
	fmt.Fprintln(w, "========================================")
}

func (r *Runner) resolve(path string) string {
	if r.opts.Dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(r.opts.Dir, path)
}

// pause waits for a line on stdin when pausing is enabled for this platform.
// EOF counts as acknowledgment.
func (r *Runner) pause() {
	if !r.cfg.Pause.Enabled(r.opts.GOOS) {
		return
	}
	fmt.Fprint(r.opts.Stdout, "Press Enter to continue . . . ")
	_, _ = bufio.NewReader(r.opts.Stdin).ReadString('\n')
	fmt.Fprintln(r.opts.Stdout)
}
