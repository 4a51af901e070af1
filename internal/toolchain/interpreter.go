// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package toolchain locates the Python interpreter and runs the package
// manager and the conversion script through it.
package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// InstallHint is printed when no interpreter can be found.
const InstallHint = "https://www.python.org/downloads/"

// Command describes one child process. Stdio streams left nil are
// connected to the null device by os/exec.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory; empty means the current directory.
	Dir string
	// Env holds extra KEY=VALUE pairs appended to the parent environment.
	Env    []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// String renders the command line for logs.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)
	Run(ctx context.Context, c Command) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

func (o *osExecutor) Run(ctx context.Context, c Command) error {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	return cmd.Run()
}

// Interpreter is a Python interpreter resolved on PATH.
type Interpreter struct {
	// Bin is the candidate name that matched (e.g. "python3").
	Bin string
	// Path is the absolute path LookPath resolved Bin to.
	Path string
	// Version is the trimmed output of "--version", e.g. "Python 3.12.1".
	Version string

	exec executor
}

// Name returns the candidate name the interpreter was found under.
func (i *Interpreter) Name() string { return i.Bin }

// InstallRequirements runs "<python> -m pip install -q -r manifest" with the
// child's output attached to stdout and stderr.
func (i *Interpreter) InstallRequirements(ctx context.Context, manifest string, env []string, stdout, stderr io.Writer) error {
	c := Command{
		Name:   i.Path,
		Args:   []string{"-m", "pip", "install", "-q", "-r", manifest},
		Env:    env,
		Stdout: stdout,
		Stderr: stderr,
	}
	if err := i.exec.Run(ctx, c); err != nil {
		return fmt.Errorf("installing requirements from %s: %w", manifest, err)
	}
	return nil
}

// RunScript runs "<python> script args..." in dir with all three streams
// attached. The child's exit status is available through ExitCode on the
// returned error.
func (i *Interpreter) RunScript(ctx context.Context, dir, script string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	c := Command{
		Name:   i.Path,
		Args:   append([]string{script}, args...),
		Dir:    dir,
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
	}
	if err := i.exec.Run(ctx, c); err != nil {
		return fmt.Errorf("running %s: %w", script, err)
	}
	return nil
}

// ErrNotFound is returned by Detect when no candidate is usable.
var ErrNotFound = errors.New("python interpreter not found")

var defaultExec = &osExecutor{}

// Detect probes candidates in order and returns the first one that is on
// PATH and answers "--version" with exit status 0.
func Detect(ctx context.Context, candidates []string) (*Interpreter, error) {
	return detect(ctx, defaultExec, candidates)
}

func detect(ctx context.Context, exec executor, candidates []string) (*Interpreter, error) {
	for _, bin := range candidates {
		path, err := exec.LookPath(bin)
		if err != nil {
			continue
		}
		out, err := exec.CombinedOutput(ctx, path, "--version")
		if err != nil {
			continue
		}
		return &Interpreter{
			Bin:     bin,
			Path:    path,
			Version: firstLine(out),
			exec:    exec,
		}, nil
	}
	return nil, fmt.Errorf("%w (tried %s)", ErrNotFound, strings.Join(candidates, ", "))
}

func firstLine(b []byte) string {
	line, _, _ := bytes.Cut(bytes.TrimSpace(b), []byte("\n"))
	return string(bytes.TrimSpace(line))
}

// ExitCode extracts a child exit status from err. It returns 0 for a nil
// error and -1 when err does not carry an exit status (for example when the
// binary could not be started).
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var coded interface{ ExitCode() int }
	if errors.As(err, &coded) {
		return coded.ExitCode()
	}
	return -1
}
