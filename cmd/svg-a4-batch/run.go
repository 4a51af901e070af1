// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/svg-a4-batch/internal/batch"
	"github.com/pdiddy/svg-a4-batch/internal/history"
	"github.com/pdiddy/svg-a4-batch/internal/jobfile"
	"github.com/pdiddy/svg-a4-batch/internal/runlog"
	"github.com/pdiddy/svg-a4-batch/internal/secrets"
	"github.com/pdiddy/svg-a4-batch/internal/toolchain"
	"github.com/pdiddy/svg-a4-batch/pkg/types"
)

// runnerConfig merges the built-in defaults with flags, environment and the
// config file.
func (c *cli) runnerConfig() (types.RunnerConfig, error) {
	cfg := types.DefaultRunnerConfig()

	if v := c.v.GetStringSlice("interpreters"); len(v) > 0 {
		cfg.Interpreters = v
	}
	if v := c.v.GetString("requirements"); v != "" {
		cfg.Requirements = v
	}
	if v := c.v.GetString("tool"); v != "" {
		cfg.Tool = v
	}

	pause := types.PauseMode(c.v.GetString("pause"))
	if !pause.Valid() {
		return cfg, fmt.Errorf("invalid pause mode %q: use auto, always, or never", pause)
	}
	if pause != "" {
		cfg.Pause = pause
	}

	if path := c.v.GetString("jobs_file"); path != "" {
		jobs, err := jobfile.Read(path)
		if err != nil {
			return cfg, err
		}
		cfg.Jobs = jobs
	}
	return cfg, nil
}

// detector adapts toolchain.Detect to batch.DetectFunc.
func detector(candidates []string) batch.DetectFunc {
	return func(ctx context.Context) (batch.Interpreter, error) {
		ip, err := toolchain.Detect(ctx, candidates)
		if err != nil {
			return nil, err
		}
		return ip, nil
	}
}

func (c *cli) runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := c.runnerConfig()
	if err != nil {
		return err
	}

	logger, closeLog, err := runlog.Setup(runlog.Config{
		Path:    c.v.GetString("log_file"),
		Verbose: c.v.GetBool("verbose"),
		Stderr:  cmd.ErrOrStderr(),
	})
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: run log disabled: %v\n", err)
	}
	defer closeLog()

	r := batch.New(cfg, detector(cfg.Interpreters), batch.Options{
		Stdin:  cmd.InOrStdin(),
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
		PipEnv: secrets.PipEnv(c.secrets),
		Logger: logger,
	})

	report, runErr := r.Run(cmd.Context())

	if path := c.v.GetString("history"); path != "" {
		if err := recordRun(context.WithoutCancel(cmd.Context()), path, report); err != nil {
			logger.Warn("history.record_failed", "path", path, "err", err)
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not record run history: %v\n", err)
		}
	}

	return runErr
}

func recordRun(ctx context.Context, path string, report types.RunReport) error {
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = store.Record(ctx, report)
	return err
}
