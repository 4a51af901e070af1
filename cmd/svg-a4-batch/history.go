// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/svg-a4-batch/internal/history"
	"github.com/pdiddy/svg-a4-batch/pkg/types"
)

func newHistoryCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded batch runs",
		Long: `History lists runs recorded with --history (or the history config key),
newest first, with the outcome of every job.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.v.GetString("history")
			if path == "" {
				return fmt.Errorf("no history database: pass --history or set history in the config file")
			}
			limit, _ := cmd.Flags().GetInt("limit")
			jsonOutput, _ := cmd.Flags().GetBool("json")

			store, err := history.Open(path)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return formatHistory(cmd.OutOrStdout(), runs, jsonOutput)
		},
	}
	cmd.Flags().Int("limit", 20, "maximum number of runs to list")
	cmd.Flags().Bool("json", false, "output runs as JSON")
	return cmd
}

func formatHistory(w io.Writer, runs []history.Run, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-5s  %-20s  %-10s  %-6s  %s\n", "Run", "Started", "Python", "Deps", "Jobs")
	fmt.Fprintln(w, strings.Repeat("-", 78))
	for _, r := range runs {
		interp := r.Interpreter
		if interp == "" {
			interp = "missing"
		}
		deps := "ok"
		if !r.DepsInstalled {
			deps = "failed"
		}
		fmt.Fprintf(w, "%-5d  %-20s  %-10s  %-6s  %s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), interp, deps, jobSummary(r.Outcomes))
	}
	return nil
}

func jobSummary(outcomes []types.JobOutcome) string {
	if len(outcomes) == 0 {
		return "-"
	}
	parts := make([]string, len(outcomes))
	for i, o := range outcomes {
		s := fmt.Sprintf("%s=%s", o.Job.Input, o.Status)
		if o.Status == types.JobToolFailed {
			s += fmt.Sprintf("(%d)", o.ExitCode)
		}
		parts[i] = s
	}
	return strings.Join(parts, ", ")
}
