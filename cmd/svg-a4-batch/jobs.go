package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/svg-a4-batch/internal/jobfile"
)

func newJobsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "jobs",
		Short: "Print the effective job list with expected output files",
		Long: `Jobs prints the inputs the batch would process, as YAML, together with the
files the tool is expected to write for each. The output can be saved and
passed back with --jobs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.runnerConfig()
			if err != nil {
				return err
			}
			return jobfile.WritePlan(cmd.OutOrStdout(), cfg.Jobs)
		},
	}
}
