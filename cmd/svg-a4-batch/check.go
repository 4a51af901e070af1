package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/svg-a4-batch/internal/toolchain"
)

func newCheckCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that a Python interpreter is available",
		Long: `Check probes the interpreter candidates the batch would use and prints the
first one that works. Nothing is installed and no input is processed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.runnerConfig()
			if err != nil {
				return err
			}
			ip, err := toolchain.Detect(cmd.Context(), cfg.Interpreters)
			if err != nil {
				return fmt.Errorf("%w; install Python 3 from %s", err, toolchain.InstallHint)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", ip.Name(), ip.Path, ip.Version)
			return nil
		},
	}
}
