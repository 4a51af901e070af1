// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/svg-a4-batch/internal/secrets"
	"github.com/pdiddy/svg-a4-batch/pkg/types"
)

const (
	appName   = "svg-a4-batch"
	envPrefix = "SVG_A4_BATCH"
)

// cli holds state shared by the commands of one command tree.
type cli struct {
	v       *viper.Viper
	secrets map[string]string
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:   appName,
		Short: "Number SVG layers and split them into A4 PDFs",
		Long: `svg-a4-batch checks for Python, installs the dependencies listed in
requirements.txt, and runs process_svg_to_a4_pdf.py on each input that
exists:

  ladyghoststl-2-014.svg  -> ./output_ladyghost
  nested2.svg             -> ./output_nested

Missing inputs are skipped. For every processed input the tool writes
<name>_numbered.svg, <name>_long.pdf and <name>_A4.pdf.

The tool also accepts options this command never passes; run it by hand to
use them:

  python process_svg_to_a4_pdf.py input.svg --output ./out \
      --font-size 3.0 --text-color red --offset-x 2.0 --offset-y -1.0

On Windows the GTK3 runtime (cairo) must be installed separately.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfgFile, _ := cmd.Root().PersistentFlags().GetString("config")
			c.initConfig(cfgFile, cmd.ErrOrStderr())
			return c.loadSecrets(cmd.ErrOrStderr())
		},
		RunE: c.runBatch,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.CompletionOptions.HiddenDefaultCmd = true

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default: svg-a4-batch.yaml in . or ~/.config/svg-a4-batch)")
	pf.String("jobs", "", "YAML job file replacing the built-in inputs")
	pf.StringSlice("python", nil, "interpreter candidates to probe, in order (default python3,python; python,py on Windows)")
	pf.String("requirements", types.DefaultRequirements, "dependency manifest passed to pip")
	pf.String("tool", types.DefaultTool, "conversion script run for each input")
	pf.String("pause", string(types.PauseAuto), "wait for Enter after errors: auto (Windows only), always, never")
	pf.String("history", "", "SQLite file to record runs in (empty disables)")
	pf.String("log-file", "", "append a JSON run log to this file")
	pf.String("secrets-dir", ".secrets", "directory holding pip-index-url and related secrets")
	pf.BoolP("verbose", "v", false, "write the run log to stderr")

	for key, flag := range map[string]string{
		"jobs_file":    "jobs",
		"interpreters": "python",
		"requirements": "requirements",
		"tool":         "tool",
		"pause":        "pause",
		"history":      "history",
		"log_file":     "log-file",
		"secrets_dir":  "secrets-dir",
		"verbose":      "verbose",
	} {
		_ = c.v.BindPFlag(key, pf.Lookup(flag))
	}

	root.AddCommand(
		newCheckCmd(c),
		newJobsCmd(c),
		newHistoryCmd(c),
		newVersionCmd(),
	)
	return root
}

func (c *cli) initConfig(cfgFile string, stderr io.Writer) {
	if cfgFile != "" {
		c.v.SetConfigFile(cfgFile)
	} else {
		c.v.SetConfigName(appName)
		c.v.SetConfigType("yaml")
		c.v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			c.v.AddConfigPath(filepath.Join(home, ".config", appName))
		}
	}

	c.v.SetEnvPrefix(envPrefix)
	c.v.AutomaticEnv()

	if err := c.v.ReadInConfig(); err == nil {
		fmt.Fprintln(stderr, "Using config file:", c.v.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(stderr, "warning: could not read config file %s: %v\n", cfgFile, err)
	}
}

func (c *cli) loadSecrets(stderr io.Writer) error {
	s, err := secrets.Load(c.v.GetString("secrets_dir"), stderr)
	if err != nil {
		return err
	}
	c.secrets = s
	if len(s) > 0 {
		keys := make([]string, 0, len(s))
		for k := range s {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintf(stderr, "Loaded secrets: %v\n", keys)
	}
	return nil
}
