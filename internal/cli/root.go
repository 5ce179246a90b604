// Package cli provides the command-line interface for postersort.
package cli

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/postersort/internal/config"
	"github.com/jmylchreest/postersort/internal/logging"
	"github.com/jmylchreest/postersort/internal/version"
)

// app holds state shared by every subcommand of one invocation.
type app struct {
	configPath string
	verbose    bool
	quiet      bool
	logJSON    bool

	cfg    config.Config
	logger hclog.Logger
}

// NewRootCmd builds the postersort command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "postersort",
		Short: "Sort a poster catalog by colour",
		Long: `postersort extracts a representative colour from each poster in a catalog
and reorders the catalog into a rainbow: coloured posters by hue, then white,
gray, black, and finally rows without a usable poster.

Several extraction strategies are available; each writes its own sorted table.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&a.logJSON, "log-json", false, "emit logs as JSON")
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/postersort/config.toml)")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(newSortCmd(a))
	rootCmd.AddCommand(newClassifyCmd(a))
	rootCmd.AddCommand(newStrategiesCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// init loads configuration and builds the logger.
func (a *app) init(cmd *cobra.Command) error {
	a.logger = logging.New(logging.Options{
		Verbose: a.verbose,
		Quiet:   a.quiet,
		JSON:    a.logJSON,
		Output:  cmd.ErrOrStderr(),
	})

	cfg, path, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if path != "" {
		a.logger.Debug("loaded configuration", "path", path)
	}
	a.cfg = cfg
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		// Version needs no configuration.
		PersistentPreRun: func(*cobra.Command, []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
