// ABOUTME: Root CLI command wiring global flags and subcommands
// ABOUTME: The CLI serializes database operations; one runs at a time
package commands

import (
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
	dbOverride   string
)

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patch1",
		Short: "Manage a local Synth1 patch library",
		Long: `Patch1 is a local patch-library manager for the Synth1 software synthesizer.

It ingests a directory tree of native .sy1 patch files into a searchable,
taggable database, and exports patches back to native files or FXP preset
containers.

Typical session:
  patch1 bootstrap ~/synth1/banks
  patch1 search "bass"
  patch1 tag 42 Bass Sub
  patch1 export 42 out.fxp`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "table", "Output format: table or json")
	cmd.PersistentFlags().StringVar(&dbOverride, "db", "", "Database file (overrides PATCH1_DB)")

	cmd.AddCommand(
		NewBootstrapCmd(),
		NewSearchCmd(),
		NewTagCmd(),
		NewAutotagCmd(),
		NewTrainCmd(),
		NewClassifyCmd(),
		NewDedupeCmd(),
		NewExportCmd(),
		NewInfoCmd(),
		NewMCPCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}
