// ABOUTME: CLI command to build the patch database from a directory tree
// ABOUTME: Replaces the persisted database with freshly parsed patch files
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var bootstrapJobs int

// NewBootstrapCmd creates the bootstrap command.
func NewBootstrapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bootstrap <dir>",
		Short: "Build the patch database from a directory of patch files",
		Long: `Build the patch database from a directory of patch files.

Recursively scans the directory for native Synth1 patch files (NNN.sy1),
parses them in parallel, and replaces the persisted database. Each patch's
bank is the name of its parent directory. Files that fail the format sanity
check are skipped.

Examples:
  patch1 bootstrap ~/synth1/banks
  patch1 bootstrap --jobs 2 /mnt/archive/zipmagic`,
		Args: cobra.ExactArgs(1),
		RunE: runBootstrap,
	}

	cmd.Flags().IntVar(&bootstrapJobs, "jobs", 0, "Parser worker count (default from PATCH1_JOBS)")

	return cmd
}

func runBootstrap(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if bootstrapJobs != 0 {
		if err := validatePositiveInt(bootstrapJobs, "jobs"); err != nil {
			return err
		}
		cfg.Jobs = bootstrapJobs
	}

	db, err := newDatabase(cfg)
	if err != nil {
		return err
	}

	if err := db.Bootstrap(args[0]); err != nil {
		return fmt.Errorf("bootstrapping library: %w", err)
	}
	if err := db.Save(cfg.DBPath); err != nil {
		return err
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d patches from %d banks into %s\n",
			db.Len(), len(db.Banks()), cfg.DBPath)
	}
	return nil
}
