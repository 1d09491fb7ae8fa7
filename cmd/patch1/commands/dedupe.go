// ABOUTME: CLI command to remove duplicate patches
// ABOUTME: Patches with identical parameter vectors collapse to one entry
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewDedupeCmd creates the dedupe command.
func NewDedupeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dedupe",
		Short: "Remove patches with identical parameters",
		Long: `Remove patches with identical parameters.

Community banks repackage the same presets endlessly; this collapses every
group of patches sharing an exact parameter vector to one entry, which
keeps the union of the group's tags.`,
		Args: cobra.NoArgs,
		RunE: runDedupe,
	}
}

func runDedupe(cmd *cobra.Command, args []string) error {
	db, cfg, err := openLibrary()
	if err != nil {
		return err
	}

	removed := db.RemoveDuplicates()
	if err := db.Save(cfg.DBPath); err != nil {
		return err
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d duplicates; %d patches remain\n", removed, db.Len())
	}
	return nil
}
