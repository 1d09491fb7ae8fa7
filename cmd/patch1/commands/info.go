// ABOUTME: CLI command showing library statistics
// ABOUTME: Prints patch count plus the cached bank and tag lists
package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewInfoCmd creates the info command.
func NewInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show library statistics",
		Long:  `Show the loaded library's synth, patch count, banks, and tags.`,
		Args:  cobra.NoArgs,
		RunE:  runInfo,
	}
}

func runInfo(cmd *cobra.Command, args []string) error {
	db, cfg, err := openLibrary()
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		data, err := json.MarshalIndent(map[string]interface{}{
			"synth":   db.Engine().Definition().SynthName,
			"db":      cfg.DBPath,
			"patches": db.Len(),
			"banks":   db.Banks(),
			"tags":    db.Tags(),
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Synth:   %s\n", db.Engine().Definition().SynthName)
	fmt.Fprintf(out, "Store:   %s\n", cfg.DBPath)
	fmt.Fprintf(out, "Patches: %d\n", db.Len())
	fmt.Fprintf(out, "Banks:   %s\n", strings.Join(db.Banks(), ", "))
	fmt.Fprintf(out, "Tags:    %s\n", strings.Join(db.Tags(), ", "))
	return nil
}
