// ABOUTME: CLI command to view or change one patch's tags
// ABOUTME: Tags are added by default; --replace swaps the whole set
package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var tagReplace bool

// NewTagCmd creates the tag command.
func NewTagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag <index> [tag]...",
		Short: "Show or change a patch's tags",
		Long: `Show or change the tags of one patch.

With no tags given, prints the patch's current tag set. Given tags are
added to the existing set unless --replace is set. The index is the stable
identifier printed by search.

Examples:
  patch1 tag 42
  patch1 tag 42 Bass Sub
  patch1 tag 42 --replace Lead`,
		Args: cobra.MinimumNArgs(1),
		RunE: runTag,
	}

	cmd.Flags().BoolVar(&tagReplace, "replace", false, "Replace existing tags instead of adding")

	return cmd
}

func runTag(cmd *cobra.Command, args []string) error {
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("patch index %q is not a number", args[0])
	}

	db, cfg, err := openLibrary()
	if err != nil {
		return err
	}

	if len(args) == 1 {
		tags, err := db.GetTags(index)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(tags, ", "))
		return nil
	}

	if err := db.ChangeTags(index, args[1:], tagReplace); err != nil {
		return fmt.Errorf("changing tags: %w", err)
	}
	if err := db.Save(cfg.DBPath); err != nil {
		return err
	}

	if !quiet {
		tags, _ := db.GetTags(index)
		fmt.Fprintf(cmd.OutOrStdout(), "Patch %d tags: %s\n", index, strings.Join(tags, ", "))
	}
	return nil
}
