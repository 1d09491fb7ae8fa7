// ABOUTME: CLI command to search patches
// ABOUTME: Supports substring, exact, regex, and tag-superset search
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thomashuss/patch1/internal/library"
)

var (
	searchField string
	searchExact bool
	searchRegex bool
	searchTags  []string
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search patches",
		Long: `Search patches by name, another field, or tags.

The default is a case-insensitive substring match on the display name.
With --tags, finds patches carrying every listed tag instead; no query
is needed and an empty list matches all patches.

Examples:
  patch1 search "bass"
  patch1 search --field bank "factory"
  patch1 search --regex "^(sub|deep) ?bass"
  patch1 search --tags Bass,Lead`,
		Args: cobra.MaximumNArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().StringVar(&searchField, "field", "name", "Field to search: name, bank, tags, color, ver")
	cmd.Flags().BoolVar(&searchExact, "exact", false, "Require a whole-value match")
	cmd.Flags().BoolVar(&searchRegex, "regex", false, "Treat the query as a regular expression")
	cmd.Flags().StringSliceVar(&searchTags, "tags", nil, "Find patches tagged with every listed tag")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	db, _, err := openLibrary()
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("tags") {
		results, err := db.FindByTags(searchTags)
		if err != nil {
			return fmt.Errorf("searching patches: %w", err)
		}
		return printResults(cmd, results)
	}

	if len(args) == 0 {
		return fmt.Errorf("a query is required unless searching with --tags")
	}
	if searchExact && searchRegex {
		return fmt.Errorf("--exact and --regex are mutually exclusive")
	}

	mode := library.MatchSubstring
	if searchExact {
		mode = library.MatchExact
	} else if searchRegex {
		mode = library.MatchPattern
	}

	results, err := db.FindByValue(args[0], searchField, mode)
	if err != nil {
		return fmt.Errorf("searching patches: %w", err)
	}
	return printResults(cmd, results)
}
