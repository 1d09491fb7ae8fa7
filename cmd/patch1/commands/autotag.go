// ABOUTME: CLI command for rule-based tag inference from patch names
// ABOUTME: Uses the built-in rule set or a user-supplied JSON rule file
package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thomashuss/patch1/internal/library"
)

var (
	autotagField string
	autotagRules string
)

// NewAutotagCmd creates the autotag command.
func NewAutotagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autotag",
		Short: "Tag patches whose names match known naming conventions",
		Long: `Tag patches whose names match known naming conventions.

Runs a set of tag-name to regular-expression rules against every patch and
adds the tag wherever the expression matches, case-insensitively. Existing
tags are never removed. The built-in rules cover common community naming
conventions (Bass, Lead, Pad, ...); --rules loads a JSON object mapping tag
names to expressions instead.

Examples:
  patch1 autotag
  patch1 autotag --rules my-rules.json
  patch1 autotag --field bank`,
		Args: cobra.NoArgs,
		RunE: runAutotag,
	}

	cmd.Flags().StringVar(&autotagField, "field", "name", "Field the rules are matched against")
	cmd.Flags().StringVar(&autotagRules, "rules", "", "JSON file of tag-name to regexp rules")

	return cmd
}

func runAutotag(cmd *cobra.Command, args []string) error {
	rules := library.DefaultNameRules
	if autotagRules != "" {
		data, err := os.ReadFile(autotagRules)
		if err != nil {
			return fmt.Errorf("reading rules file: %w", err)
		}
		rules = make(map[string]string)
		if err := json.Unmarshal(data, &rules); err != nil {
			return fmt.Errorf("parsing rules file: %w", err)
		}
	}

	db, cfg, err := openLibrary()
	if err != nil {
		return err
	}

	added, err := db.TagsFromRules(rules, autotagField)
	if err != nil {
		return fmt.Errorf("applying rules: %w", err)
	}
	if err := db.Save(cfg.DBPath); err != nil {
		return err
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Added %d tag assignments across %d patches\n", added, db.Len())
	}
	return nil
}
