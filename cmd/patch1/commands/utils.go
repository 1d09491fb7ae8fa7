// ABOUTME: Shared utility functions for CLI commands
// ABOUTME: Library opening, saving, and tabular/JSON result output
package commands

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/thomashuss/patch1/internal/config"
	"github.com/thomashuss/patch1/internal/library"
	"github.com/thomashuss/patch1/internal/models"
	"github.com/thomashuss/patch1/internal/schema"
	"github.com/thomashuss/patch1/internal/synth1"
)

// loadConfig reads .env and the environment, applying the --db override.
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dbOverride != "" {
		cfg.DBPath = dbOverride
	}
	return cfg, nil
}

// newDatabase builds an empty database for the Synth1 schema.
func newDatabase(cfg *config.Config) (*library.Database, error) {
	engine, err := schema.NewEngine(synth1.New())
	if err != nil {
		return nil, fmt.Errorf("building schema engine: %w", err)
	}
	db := library.New(engine)
	db.SetJobs(cfg.Jobs)
	return db, nil
}

// openLibrary loads the persisted database from the configured path.
func openLibrary() (*library.Database, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	db, err := newDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Load(cfg.DBPath); err != nil {
		return nil, nil, fmt.Errorf("loading %s: %w (run bootstrap first?)", cfg.DBPath, err)
	}
	return db, cfg, nil
}

// printResults writes a metadata result set as a table or JSON.
func printResults(cmd *cobra.Command, results []models.PatchInfo) error {
	if outputFormat == "json" {
		if results == nil {
			results = []models.PatchInfo{}
		}
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
		return nil
	}

	if len(results) == 0 {
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "No patches found")
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "INDEX\tNAME\tBANK\tTAGS")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.Index, truncate(r.Name, 40), truncate(r.Bank, 24), strings.Join(r.Tags, ", "))
	}
	return w.Flush()
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return string(runes[:maxLen-3]) + "..."
}

// validatePositiveInt returns error if n is not positive
func validatePositiveInt(n int, name string) error {
	if n <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, n)
	}
	return nil
}
