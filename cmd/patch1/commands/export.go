// ABOUTME: CLI command to export one patch to a file
// ABOUTME: Writes native .sy1 text or an FXP preset container
package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/thomashuss/patch1/internal/library"
)

var exportKind string

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <index> <path>",
		Short: "Export a patch to a file",
		Long: `Export one patch to a file.

Kinds:
  native      the synthesizer's own text patch format
  fxp-chunk   FXP preset container holding the plugin's opaque chunk
  fxp-params  FXP container holding plain 0-1 floats (lossy; last resort)

When path is a directory the file name is synthesized from the patch.

Examples:
  patch1 export 42 out.fxp
  patch1 export 42 --kind native ~/synth1/banks/user/
  patch1 export 42 --kind fxp-params out.fxp`,
		Args: cobra.ExactArgs(2),
		RunE: runExport,
	}

	cmd.Flags().StringVar(&exportKind, "kind", string(library.ExportFXPChunk), "Export kind: native, fxp-chunk, or fxp-params")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("patch index %q is not a number", args[0])
	}

	db, _, err := openLibrary()
	if err != nil {
		return err
	}

	written, err := db.WritePatch(index, library.ExportKind(exportKind), args[1])
	if err != nil {
		return fmt.Errorf("exporting patch %d: %w", index, err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", written)
	}
	return nil
}
