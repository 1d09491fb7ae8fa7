// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Enables LLM agents to search, tag, and export patches via stdio
package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/thomashuss/patch1/internal/mcp"
)

// NewMCPCmd creates the MCP command.
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents.

Runs Patch1 as an MCP (Model Context Protocol) server over stdio, exposing
patch search, tagging, and export as tools. Requires a bootstrapped
database.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by an MCP client)
  patch1 mcp

  # Configure in an MCP client config:
  # {
  #   "mcpServers": {
  #     "patch1": {
  #       "command": "patch1",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server.
func runMCP(cmd *cobra.Command, args []string) error {
	db, cfg, err := openLibrary()
	if err != nil {
		return fmt.Errorf("failed to open library: %w", err)
	}

	server := mcpserver.NewMCPServer(
		"Patch1 Library",
		versionInfo.Version,
	)
	mcp.RegisterTools(server, db, cfg.DBPath)

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		log.Println("Patch1 MCP server starting on stdio...")
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		// Mutating tools save as they go; nothing to flush here.
		if !quiet {
			log.Println("Shutdown complete")
		}
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
