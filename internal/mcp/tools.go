// ABOUTME: MCP tool definitions and registration for the patch library server
// ABOUTME: Exposes the database's search, tagging, and export operations as tools
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/thomashuss/patch1/internal/library"
)

// RegisterTools registers all MCP tools with the server.
func RegisterTools(server *mcpserver.MCPServer, db *library.Database, dbPath string) *Handlers {
	handlers := &Handlers{db: db, dbPath: dbPath}

	server.AddTool(mcp.Tool{
		Name:        "search_patches",
		Description: "Search patches by a metadata field. Returns matching patches with their stable index, name, bank, metadata, and tags.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query",
				},
				"field": map[string]interface{}{
					"type":        "string",
					"description": "Field to search: name, bank, tags, or a schema metadata field (default: name)",
					"default":     "name",
				},
				"mode": map[string]interface{}{
					"type":        "string",
					"description": "Match mode: substring (default), exact, or regex",
					"default":     "substring",
				},
			},
			Required: []string{"query"},
		},
	}, handlers.SearchPatches)

	server.AddTool(mcp.Tool{
		Name:        "find_by_tags",
		Description: "Find patches tagged with at least every given tag. An empty tag list returns all patches.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"tags": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Tags a patch must all carry",
				},
			},
			Required: []string{"tags"},
		},
	}, handlers.FindByTags)

	server.AddTool(mcp.Tool{
		Name:        "tag_patch",
		Description: "Set or add tags on one patch, identified by its stable index from a previous search.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"index": map[string]interface{}{
					"type":        "number",
					"description": "Patch index",
				},
				"tags": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Tags to apply",
				},
				"replace": map[string]interface{}{
					"type":        "boolean",
					"description": "Replace existing tags instead of adding (default: false)",
					"default":     false,
				},
			},
			Required: []string{"index", "tags"},
		},
	}, handlers.TagPatch)

	server.AddTool(mcp.Tool{
		Name:        "list_library",
		Description: "List the library's banks, tags, and patch count.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.ListLibrary)

	server.AddTool(mcp.Tool{
		Name:        "export_patch",
		Description: "Export one patch to a file: the synth's native format, or an FXP preset container holding float parameters or the vendor chunk.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"index": map[string]interface{}{
					"type":        "number",
					"description": "Patch index",
				},
				"kind": map[string]interface{}{
					"type":        "string",
					"description": "Export kind: native, fxp-params, or fxp-chunk (default: fxp-chunk)",
					"default":     "fxp-chunk",
				},
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Destination file or directory",
				},
			},
			Required: []string{"index", "path"},
		},
	}, handlers.ExportPatch)

	return handlers
}
