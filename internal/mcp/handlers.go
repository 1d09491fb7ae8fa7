// ABOUTME: MCP tool handler implementations for the patch library server
// ABOUTME: Mutating tools rewrite the persisted database immediately
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/thomashuss/patch1/internal/library"
	"github.com/thomashuss/patch1/internal/models"
)

// Handlers contains the handler functions for all MCP tools.
type Handlers struct {
	db     *library.Database
	dbPath string
}

// SearchPatches handles the search_patches tool.
func (h *Handlers) SearchPatches(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}
	field := request.GetString("field", "name")

	var mode library.SearchMode
	switch m := request.GetString("mode", "substring"); m {
	case "substring":
		mode = library.MatchSubstring
	case "exact":
		mode = library.MatchExact
	case "regex":
		mode = library.MatchPattern
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown match mode %q", m)), nil
	}

	results, err := h.db.FindByValue(query, field, mode)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	return infoResult(results)
}

// FindByTags handles the find_by_tags tool.
func (h *Handlers) FindByTags(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tags, err := stringArrayArg(request, "tags")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := h.db.FindByTags(tags)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	return infoResult(results)
}

// TagPatch handles the tag_patch tool.
func (h *Handlers) TagPatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, err := request.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError("index argument is required and must be a number"), nil
	}
	tags, err := stringArrayArg(request, "tags")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	replace := request.GetBool("replace", false)

	if err := h.db.ChangeTags(index, tags, replace); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("tagging failed: %v", err)), nil
	}
	if err := h.db.Save(h.dbPath); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("saving database: %v", err)), nil
	}

	current, _ := h.db.GetTags(index)
	return jsonResult(map[string]interface{}{
		"index": index,
		"tags":  current,
	})
}

// ListLibrary handles the list_library tool.
func (h *Handlers) ListLibrary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]interface{}{
		"synth":   h.db.Engine().Definition().SynthName,
		"patches": h.db.Len(),
		"banks":   h.db.Banks(),
		"tags":    h.db.Tags(),
	})
}

// ExportPatch handles the export_patch tool.
func (h *Handlers) ExportPatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, err := request.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError("index argument is required and must be a number"), nil
	}
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path argument is required and must be a string"), nil
	}
	kind := library.ExportKind(request.GetString("kind", string(library.ExportFXPChunk)))

	written, err := h.db.WritePatch(index, kind, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("export failed: %v", err)), nil
	}
	return jsonResult(map[string]interface{}{
		"index": index,
		"kind":  string(kind),
		"path":  written,
	})
}

func infoResult(results []models.PatchInfo) (*mcp.CallToolResult, error) {
	if results == nil {
		results = []models.PatchInfo{}
	}
	return jsonResult(map[string]interface{}{
		"count":   len(results),
		"patches": results,
	})
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func stringArrayArg(request mcp.CallToolRequest, name string) ([]string, error) {
	raw, ok := request.GetArguments()[name]
	if !ok {
		return nil, fmt.Errorf("%s argument is required", name)
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s argument must be an array of strings", name)
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		s, ok := it.(string)
		if !ok {
			return nil, fmt.Errorf("%s argument must be an array of strings", name)
		}
		out = append(out, s)
	}
	return out, nil
}
