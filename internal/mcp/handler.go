package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/tendant/demo-content/pkg/democontent"
)

// Handler exposes demo-content import and removal as MCP tools
type Handler struct {
	service      democontent.Service
	capabilities []string
}

// NewHandler creates a Handler. Tool calls act with the given capabilities,
// since an MCP client carries no site identity of its own.
func NewHandler(service democontent.Service, capabilities ...string) *Handler {
	return &Handler{
		service:      service,
		capabilities: capabilities,
	}
}

// RegisterTools registers the demo-content tools with the MCP server
func (h *Handler) RegisterTools(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("import_demo_content",
		mcp.WithDescription("Create demo pages, posts, menus, and images. Safe to run multiple times; it will not duplicate content."),
		mcp.WithBoolean("json", mcp.Description("Return the full import result as JSON instead of a summary")),
	), h.handleImport)

	s.AddTool(mcp.NewTool("remove_demo_content",
		mcp.WithDescription("Permanently delete the demo pages, posts, attachments, and menu created by import_demo_content"),
	), h.handleRemove)
}

func (h *Handler) handleImport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = democontent.WithCapabilities(ctx, h.capabilities...)

	result, err := h.service.RunImport(ctx)
	if err != nil {
		return mcp.NewToolResultError(democontent.ErrorNotice(err)), nil
	}

	if asJSON, ok := request.GetArguments()["json"].(bool); ok && asJSON {
		data, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("failed to encode import result: %w", err)
		}
		return mcp.NewToolResultText(string(data)), nil
	}

	return mcp.NewToolResultText(democontent.ImportNotice(result)), nil
}

func (h *Handler) handleRemove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = democontent.WithCapabilities(ctx, h.capabilities...)
	removed := h.service.RemoveDemoContent(ctx)
	return mcp.NewToolResultText(democontent.RemovalNotice(removed)), nil
}
