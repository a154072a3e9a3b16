package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// HealthInfo is what the health tool reports about the running service.
type HealthInfo struct {
	Version    string
	LLMEnabled bool
	Store      string
}

type healthResult struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	LLMEnabled bool   `json:"llm_enabled"`
	Store      string `json:"store"`
}

// RegisterHealthTool adds a health check tool to the MCP server.
func RegisterHealthTool(s *server.MCPServer, info HealthInfo) {
	tool := mcp.NewTool(
		"health",
		mcp.WithDescription("Returns server health status, version and whether AI ranking is available"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return toolResultJSON(healthResult{
			Status:     "ok",
			Version:    info.Version,
			LLMEnabled: info.LLMEnabled,
			Store:      info.Store,
		})
	})
}
