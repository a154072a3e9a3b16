package tools

import (
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthTool_Execute(t *testing.T) {
	mcpServer := server.NewMCPServer("test", "1.0.0", server.WithToolCapabilities(true))
	RegisterHealthTool(mcpServer, HealthInfo{Version: "1.2.3", LLMEnabled: true, Store: "postgres"})

	resp := callTool(t, mcpServer, "health", nil)

	require.False(t, resp.IsError)
	var got healthResult
	require.NoError(t, json.Unmarshal([]byte(resp.Text), &got))
	assert.Equal(t, healthResult{Status: "ok", Version: "1.2.3", LLMEnabled: true, Store: "postgres"}, got)
}

func TestHealthTool_Listed(t *testing.T) {
	mcpServer := server.NewMCPServer("test", "1.0.0", server.WithToolCapabilities(true))
	RegisterHealthTool(mcpServer, HealthInfo{})

	assert.Contains(t, listTools(t, mcpServer), "health")
}
