package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func jsonHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	})
}

func serveMCP(t *testing.T, handler http.Handler, reqBody string) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	wrapped := MCPRequestLogger(zap.New(core))(handler)
	req := httptest.NewRequest(http.MethodPost, "/mcp", bytes.NewBufferString(reqBody))
	wrapped.ServeHTTP(httptest.NewRecorder(), req)
	return logs
}

func TestMCPRequestLogger(t *testing.T) {
	t.Run("logs successful tool call", func(t *testing.T) {
		logs := serveMCP(t,
			jsonHandler(`{"jsonrpc":"2.0","id":1,"result":{"content":[{"type":"text","text":"{}"}]}}`),
			`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"generate_allocation","arguments":{"demand":{"projectName":"Payments","roles":[]}}}}`)

		require.Equal(t, 2, logs.Len(), "Should log request and response")
		requestLog := logs.All()[0]
		assert.Equal(t, "MCP request", requestLog.Message)
		assert.Equal(t, "tools/call", requestLog.ContextMap()["method"])
		assert.Equal(t, "generate_allocation", requestLog.ContextMap()["tool"])
		assert.Equal(t, map[string]any{"demand": "{2 fields}"}, requestLog.ContextMap()["arguments"])

		responseLog := logs.All()[1]
		assert.Equal(t, "MCP response success", responseLog.Message)
		assert.Equal(t, "generate_allocation", responseLog.ContextMap()["tool"])
	})

	t.Run("logs JSON-RPC error", func(t *testing.T) {
		logs := serveMCP(t,
			jsonHandler(`{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"tool not found"}}`),
			`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"nope"}}`)

		require.Equal(t, 2, logs.Len())
		responseLog := logs.All()[1]
		assert.Equal(t, "MCP response error", responseLog.Message)
		assert.Equal(t, int64(-32602), responseLog.ContextMap()["error_code"])
		assert.Equal(t, "tool not found", responseLog.ContextMap()["error_message"])
	})

	t.Run("logs tool-level error result", func(t *testing.T) {
		logs := serveMCP(t,
			jsonHandler(`{"jsonrpc":"2.0","id":1,"result":{"isError":true,"content":[{"type":"text","text":"{\"error\":true}"}]}}`),
			`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"process_instruction","arguments":{"message":"replace Bob"}}}`)

		require.Equal(t, 2, logs.Len())
		assert.Equal(t, "MCP tool error", logs.All()[1].Message)
	})

	t.Run("tolerates non-JSON request and response", func(t *testing.T) {
		called := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			_, _ = w.Write([]byte("event: message\ndata: {}\n\n"))
		})

		logs := serveMCP(t, handler, "not json")

		assert.True(t, called)
		require.Equal(t, 2, logs.Len())
		assert.Equal(t, "MCP response not JSON", logs.All()[1].Message)
	})

	t.Run("request body is still readable downstream", func(t *testing.T) {
		reqBody := `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`
		var seen string
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var buf bytes.Buffer
			_, _ = buf.ReadFrom(r.Body)
			seen = buf.String()
		})

		serveMCP(t, handler, reqBody)

		assert.Equal(t, reqBody, seen)
	})

	t.Run("nil logger passes through", func(t *testing.T) {
		handler := jsonHandler(`{}`)
		assert.Equal(t, handler, MCPRequestLogger(nil)(handler))
	})
}

func TestSummarizeArguments(t *testing.T) {
	long := strings.Repeat("x", 250)

	got := summarizeArguments(map[string]any{
		"message":    long,
		"session_id": "s1",
		"api_key":    "sk-123",
		"authToken":  "abc",
		"proposal":   map[string]any{"projectName": "Payments"},
		"history":    []any{"a", "b", "c"},
		"count":      float64(2),
	})

	assert.Equal(t, strings.Repeat("x", 200)+"...", got["message"])
	assert.Equal(t, "s1", got["session_id"])
	assert.Equal(t, "[REDACTED]", got["api_key"])
	assert.Equal(t, "[REDACTED]", got["authToken"])
	assert.Equal(t, "{1 fields}", got["proposal"])
	assert.Equal(t, "[3 items]", got["history"])
	assert.Equal(t, float64(2), got["count"])
	assert.Nil(t, summarizeArguments(nil))
}
