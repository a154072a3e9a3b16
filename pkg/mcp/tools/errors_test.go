package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/ekaya-staffing/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-staffing/pkg/llm"
	"github.com/ekaya-inc/ekaya-staffing/pkg/services"
)

func decodeErrorResult(t *testing.T, result *mcp.CallToolResult) ErrorResponse {
	t.Helper()
	require.NotNil(t, result)
	require.True(t, result.IsError)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(text.Text), &resp))
	return resp
}

func TestNewErrorResult(t *testing.T) {
	resp := decodeErrorResult(t, NewErrorResult("invalid_parameters", "parameter 'demand' is required"))

	assert.True(t, resp.Error)
	assert.Equal(t, "invalid_parameters", resp.Code)
	assert.Equal(t, "parameter 'demand' is required", resp.Message)
	assert.Nil(t, resp.Details)
}

func TestNewErrorResultWithDetails(t *testing.T) {
	resp := decodeErrorResult(t, NewErrorResultWithDetails("llm_invalid_response", "bad", map[string]any{"reason": "missing rankings array"}))

	assert.Equal(t, map[string]any{"reason": "missing rankings array"}, resp.Details)
}

func TestServiceErrorResult(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"invalid demand", fmt.Errorf("%w: no roles", apperrors.ErrInvalidDemand), "invalid_demand"},
		{"no proposal", fmt.Errorf("replace: %w", apperrors.ErrNoActiveProposal), "no_active_proposal"},
		{"parser unavailable", services.ErrDemandParserUnavailable, "llm_not_configured"},
		{"unparseable answer", fmt.Errorf("parse demand: %w", llm.NewParseError("no JSON object", "hello", nil)), "llm_invalid_response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := decodeErrorResult(t, serviceErrorResult(tt.err))
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.True(t, IsInputError(tt.err))
		})
	}

	t.Run("system failures are not tool results", func(t *testing.T) {
		err := fmt.Errorf("load employees: %w", apperrors.ErrDataSourceUnavailable)
		assert.Nil(t, serviceErrorResult(err))
		assert.False(t, IsInputError(err))
		assert.False(t, IsInputError(errors.New("boom")))
		assert.False(t, IsInputError(nil))
	})
}
