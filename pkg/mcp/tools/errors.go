package tools

import (
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ekaya-inc/ekaya-staffing/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-staffing/pkg/llm"
	"github.com/ekaya-inc/ekaya-staffing/pkg/services"
)

// ErrorResponse represents a structured error in tool results.
// It is returned as tool content so the calling model can read it and
// correct its next call.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// NewErrorResult creates a tool result containing a structured error.
// Use this for errors the caller can act on (bad arguments, no proposal to
// modify). System failures such as an unreachable roster store should still
// return Go errors.
func NewErrorResult(code, message string) *mcp.CallToolResult {
	return NewErrorResultWithDetails(code, message, nil)
}

// NewErrorResultWithDetails creates an error result with additional context.
func NewErrorResultWithDetails(code, message string, details any) *mcp.CallToolResult {
	resp := ErrorResponse{
		Error:   true,
		Code:    code,
		Message: message,
		Details: details,
	}
	jsonBytes, _ := json.Marshal(resp)
	result := mcp.NewToolResultText(string(jsonBytes))
	result.IsError = true
	return result
}

// serviceErrorResult converts a service error into a tool result when the
// caller can act on it. It returns nil for system failures, which the caller
// should surface as a Go error instead.
func serviceErrorResult(err error) *mcp.CallToolResult {
	var parseErr *llm.ParseError
	switch {
	case errors.Is(err, apperrors.ErrInvalidDemand):
		return NewErrorResult("invalid_demand", err.Error())
	case errors.Is(err, apperrors.ErrNoActiveProposal):
		return NewErrorResult("no_active_proposal", "there is no proposal to modify; call generate_allocation first")
	case errors.Is(err, services.ErrDemandParserUnavailable):
		return NewErrorResult("llm_not_configured", "natural-language requests need a completion service; send a structured demand to generate_allocation instead")
	case errors.As(err, &parseErr):
		return NewErrorResultWithDetails("llm_invalid_response", "the completion service returned an unusable answer; rephrase and retry", map[string]any{"reason": parseErr.Reason})
	}
	return nil
}

// IsInputError reports whether err was caused by the caller's input rather
// than a server failure. Input errors are logged at DEBUG level.
func IsInputError(err error) bool {
	return err != nil && serviceErrorResult(err) != nil
}
