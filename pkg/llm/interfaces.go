// Package llm provides the text-completion collaborators the allocation engine
// depends on: provider clients, retry and circuit-breaking decorators, and
// lenient parsing of model output.
package llm

import (
	"context"
)

// TextCompleter is a single-shot, stateless text completion call. It may fail
// with a transport or rate-limit error; callers never assume structured output.
// Use this interface for dependency injection to enable mocking in tests.
type TextCompleter interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Ensure the provider clients implement TextCompleter at compile time.
var (
	_ TextCompleter = (*Client)(nil)
	_ TextCompleter = (*AnthropicClient)(nil)
	_ TextCompleter = (*RetryingClient)(nil)
)
