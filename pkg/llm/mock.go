package llm

import (
	"context"
	"sync"
)

// MockTextCompleter is a configurable mock for testing completion callers.
// Set CompleteFunc to control behavior in tests.
type MockTextCompleter struct {
	// CompleteFunc is called when Complete is invoked.
	// If nil, returns "{}" and nil error.
	CompleteFunc func(ctx context.Context, prompt string) (string, error)

	mu      sync.Mutex
	prompts []string
}

// NewMockTextCompleter creates a mock that answers every prompt with response.
func NewMockTextCompleter(response string) *MockTextCompleter {
	return &MockTextCompleter{
		CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
			return response, nil
		},
	}
}

// NewFailingTextCompleter creates a mock whose every call returns err.
func NewFailingTextCompleter(err error) *MockTextCompleter {
	return &MockTextCompleter{
		CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
			return "", err
		},
	}
}

// Complete implements TextCompleter.
func (m *MockTextCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt)
	}
	return "{}", nil
}

// Calls returns how many times Complete was invoked.
func (m *MockTextCompleter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// Prompts returns a copy of every prompt received, in order.
func (m *MockTextCompleter) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Ensure MockTextCompleter implements TextCompleter at compile time.
var _ TextCompleter = (*MockTextCompleter)(nil)
