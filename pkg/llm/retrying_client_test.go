package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-staffing/pkg/retry"
)

func fastRetry() *retry.Config {
	return &retry.Config{MaxRetries: 2, InitialDelay: time.Millisecond, Backoff: retry.BackoffLinear}
}

func TestRetryingClient_RetriesRateLimitThenSucceeds(t *testing.T) {
	calls := 0
	inner := &MockTextCompleter{CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("status code: 429, rate limit")
		}
		return "ok", nil
	}}

	c := NewRetryingClient(inner, fastRetry(), nil, zap.NewNop())
	out, err := c.Complete(context.Background(), "rank these")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 3, inner.Calls())
}

func TestRetryingClient_GivesUpAfterTwoRetries(t *testing.T) {
	inner := NewFailingTextCompleter(errors.New("status code: 503, service unavailable"))

	c := NewRetryingClient(inner, fastRetry(), nil, zap.NewNop())
	_, err := c.Complete(context.Background(), "p")
	require.Error(t, err)
	assert.Equal(t, 3, inner.Calls(), "initial attempt plus two retries")
	assert.True(t, IsRetryable(err))
}

func TestRetryingClient_DoesNotRetryPermanentErrors(t *testing.T) {
	inner := NewFailingTextCompleter(errors.New("status code: 401, invalid api key"))

	c := NewRetryingClient(inner, fastRetry(), nil, zap.NewNop())
	_, err := c.Complete(context.Background(), "p")
	require.Error(t, err)
	assert.Equal(t, 1, inner.Calls())

	var llmErr *Error
	require.True(t, errors.As(err, &llmErr))
	assert.Equal(t, ErrorTypeAuth, llmErr.Type)
}

func TestRetryingClient_CircuitBreakerFailsFast(t *testing.T) {
	inner := NewFailingTextCompleter(errors.New("status code: 401"))
	breaker := NewCircuitBreaker(CircuitBreakerConfig{Threshold: 2, ResetAfter: time.Hour})

	c := NewRetryingClient(inner, fastRetry(), breaker, zap.NewNop())
	for i := 0; i < 2; i++ {
		_, err := c.Complete(context.Background(), "p")
		require.Error(t, err)
	}
	assert.Equal(t, CircuitOpen, breaker.State())

	_, err := c.Complete(context.Background(), "p")
	require.Error(t, err)
	assert.Equal(t, 2, inner.Calls(), "open circuit must not reach the provider")
}

func TestNewTextCompleter_Providers(t *testing.T) {
	c, err := NewTextCompleter(&Config{Provider: "openai", Endpoint: "http://localhost:8000/v1", Model: "m"}, nil, nil, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &RetryingClient{}, c)

	_, err = NewTextCompleter(&Config{Provider: "anthropic", Model: "claude"}, nil, nil, zap.NewNop())
	assert.Error(t, err, "anthropic requires an api key")

	c, err = NewTextCompleter(&Config{Provider: "anthropic", Model: "claude", APIKey: "k"}, nil, nil, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, c)

	_, err = NewTextCompleter(&Config{Provider: "carrier-pigeon"}, nil, nil, zap.NewNop())
	assert.Error(t, err)
}
