package llm

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-staffing/pkg/retry"
)

// Supported providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// NewTextCompleter builds the provider client named by cfg.Provider and wraps it
// in a RetryingClient. Callers get a TextCompleter that already applies the
// retry policy and circuit breaker.
func NewTextCompleter(cfg *Config, retryCfg *retry.Config, breaker *CircuitBreaker, logger *zap.Logger) (TextCompleter, error) {
	var (
		inner TextCompleter
		err   error
	)

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderOpenAI:
		inner, err = NewClient(cfg, logger)
	case ProviderAnthropic:
		inner, err = NewAnthropicClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s client: %w", cfg.Provider, err)
	}

	return NewRetryingClient(inner, retryCfg, breaker, logger), nil
}
