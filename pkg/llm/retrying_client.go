package llm

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-staffing/pkg/logging"
	"github.com/ekaya-inc/ekaya-staffing/pkg/retry"
)

// RetryingClient decorates a TextCompleter with the upstream failure policy:
// retryable errors (rate limiting, overload, 5xx, dropped connections) are
// retried with bounded backoff; everything else returns immediately. An
// optional circuit breaker fails calls fast once the provider looks down.
type RetryingClient struct {
	inner   TextCompleter
	retry   *retry.Config
	breaker *CircuitBreaker
	logger  *zap.Logger
}

// NewRetryingClient wraps inner. A nil retry config uses retry.DefaultConfig;
// a nil breaker disables circuit breaking.
func NewRetryingClient(inner TextCompleter, retryCfg *retry.Config, breaker *CircuitBreaker, logger *zap.Logger) *RetryingClient {
	if retryCfg == nil {
		retryCfg = retry.DefaultConfig()
	}
	return &RetryingClient{
		inner:   inner,
		retry:   retryCfg,
		breaker: breaker,
		logger:  logger.Named("llm.retry"),
	}
}

// Complete implements TextCompleter.
func (c *RetryingClient) Complete(ctx context.Context, prompt string) (string, error) {
	if c.breaker != nil {
		if err := c.breaker.Allow(); err != nil {
			c.logger.Warn("Circuit breaker rejected completion call",
				zap.String("circuit_state", c.breaker.State().String()))
			return "", err
		}
	}

	attempt := 0
	out, err := retry.DoWithResultIfRetryable(ctx, c.retry, func() (string, error) {
		attempt++
		resp, callErr := c.inner.Complete(ctx, prompt)
		if callErr == nil {
			return resp, nil
		}
		classified := ClassifyError(callErr)
		if classified.Retryable {
			c.logger.Warn("Completion call failed, retrying",
				zap.Int("attempt", attempt),
				zap.String("error_type", string(classified.Type)),
				zap.String("error", logging.SanitizeError(callErr)))
		}
		return "", classified
	})

	if c.breaker != nil && !errors.Is(err, context.Canceled) {
		c.breaker.Record(err)
	}
	if err != nil {
		c.logger.Error("Completion call failed",
			zap.Int("attempts", attempt),
			zap.String("error", logging.SanitizeError(err)))
		return "", err
	}
	return out, nil
}
