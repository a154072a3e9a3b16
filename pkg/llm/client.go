package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// DefaultSystemMessage frames every completion as staffing work.
const DefaultSystemMessage = "You are a resource-allocation assistant for a software consultancy. " +
	"Follow the requested output format exactly. When asked for JSON, return only JSON."

// Config holds configuration for creating a provider client.
type Config struct {
	Provider      string        // "openai" (any OpenAI-compatible endpoint) or "anthropic"
	Endpoint      string        // Base URL, e.g. "https://api.openai.com/v1"
	Model         string        // Model name
	APIKey        string        // Optional for local endpoints
	Temperature   float64       // Sampling temperature
	MaxTokens     int           // Response budget (anthropic requires one)
	Timeout       time.Duration // Per-call timeout; zero means none
	SystemMessage string        // Defaults to DefaultSystemMessage
}

func (c *Config) systemMessage() string {
	if c.SystemMessage == "" {
		return DefaultSystemMessage
	}
	return c.SystemMessage
}

// Client is an OpenAI-compatible TextCompleter.
type Client struct {
	client *openai.Client
	cfg    Config
	logger *zap.Logger
}

// NewClient creates a new OpenAI-compatible client.
func NewClient(cfg *Config, logger *zap.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")

	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		cfg:    *cfg,
		logger: logger.Named("llm.openai"),
	}, nil
}

// Complete sends prompt as the user turn and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	c.logger.Debug("Completion request",
		zap.String("model", c.cfg.Model),
		zap.Int("prompt_len", len(prompt)))

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.cfg.systemMessage()},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: float32(c.cfg.Temperature),
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		classified := ClassifyError(err)
		classified.Provider = "openai"
		classified.Model = c.cfg.Model
		c.logger.Warn("Completion request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.String("error_type", string(classified.Type)),
			zap.Bool("retryable", classified.Retryable))
		return "", classified
	}

	if len(resp.Choices) == 0 {
		return "", NewError(ErrorTypeServer, "no choices in response", false, nil)
	}

	c.logger.Debug("Completion request completed",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return resp.Choices[0].Message.Content, nil
}
