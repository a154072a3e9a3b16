package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(&Config{Model: "m"}, zap.NewNop())
	assert.ErrorContains(t, err, "endpoint is required")

	_, err = NewClient(&Config{Endpoint: "http://localhost"}, zap.NewNop())
	assert.ErrorContains(t, err, "model is required")
}

func TestClient_Complete(t *testing.T) {
	var body struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"rankings\": []}"},"finish_reason":"stop"}],"usage":{"prompt_tokens":10,"completion_tokens":3}}`))
	}))
	defer server.Close()

	client, err := NewClient(&Config{Endpoint: server.URL + "/", Model: "gpt-test", APIKey: "sk-test"}, zap.NewNop())
	require.NoError(t, err)

	got, err := client.Complete(context.Background(), "rank these")

	require.NoError(t, err)
	assert.Equal(t, `{"rankings": []}`, got)
	assert.Equal(t, "gpt-test", body.Model)
	require.Len(t, body.Messages, 2)
	assert.Equal(t, "system", body.Messages[0].Role)
	assert.Equal(t, DefaultSystemMessage, body.Messages[0].Content)
	assert.Equal(t, "rank these", body.Messages[1].Content)
}

func TestClient_Complete_ClassifiesErrors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		wantType      ErrorType
		wantRetryable bool
	}{
		{"unauthorized", http.StatusUnauthorized, ErrorTypeAuth, false},
		{"rate limited", http.StatusTooManyRequests, ErrorTypeRateLimit, true},
		{"server error", http.StatusInternalServerError, ErrorTypeServer, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"message":"nope","type":"error"}}`))
			}))
			defer server.Close()

			client, err := NewClient(&Config{Endpoint: server.URL, Model: "gpt-test"}, zap.NewNop())
			require.NoError(t, err)

			_, err = client.Complete(context.Background(), "hi")

			var llmErr *Error
			require.ErrorAs(t, err, &llmErr)
			assert.Equal(t, tt.wantType, llmErr.Type)
			assert.Equal(t, tt.wantRetryable, llmErr.Retryable)
			assert.Equal(t, "openai", llmErr.Provider)
		})
	}
}

func TestClient_Complete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","choices":[]}`))
	}))
	defer server.Close()

	client, err := NewClient(&Config{Endpoint: server.URL, Model: "gpt-test"}, zap.NewNop())
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "hi")

	var llmErr *Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, ErrorTypeServer, llmErr.Type)
}

func TestClient_Complete_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client, err := NewClient(&Config{Endpoint: server.URL, Model: "gpt-test", Timeout: 50 * time.Millisecond}, zap.NewNop())
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "hi")

	assert.True(t, IsRetryable(err), "timeouts are retryable: %v", err)
}

func TestAnthropicClient_Complete(t *testing.T) {
	var body struct {
		Model     string `json:"model"`
		System    string `json:"system"`
		MaxTokens int    `json:"max_tokens"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "sk-ant", r.Header.Get("X-Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-test","content":[{"type":"text","text":"ADD_EMPLOYEES"}],"stop_reason":"end_turn","usage":{"input_tokens":5,"output_tokens":2}}`))
	}))
	defer server.Close()

	client, err := NewAnthropicClient(&Config{Endpoint: server.URL, Model: "claude-test", APIKey: "sk-ant"}, zap.NewNop())
	require.NoError(t, err)

	got, err := client.Complete(context.Background(), "classify")

	require.NoError(t, err)
	assert.Equal(t, "ADD_EMPLOYEES", got)
	assert.Equal(t, "claude-test", body.Model)
	assert.Equal(t, DefaultSystemMessage, body.System)
	assert.Equal(t, defaultAnthropicMaxTokens, body.MaxTokens)
}

func TestNewAnthropicClient_RequiresAPIKey(t *testing.T) {
	_, err := NewAnthropicClient(&Config{Model: "claude-test"}, zap.NewNop())
	assert.ErrorContains(t, err, "api key is required")
}
