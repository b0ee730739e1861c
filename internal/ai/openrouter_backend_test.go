package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"resumescreen/internal/config"
	"resumescreen/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openRouterConfig(baseURL string) config.OperationAIConfig {
	timeout := 5 * time.Second
	temperature := float32(0.3)
	return config.OperationAIConfig{
		Provider:    config.ProviderOpenRouter,
		Model:       "test/model",
		APIKey:      "or-key",
		BaseURL:     baseURL,
		Timeout:     &timeout,
		Temperature: &temperature,
	}
}

func TestOpenRouterGenerate(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer or-key", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "{\"summary\": \"hi\"}"}}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 3, "total_tokens": 15}
		}`))
	}))
	defer server.Close()

	backend := NewOpenRouterBackend(openRouterConfig(server.URL), config.OperationAnalyze, nil)
	text, usage, err := backend.Generate(context.Background(), Prompt{System: "persona", User: "resume"})
	require.NoError(t, err)

	assert.Equal(t, `{"summary": "hi"}`, text)
	require.NotNil(t, usage)
	assert.Equal(t, int64(12), usage.InputTokens)
	assert.Equal(t, int64(15), usage.TotalTokens)

	assert.Equal(t, "test/model", received["model"])
	messages, ok := received["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.InDelta(t, 0.3, received["temperature"], 0.001)
}

func TestOpenRouterErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"rate limited", http.StatusTooManyRequests, `{"error": {"message": "slow down"}}`, errors.IsTransient},
		{"unavailable", http.StatusServiceUnavailable, `{"error": {"message": "no provider"}}`, errors.IsTransient},
		{"unauthorized", http.StatusUnauthorized, `{"error": {"message": "bad key"}}`, func(err error) bool {
			return errors.HasCode(err, errors.ErrCodeAIServiceFailed)
		}},
		{"error in 200 body", http.StatusOK, `{"error": {"message": "upstream overloaded", "code": 503}}`, errors.IsTransient},
		{"missing content", http.StatusOK, `{"choices": []}`, errors.IsAIResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			backend := NewOpenRouterBackend(openRouterConfig(server.URL), config.OperationAnalyze, nil)
			_, _, err := backend.Generate(context.Background(), Prompt{User: "resume"})
			require.Error(t, err)
			assert.True(t, tt.check(err), "Unexpected error classification: %v", err)
		})
	}
}

func TestNewBackendWithoutKey(t *testing.T) {
	_, err := NewBackend(context.Background(), config.OperationAIConfig{Provider: config.ProviderGemini}, config.OperationAnalyze, nil)
	require.Error(t, err)
	assert.True(t, errors.IsConfiguration(err))

	_, err = NewBackend(context.Background(), config.OperationAIConfig{Provider: "claude", APIKey: "k"}, config.OperationAnalyze, nil)
	require.Error(t, err)
	assert.False(t, errors.IsConfiguration(err))

	backend, err := NewBackend(context.Background(), openRouterConfig("http://localhost"), config.OperationAnalyze, nil)
	require.NoError(t, err)
	assert.Equal(t, config.ProviderOpenRouter, backend.Name())
}
