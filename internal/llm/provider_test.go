package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var req ollamaChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		assert.Equal(t, "llama3", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		json.NewEncoder(w).Encode(ollamaChatResponse{
			Model:     "llama3",
			Message:   Message{Role: "assistant", Content: `{"should_ask": false}`},
			Done:      true,
			EvalCount: 12,
		})
	}))
	defer server.Close()

	provider := NewOllamaProvider(&ProviderConfig{Endpoint: server.URL, Model: "llama3"})
	assert.True(t, provider.Available())

	resp, err := provider.Chat(context.Background(), &ChatRequest{
		SystemPrompt: "You judge follow-ups.",
		Messages:     []Message{{Role: "user", Content: "Answer: fine."}},
		Temperature:  0.2,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"should_ask": false}`, resp.Content)
	assert.Equal(t, 12, resp.TokensUsed)
}

func TestOllamaChatServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	provider := NewOllamaProvider(&ProviderConfig{Endpoint: server.URL})
	_, err := provider.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestOpenAIChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]any{
			"model": "gpt-4o-mini",
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "- summary"}},
			},
			"usage": map[string]int{"total_tokens": 42},
		})
	}))
	defer server.Close()

	provider := NewOpenAIProvider(&ProviderConfig{Endpoint: server.URL, APIKey: "test-key"})
	require.True(t, provider.Available())

	resp, err := provider.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "Summarize."}},
	})
	require.NoError(t, err)
	assert.Equal(t, "- summary", resp.Content)
	assert.Equal(t, 42, resp.TokensUsed)
}

func TestOpenAIChatRequiresAPIKey(t *testing.T) {
	provider := NewOpenAIProvider(&ProviderConfig{})
	assert.False(t, provider.Available())

	_, err := provider.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	assert.Error(t, err)
}
