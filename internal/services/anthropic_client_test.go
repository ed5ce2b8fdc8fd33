package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteSendsMessagesRequest(t *testing.T) {
	var gotPath, gotKey, gotVersion string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"content": [
				{"type": "text", "text": "Here are the tasks."},
				{"type": "text", "text": "1. Screen resumes"}
			],
			"model": "claude-3-sonnet-20240229",
			"stop_reason": "end_turn"
		}`))
	}))
	defer server.Close()

	client := NewAnthropicClient(server.URL, "test-key")
	resp, err := client.Complete(context.Background(), CompletionRequest{
		Model:       "claude-3-sonnet-20240229",
		MaxTokens:   2000,
		Temperature: 0.7,
		Messages:    []Message{TextMessage("user", "suggest tasks")},
	})
	require.NoError(t, err)

	assert.Equal(t, "/v1/messages", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "2023-06-01", gotVersion)
	assert.Equal(t, "claude-3-sonnet-20240229", gotBody["model"])
	assert.Equal(t, float64(2000), gotBody["max_tokens"])

	// Text blocks joined with a newline
	assert.Equal(t, "Here are the tasks.\n1. Screen resumes", resp.Content)
	assert.Equal(t, "end_turn", resp.StopReason)
}

func TestCompleteNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"type": "rate_limit_error"}}`))
	}))
	defer server.Close()

	client := NewAnthropicClient(server.URL, "test-key")
	_, err := client.Complete(context.Background(), CompletionRequest{
		Model:     "claude-3-haiku-20240307",
		MaxTokens: 300,
		Messages:  []Message{TextMessage("user", "hi")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status code 429")
	assert.Contains(t, err.Error(), "rate_limit_error")
}

func TestCompleteIgnoresNonTextBlocks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content": [{"type": "tool_use"}, {"type": "text", "text": "only this"}]}`))
	}))
	defer server.Close()

	client := NewAnthropicClient(server.URL, "key")
	resp, err := client.Complete(context.Background(), CompletionRequest{
		Model: "m", MaxTokens: 10, Messages: []Message{TextMessage("user", "x")},
	})
	require.NoError(t, err)
	assert.Equal(t, "only this", resp.Content)
}

func TestTextMessage(t *testing.T) {
	msg := TextMessage("assistant", "hello")
	assert.Equal(t, "assistant", msg.Role)
	require.Len(t, msg.Content, 1)
	assert.Equal(t, "text", msg.Content[0].Type)
	assert.Equal(t, "hello", msg.Content[0].Text)
}
