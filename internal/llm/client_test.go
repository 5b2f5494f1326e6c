package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/aisdr-backend/internal/errors"
	"github.com/unclebandit/aisdr-backend/internal/llm"
	"github.com/unclebandit/aisdr-backend/internal/model"
)

const completionBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "test-model",
  "choices": [
    {"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "  Which industry?  "}}
  ],
  "usage": {"prompt_tokens": 5, "completion_tokens": 3, "total_tokens": 8}
}`

func TestCompleteSendsTranscript(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	var headers http.Header

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody))
	}))
	defer srv.Close()

	client := llm.NewClient(llm.Config{
		Name:    "openrouter",
		APIKey:  "key",
		BaseURL: srv.URL,
		Model:   "test-model",
		Referer: "http://localhost:8080",
		Title:   "AI SDR Campaign",
	}, nil)

	out, err := client.Complete(context.Background(), "be brief", []model.ChatMessage{
		{Role: model.RoleAssistant, Content: "Hi!"},
		{Role: model.RoleUser, Content: "Directors in the US"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Which industry?", out)

	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "assistant", got.Messages[1].Role)
	assert.Equal(t, "user", got.Messages[2].Role)
	assert.Equal(t, "http://localhost:8080", headers.Get("HTTP-Referer"))
	assert.Equal(t, "Bearer key", headers.Get("Authorization"))
}

func TestCompleteWrapsFailures(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := llm.NewClient(llm.Config{Name: "groq", APIKey: "k", BaseURL: srv.URL, Model: "m"}, nil)

	_, err := client.Complete(context.Background(), "", []model.ChatMessage{{Role: model.RoleUser, Content: "hi"}})
	var perr *appErrors.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "groq", perr.Provider)
	assert.Equal(t, 1, calls, "requests are never retried")
}
