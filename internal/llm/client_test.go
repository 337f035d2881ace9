package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/lingo/internal/config"
	"github.com/hpungsan/lingo/internal/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, maxRequests int) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(logger.NewNop(), Options{
		BaseURL:     srv.URL + "/",
		APIKey:      "sk-test",
		Model:       "test-model",
		Temperature: 0.2,
		MaxRequests: maxRequests,
	})
	require.NoError(t, err)
	return c
}

func reply(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}, "finish_reason": "stop"},
		},
	})
}

func TestGenerateJSON(t *testing.T) {
	var got chatRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		reply(w, ` {"items":[]} `)
	}, 0)

	out, err := c.GenerateJSON(context.Background(), "sys", "usr")
	require.NoError(t, err)
	assert.Equal(t, `{"items":[]}`, string(out))

	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "usr", got.Messages[1].Content)
	assert.Equal(t, 1, c.Requests())
}

func TestGenerateJSON_BadResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no choices", `{"choices":[]}`},
		{"refusal", `{"choices":[{"message":{"content":"","refusal":"I can't"},"finish_reason":"stop"}]}`},
		{"truncated", `{"choices":[{"message":{"content":"{\"items\":"},"finish_reason":"length"}]}`},
		{"empty content", `{"choices":[{"message":{"content":"  "},"finish_reason":"stop"}]}`},
		{"not json", `<html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}, 0)
			_, err := c.GenerateJSON(context.Background(), "s", "u")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrBadResponse), "got %v", err)
		})
	}
}

func TestGenerateJSON_HTTPErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusServiceUnavailable)
	}, 0)

	_, err := c.GenerateJSON(context.Background(), "s", "u")
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGenerateJSON_RequestLimit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, `{}`)
	}, 2)

	for i := 0; i < 2; i++ {
		_, err := c.GenerateJSON(context.Background(), "s", "u")
		require.NoError(t, err)
	}
	_, err := c.GenerateJSON(context.Background(), "s", "u")
	assert.ErrorIs(t, err, ErrRequestLimit)
	assert.Equal(t, 2, c.Requests())
	assert.Equal(t, 2, c.MaxRequests())
}

func TestGenerateJSON_ContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, `{}`)
	}, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.GenerateJSON(ctx, "s", "u")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(nil, Options{APIKey: "k", Model: "m"})
	assert.Error(t, err)

	_, err = NewClient(logger.NewNop(), Options{Model: "m"})
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = NewClient(logger.NewNop(), Options{APIKey: "k"})
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	_, err := FromConfig(logger.NewNop(), config.DefaultConfig().LLM)
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	t.Setenv(APIKeyEnv, "sk-env")
	c, err := FromConfig(logger.NewNop(), config.DefaultConfig().LLM)
	require.NoError(t, err)
	assert.Equal(t, "https://api.openai.com", c.baseURL)
}

func TestClientFunc(t *testing.T) {
	var c Client = ClientFunc(func(ctx context.Context, system, user string) ([]byte, error) {
		return []byte(system + user), nil
	})
	out, err := c.GenerateJSON(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "ab", string(out))
}
