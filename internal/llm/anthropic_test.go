package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizmatch/dealmaker/internal/common"
)

func newTestAnthropicClient(t *testing.T, handler http.HandlerFunc) *anthropicClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := newAnthropicClient(Config{APIKey: "test-key"})
	require.NoError(t, err)

	c, ok := client.(*anthropicClient)
	require.True(t, ok)
	c.baseURL = server.URL
	return c
}

func TestAnthropicDraft(t *testing.T) {
	t.Run("successful draft", func(t *testing.T) {
		c := newTestAnthropicClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/messages", r.URL.Path)
			assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
			assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"model": "claude-3-sonnet-20240229",
				"content": [{"type": "text", "text": "Dear seller, here is our proposal."}]
			}`))
		})

		resp, err := c.Draft(context.Background(), "deal brief")
		require.NoError(t, err)
		assert.Equal(t, "Dear seller, here is our proposal.", resp.Content)
		assert.Equal(t, "claude-3-sonnet-20240229", resp.Model)
	})

	t.Run("bad key is not retryable", func(t *testing.T) {
		c := newTestAnthropicClient(t, func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"error": "invalid x-api-key"}`, http.StatusUnauthorized)
		})

		_, err := c.Draft(context.Background(), "deal brief")
		require.Error(t, err)

		var retryErr *common.RetryableError
		require.True(t, errors.As(err, &retryErr))
		assert.False(t, retryErr.Retryable)
	})

	t.Run("rate limit is retryable", func(t *testing.T) {
		c := newTestAnthropicClient(t, func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"error": "overloaded"}`, http.StatusTooManyRequests)
		})

		_, err := c.Draft(context.Background(), "deal brief")
		require.Error(t, err)

		var retryErr *common.RetryableError
		require.True(t, errors.As(err, &retryErr))
		assert.True(t, retryErr.Retryable)
	})

	t.Run("server fault is retryable", func(t *testing.T) {
		c := newTestAnthropicClient(t, func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "internal error", http.StatusInternalServerError)
		})

		_, err := c.Draft(context.Background(), "deal brief")
		require.Error(t, err)

		var retryErr *common.RetryableError
		require.True(t, errors.As(err, &retryErr))
		assert.True(t, retryErr.Retryable)
	})

	t.Run("empty content is an error", func(t *testing.T) {
		c := newTestAnthropicClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"model": "claude-3-sonnet-20240229", "content": []}`))
		})

		_, err := c.Draft(context.Background(), "deal brief")
		require.Error(t, err)
	})
}
