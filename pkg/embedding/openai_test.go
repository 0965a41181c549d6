package embedding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*OpenAIClient, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := NewOpenAIClient(Config{APIKey: "test-key", Endpoint: srv.URL, Timeout: time.Second})
	require.NoError(t, err)
	c.retryDelay = 0
	return c, &calls
}

func TestOpenAIClient_Embed(t *testing.T) {
	t.Run("Should send the model and return the vector", func(t *testing.T) {
		c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			var req embeddingsRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, DefaultOpenAIModel, req.Model)
			assert.Equal(t, "hello", req.Input)
			_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[0.5,-1]}]}`))
		})

		vec, err := c.Embed(context.Background(), "  hello ")
		require.NoError(t, err)
		assert.Equal(t, []float32{0.5, -1}, vec)
		assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	})

	t.Run("Should retry once on server errors", func(t *testing.T) {
		var n int32
		c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&n, 1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[1]}]}`))
		})

		vec, err := c.Embed(context.Background(), "x")
		require.NoError(t, err)
		assert.Equal(t, []float32{1}, vec)
		assert.Equal(t, int32(2), atomic.LoadInt32(calls))
	})

	t.Run("Should give up after the single retry", func(t *testing.T) {
		c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})

		_, err := c.Embed(context.Background(), "x")
		var httpErr *HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
		assert.Equal(t, int32(2), atomic.LoadInt32(calls))
	})

	t.Run("Should not retry client errors", func(t *testing.T) {
		c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"bad key"}`))
		})

		_, err := c.Embed(context.Background(), "x")
		assert.Error(t, err)
		assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	})

	t.Run("Should reject responses without a vector", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":[]}`))
		})

		_, err := c.Embed(context.Background(), "x")
		assert.ErrorContains(t, err, "no vector")
	})

	t.Run("Should reject malformed json", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		})

		_, err := c.Embed(context.Background(), "x")
		assert.ErrorContains(t, err, "decode response")
	})
}

func TestNewOpenAIClient_RequiresKey(t *testing.T) {
	_, err := NewOpenAIClient(Config{})
	assert.Error(t, err)
}

func TestNew_ProviderSelection(t *testing.T) {
	_, err := New(context.Background(), Config{Provider: "none"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = New(context.Background(), Config{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = New(context.Background(), Config{Provider: "cohere"})
	assert.ErrorContains(t, err, "unknown provider")

	c, err := New(context.Background(), Config{Provider: "OpenAI", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, c.Name())
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.True(t, IsTransient(&HTTPError{StatusCode: 502}))
	assert.True(t, IsTransient(&HTTPError{StatusCode: 429}))
	assert.False(t, IsTransient(&HTTPError{StatusCode: 400}))
	assert.True(t, IsTransient(context.DeadlineExceeded))
	assert.False(t, IsTransient(context.Canceled))
	assert.True(t, IsTransient(fmt.Errorf("gemini embed: %w", &googleapi.Error{Code: 503})))
	assert.True(t, IsTransient(&googleapi.Error{Code: 429}))
	assert.False(t, IsTransient(&googleapi.Error{Code: 400}))
}

func TestEmbeddingInput(t *testing.T) {
	assert.Equal(t, " ", embeddingInput(""))
	assert.Equal(t, " ", embeddingInput(" \n\t "))
	assert.Equal(t, "hello", embeddingInput("  hello\n"))
}
