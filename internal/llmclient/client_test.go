package llmclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/apperrors"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/ratelimit"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/resilience"
)

func fastConfig(apiKey, baseURL string) Config {
	cfg := DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	cfg.Backoff = resilience.BackoffConfig{MaxAttempts: 2, BaseDelay: time.Millisecond, JitterFactor: 0}
	cfg.RateLimit = ratelimit.Config{RequestsPerSecond: 1000, Burst: 1000}
	cfg.CircuitBreaker = resilience.CircuitBreakerConfig{MaxFailures: 100, Timeout: time.Second, HalfOpenMax: 1}
	return cfg
}

func TestChatCompletionReturnsNoAPIKeyWithoutCallingTransport(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := New(fastConfig("", srv.URL))
	res := c.ChatCompletion(context.Background(), ChatRequest{Model: "m"})
	require.False(t, called)
	require.NotNil(t, res.Err)
	require.Equal(t, apperrors.TransportNoAPIKey, res.Err.Kind)
}

func TestChatCompletionSucceeds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"tool_calls":[{"function":{"name":"end_turn","arguments":"{}"}}]}`))
	}))
	defer srv.Close()

	c := New(fastConfig("secret", srv.URL))
	res := c.ChatCompletion(context.Background(), ChatRequest{Model: "m"})
	require.Nil(t, res.Err)
	require.True(t, res.OK)
	require.Contains(t, string(res.RawBody), "end_turn")
}

func TestChatCompletionClassifiesRateLimit(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(fastConfig("secret", srv.URL))
	res := c.ChatCompletion(context.Background(), ChatRequest{Model: "m"})
	require.NotNil(t, res.Err)
	require.Equal(t, apperrors.TransportHTTP429, res.Err.Kind)
	require.Equal(t, 3, attempts) // 1 + 2 retries
}

func TestChatCompletionClassifiesClientErrorWithoutRetry(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(fastConfig("secret", srv.URL))
	res := c.ChatCompletion(context.Background(), ChatRequest{Model: "m"})
	require.NotNil(t, res.Err)
	require.Equal(t, apperrors.TransportHTTP4xx, res.Err.Kind)
	require.Equal(t, 1, attempts)
}

func TestChatCompletionClassifiesInvalidJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := New(fastConfig("secret", srv.URL))
	res := c.ChatCompletion(context.Background(), ChatRequest{Model: "m"})
	require.NotNil(t, res.Err)
	require.Equal(t, apperrors.TransportInvalidJSON, res.Err.Kind)
}

func TestChatCompletionClassifiesNetworkError(t *testing.T) {
	c := New(fastConfig("secret", "http://127.0.0.1:1"))
	res := c.ChatCompletion(context.Background(), ChatRequest{Model: "m"})
	require.NotNil(t, res.Err)
	require.Equal(t, apperrors.TransportNetworkError, res.Err.Kind)
}
