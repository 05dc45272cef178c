// Package llmclient is the Remote Model Client (spec.md §4.2/§4.2.1,
// component H): one chat-completion HTTP call per attempt, wrapped in
// a circuit breaker and rate limiter, with its result classified into
// the transport outcome kinds the pipeline's attempt decision tree
// consumes. Grounded on the teacher's retry/backoff-over-HTTP style in
// packages/.../client_openrouter.go, adapted to return a classified
// Result instead of sleeping inline.
package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/apperrors"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/ratelimit"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/resilience"
)

// Message is one chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ToolFunction describes one callable tool's JSON-schema contract.
type ToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters"`
}

// Tool is one entry of the chat-completion "tools" array.
type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ChatRequest is the wire request body for one attempt.
type ChatRequest struct {
	Model      string    `json:"model"`
	Messages   []Message `json:"messages"`
	Tools      []Tool    `json:"tools,omitempty"`
	ToolChoice string    `json:"tool_choice,omitempty"`
}

// Result is the outcome of one ChatCompletion call: either the raw
// successful response body, or a classified failure with no body to
// parse further.
type Result struct {
	OK         bool
	RawBody    []byte
	StatusCode int
	RequestID  string
	Err        *apperrors.TransportError
}

// Config configures a Client.
type Config struct {
	APIKey         string
	BaseURL        string
	Timeout        time.Duration
	Backoff        resilience.BackoffConfig
	CircuitBreaker resilience.CircuitBreakerConfig
	RateLimit      ratelimit.Config
	HTTPClient     *http.Client
}

// DefaultConfig returns the spec-mandated retry policy (base 0.5s,
// 2^attempt, 2 retries) plus conservative breaker/limiter defaults.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:         apiKey,
		BaseURL:        "https://openrouter.ai/api/v1",
		Timeout:        30 * time.Second,
		Backoff:        resilience.DefaultBackoffConfig(),
		CircuitBreaker: resilience.DefaultCircuitBreakerConfig(),
		RateLimit:      ratelimit.DefaultConfig(),
	}
}

// Client is the Remote Model Client.
type Client struct {
	cfg     Config
	http    *http.Client
	breaker *resilience.CircuitBreaker
	limiter *ratelimit.Limiter
}

// New builds a Client from cfg.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		cfg:     cfg,
		http:    httpClient,
		breaker: resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		limiter: ratelimit.New(cfg.RateLimit),
	}
}

// ChatCompletion performs exactly one logical attempt as seen by the
// pipeline: internally it may retry transient transport failures per
// cfg.Backoff, but the pipeline's own attempt counter (spec.md §4.2)
// is unaffected — this method always returns a single Result.
func (c *Client) ChatCompletion(ctx context.Context, req ChatRequest) *Result {
	if c.cfg.APIKey == "" {
		return &Result{Err: &apperrors.TransportError{Kind: apperrors.TransportNoAPIKey, Message: "no OpenRouter API key configured"}}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return &Result{Err: &apperrors.TransportError{Kind: apperrors.TransportHTTP4xx, Message: fmt.Sprintf("marshal request: %v", err)}}
	}

	var result *Result
	_ = resilience.Retry(ctx, c.cfg.Backoff, isRetryable, func(attempt int) error {
		if err := c.limiter.Wait(ctx); err != nil {
			result = &Result{Err: &apperrors.TransportError{Kind: apperrors.TransportNetworkError, Message: err.Error()}}
			return nil // rate-limiter wait failure is not retried independently
		}
		cbErr := c.breaker.Execute(func() error {
			res := c.doOnce(ctx, body)
			result = res
			if res.Err != nil {
				return res.Err
			}
			return nil
		})
		if cbErr != nil && result == nil {
			result = &Result{Err: &apperrors.TransportError{Kind: apperrors.TransportNetworkError, Message: cbErr.Error()}}
		}
		if result != nil && result.Err != nil {
			return result.Err
		}
		return nil
	})
	return result
}

func isRetryable(err error) bool {
	var te *apperrors.TransportError
	if !asTransportError(err, &te) {
		return false
	}
	switch te.Kind {
	case apperrors.TransportHTTP429, apperrors.TransportHTTP5xx, apperrors.TransportNetworkError:
		return true
	default:
		return false
	}
}

func asTransportError(err error, target **apperrors.TransportError) bool {
	te, ok := err.(*apperrors.TransportError)
	if ok {
		*target = te
	}
	return ok
}

func (c *Client) doOnce(ctx context.Context, body []byte) *Result {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return &Result{Err: &apperrors.TransportError{Kind: apperrors.TransportHTTP4xx, Message: err.Error()}}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return &Result{Err: &apperrors.TransportError{Kind: apperrors.TransportNetworkError, Message: err.Error()}}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return &Result{Err: &apperrors.TransportError{Kind: apperrors.TransportNetworkError, Message: err.Error()}}
	}

	requestID := resp.Header.Get("X-Request-Id")

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		te := &apperrors.TransportError{Kind: apperrors.TransportHTTP429, StatusCode: resp.StatusCode, Message: "rate limited"}
		return &Result{Err: te, StatusCode: resp.StatusCode, RequestID: requestID}
	case resp.StatusCode >= 500:
		te := &apperrors.TransportError{Kind: apperrors.TransportHTTP5xx, StatusCode: resp.StatusCode, Message: "server error"}
		return &Result{Err: te, StatusCode: resp.StatusCode, RequestID: requestID}
	case resp.StatusCode >= 400:
		te := &apperrors.TransportError{Kind: apperrors.TransportHTTP4xx, StatusCode: resp.StatusCode, Message: "client error"}
		return &Result{Err: te, StatusCode: resp.StatusCode, RequestID: requestID}
	}

	if !json.Valid(raw) {
		te := &apperrors.TransportError{Kind: apperrors.TransportInvalidJSON, StatusCode: resp.StatusCode, Message: "response body is not valid JSON"}
		return &Result{Err: te, StatusCode: resp.StatusCode, RequestID: requestID}
	}

	return &Result{OK: true, RawBody: raw, StatusCode: resp.StatusCode, RequestID: requestID}
}
