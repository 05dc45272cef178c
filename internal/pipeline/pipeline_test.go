package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/action"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/engine"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/llmclient"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/prompt"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/ratelimit"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/resilience"
)

func testDecision(t *testing.T) (*engine.Engine, engine.StepResult) {
	t.Helper()
	e, _ := engine.New(engine.Config{
		RunID:   "pipeline-test",
		Seed:    7,
		Players: []engine.PlayerSpec{{ID: "p1", Name: "Ann"}, {ID: "p2", Name: "Bo"}},
	})
	res := e.AdvanceUntilDecision(200)
	require.NotNil(t, res.Decision)
	return e, res
}

func testClient(baseURL string) *llmclient.Client {
	cfg := llmclient.DefaultConfig("secret")
	cfg.BaseURL = baseURL
	cfg.Backoff = resilience.BackoffConfig{MaxAttempts: 2, BaseDelay: time.Millisecond, JitterFactor: 0}
	cfg.RateLimit = ratelimit.Config{RequestsPerSecond: 1000, Burst: 1000}
	cfg.CircuitBreaker = resilience.CircuitBreakerConfig{MaxFailures: 100, Timeout: time.Second, HalfOpenMax: 1}
	return llmclient.New(cfg)
}

func TestDecideAppliesValidActionOnFirstAttempt(t *testing.T) {
	_, res := testDecision(t)
	legalName := res.Decision.LegalActions[0].Name

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tool_calls":[{"function":{"name":"` + legalName + `","arguments":"{}"}}]}`))
	}))
	defer srv.Close()

	p := New(testClient(srv.URL), zap.NewNop().Sugar(), "")
	outcome := p.Decide(context.Background(), res.Decision, res.Snapshot, prompt.NewStore(), PlayerConfig{ModelID: "m", SystemPrompt: "play well"})

	require.False(t, outcome.FallbackUsed)
	require.False(t, outcome.RetryUsed)
	require.Equal(t, legalName, string(outcome.Action.Name))
	require.Len(t, outcome.Attempts, 1)
}

func TestDecideRetriesOnValidationErrorThenFallsBack(t *testing.T) {
	_, res := testDecision(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tool_calls":[{"function":{"name":"not_a_real_action","arguments":"{}"}}]}`))
	}))
	defer srv.Close()

	p := New(testClient(srv.URL), zap.NewNop().Sugar(), "")
	outcome := p.Decide(context.Background(), res.Decision, res.Snapshot, prompt.NewStore(), PlayerConfig{ModelID: "m", SystemPrompt: "play well"})

	require.True(t, outcome.RetryUsed)
	require.True(t, outcome.FallbackUsed)
	require.Equal(t, "invalid_action", outcome.FallbackReason)
	require.Len(t, outcome.Attempts, 2)
	require.True(t, res.Decision.HasAction(string(outcome.Action.Name)))
}

func TestDecideFallsBackImmediatelyOnTransportError(t *testing.T) {
	_, res := testDecision(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := New(testClient(srv.URL), zap.NewNop().Sugar(), "")
	outcome := p.Decide(context.Background(), res.Decision, res.Snapshot, prompt.NewStore(), PlayerConfig{ModelID: "m", SystemPrompt: "play well"})

	require.False(t, outcome.RetryUsed)
	require.True(t, outcome.FallbackUsed)
	require.Equal(t, "openrouter_http_5xx", outcome.FallbackReason)
	require.Len(t, outcome.Attempts, 1)
	require.True(t, res.Decision.HasAction(string(outcome.Action.Name)))
}

func TestDecideWritesArtifactBundle(t *testing.T) {
	_, res := testDecision(t)
	legalName := res.Decision.LegalActions[0].Name

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tool_calls":[{"function":{"name":"` + legalName + `","arguments":"{}"}}]}`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	p := New(testClient(srv.URL), zap.NewNop().Sugar(), dir)
	p.Decide(context.Background(), res.Decision, res.Snapshot, prompt.NewStore(), PlayerConfig{ModelID: "m", SystemPrompt: "play well"})

	attemptDir := filepath.Join(dir, res.Decision.DecisionID, "attempt-1")
	for _, name := range []string{"system.txt", "user.json", "tools.json", "response.json", "parsed.json"} {
		_, err := os.Stat(filepath.Join(attemptDir, name))
		require.NoError(t, err, "expected %s to exist", name)
	}
	_, err := os.Stat(filepath.Join(dir, res.Decision.DecisionID, "outcome.json"))
	require.NoError(t, err)
}

func TestResumeSubstitutesFallbackWhenActionNoLongerLegal(t *testing.T) {
	_, res := testDecision(t)

	outcome := Outcome{Action: action.Request{
		SchemaVersion: "v1",
		DecisionID:    res.Decision.DecisionID,
		Name:          action.Name("definitely_not_legal"),
	}}
	resumed := Resume(res.Decision, outcome)
	require.True(t, resumed.FallbackUsed)
	require.Equal(t, "invalid_action_after_pause", resumed.FallbackReason)
	require.True(t, res.Decision.HasAction(string(resumed.Action.Name)))
}

func TestResumeKeepsStillLegalAction(t *testing.T) {
	_, res := testDecision(t)
	legalName := res.Decision.LegalActions[0].Name

	outcome := Outcome{Action: action.Request{
		SchemaVersion: "v1",
		DecisionID:    res.Decision.DecisionID,
		Name:          action.Name(legalName),
	}}
	resumed := Resume(res.Decision, outcome)
	require.False(t, resumed.FallbackUsed)
	require.Equal(t, legalName, string(resumed.Action.Name))
}
