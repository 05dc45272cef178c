package coordinator

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/engine"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/event"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/llmclient"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/model"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/pipeline"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/ratelimit"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/resilience"
)

func fastClient(baseURL string) *llmclient.Client {
	cfg := llmclient.DefaultConfig("secret")
	cfg.BaseURL = baseURL
	cfg.Backoff = resilience.BackoffConfig{MaxAttempts: 2, BaseDelay: time.Millisecond, JitterFactor: 0}
	cfg.RateLimit = ratelimit.Config{RequestsPerSecond: 1000, Burst: 1000}
	cfg.CircuitBreaker = resilience.CircuitBreakerConfig{MaxFailures: 100000, Timeout: time.Second, HalfOpenMax: 1}
	return llmclient.New(cfg)
}

type fakeTelemetry struct {
	mu         sync.Mutex
	eventCount int
	finished   []RunSummary
}

func (f *fakeTelemetry) AppendEvents(runID string, events []event.Event) {
	f.mu.Lock()
	f.eventCount += len(events)
	f.mu.Unlock()
}
func (f *fakeTelemetry) RecordSnapshot(string, int, string, model.Snapshot)          {}
func (f *fakeTelemetry) RecordDecision(string, string, pipeline.Outcome, int64)      {}
func (f *fakeTelemetry) FinishRun(runID string, summary RunSummary) {
	f.mu.Lock()
	f.finished = append(f.finished, summary)
	f.mu.Unlock()
}

func (f *fakeTelemetry) finishedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.finished)
}

func fourPlayers() []engine.PlayerSpec {
	return []engine.PlayerSpec{
		{ID: "p1", Name: "Ann"}, {ID: "p2", Name: "Bo"},
		{ID: "p3", Name: "Cy"}, {ID: "p4", Name: "Dee"},
	}
}

func fourConfigs() map[string]pipeline.PlayerConfig {
	cfg := pipeline.PlayerConfig{ModelID: "m", SystemPrompt: "play well"}
	return map[string]pipeline.PlayerConfig{"p1": cfg, "p2": cfg, "p3": cfg, "p4": cfg}
}

func TestStartRunRejectsWrongPlayerCount(t *testing.T) {
	c := New(fastClient("http://127.0.0.1:1"), nil, zap.NewNop().Sugar(), nil)
	_, err := c.StartRun(RunRequest{Seed: 1, Players: fourPlayers()[:3], PlayerConfigs: fourConfigs()})
	require.Error(t, err)
}

func TestStartRunIsIdempotentForIdenticalRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	telemetry := &fakeTelemetry{}
	c := New(fastClient(srv.URL), nil, zap.NewNop().Sugar(), telemetry)
	req := RunRequest{Seed: 42, Players: fourPlayers(), PlayerConfigs: fourConfigs(), MaxTurns: 200}

	runID1, err := c.StartRun(req)
	require.NoError(t, err)
	runID2, err := c.StartRun(req)
	require.NoError(t, err)
	require.Equal(t, runID1, runID2)

	c.StopRun("test_cleanup")
}

func TestRunCompletesViaFallbackAndNotifiesTelemetry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	telemetry := &fakeTelemetry{}
	c := New(fastClient(srv.URL), nil, zap.NewNop().Sugar(), telemetry)
	runID, err := c.StartRun(RunRequest{
		Seed: 7, Players: fourPlayers(), PlayerConfigs: fourConfigs(),
		MaxTurns: 3, TSStepMs: 10,
	})
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	require.Eventually(t, func() bool {
		return telemetry.finishedCount() == 1
	}, 5*time.Second, 5*time.Millisecond)
}

func TestSubscribeDeliversHelloThenSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(fastClient(srv.URL), nil, zap.NewNop().Sugar(), nil)
	_, err := c.StartRun(RunRequest{Seed: 3, Players: fourPlayers(), PlayerConfigs: fourConfigs(), MaxTurns: 1, TSStepMs: 10})
	require.NoError(t, err)
	defer c.StopRun("test_cleanup")

	sub := c.Subscribe()
	defer c.Unsubscribe(sub)

	first := <-sub
	require.Equal(t, FrameHello, first.Type)
	second := <-sub
	require.Equal(t, FrameSnapshot, second.Type)
}

func TestPauseBlocksRunnerUntilResume(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	telemetry := &fakeTelemetry{}
	c := New(fastClient(srv.URL), nil, zap.NewNop().Sugar(), telemetry)
	_, err := c.StartRun(RunRequest{Seed: 9, Players: fourPlayers(), PlayerConfigs: fourConfigs(), MaxTurns: 3, TSStepMs: 10, Paused: true})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 0, telemetry.finishedCount())
	require.True(t, c.IsPaused())

	c.Resume()
	require.Eventually(t, func() bool {
		return telemetry.finishedCount() == 1
	}, 5*time.Second, 5*time.Millisecond)

	c.StopRun("test_cleanup")
}
