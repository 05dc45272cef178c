package coordinator

import (
	"context"
	"fmt"
	"sync"

	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/apperrors"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/engine"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/event"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/llmclient"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/model"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/obslog"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/pipeline"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/prompt"

	"go.uber.org/zap"
)

const requiredPlayerCount = 4

// RunRequest is the caller-supplied description of a run to start.
type RunRequest struct {
	Seed          int64
	Players       []engine.PlayerSpec
	PlayerConfigs map[string]pipeline.PlayerConfig
	MaxTurns      int
	StartTSMs     int64
	TSStepMs      int64
	ArtifactDir   string
	// Paused starts the run with the cooperative barrier already set,
	// so the runner performs no engine work until resume() is called.
	Paused bool
}

// Telemetry receives the append-only record of a run as it happens.
// internal/telemetry provides the concrete implementations; Coordinator
// depends only on this narrow interface so it never needs a database.
type Telemetry interface {
	AppendEvents(runID string, events []event.Event)
	RecordSnapshot(runID string, turnIndex int, reason string, snap model.Snapshot)
	RecordDecision(runID string, decisionID string, outcome pipeline.Outcome, durationMs int64)
	FinishRun(runID string, summary RunSummary)
}

// RunSummary is the minimal final record a run leaves behind; component
// K's summary builder derives the richer report from the full log.
type RunSummary struct {
	RunID       string
	TurnsPlayed int
	Winner      string
	StopReason  string
}

// Metrics receives counters/gauges as the coordinator runs, so
// internal/obsmetrics can expose them to Prometheus without the
// coordinator importing it directly.
type Metrics interface {
	RecordDecision(decisionType string, seconds float64, retryUsed, fallbackUsed bool, fallbackReason string)
	RecordRunStarted()
	RecordRunFinished(reason string)
	RecordTurnPlayed()
	SetSubscribersConnected(count int)
	AddSubscriberDrops(n int)
}

// Coordinator owns at most one active run at a time: a single runner
// goroutine alternating engine progression with decision resolution,
// guarded by a mutex so advance_until_decision/apply_action are never
// called concurrently (spec.md §4.3/§5).
type Coordinator struct {
	log       *obslog.Logger
	client    *llmclient.Client
	zapLog    *zap.SugaredLogger
	telemetry Telemetry
	metrics   Metrics
	onFinish  func(runID string, summary RunSummary)

	mu   sync.Mutex
	gate *pauseGate

	runID    string
	eng      *engine.Engine
	store    *prompt.Store
	players  map[string]pipeline.PlayerConfig
	pl       *pipeline.Pipeline
	maxTurns int

	broadcaster *Broadcaster

	cancel context.CancelFunc
	done   chan struct{}
}

// New builds a Coordinator. telemetry may be nil (no persistence).
func New(client *llmclient.Client, log *obslog.Logger, zapLog *zap.SugaredLogger, telemetry Telemetry) *Coordinator {
	return &Coordinator{
		log:         log,
		client:      client,
		zapLog:      zapLog,
		telemetry:   telemetry,
		broadcaster: NewBroadcaster(log),
	}
}

// StartRun starts req as the active run, per spec.md §4.3. If an
// identical run (same deterministic run id) is already active, this is
// an idempotent no-op. If a different run is active, it is stopped
// first.
func (c *Coordinator) StartRun(req RunRequest) (string, error) {
	if len(req.Players) != requiredPlayerCount {
		return "", &apperrors.CoordinatorConflict{
			Reason: fmt.Sprintf("start_run requires exactly %d players, got %d", requiredPlayerCount, len(req.Players)),
		}
	}

	ids := make([]string, len(req.Players))
	for i, p := range req.Players {
		ids[i] = p.ID
	}
	runID := computeRunID(req.Seed, ids)

	c.mu.Lock()
	if c.eng != nil && c.runID == runID {
		c.mu.Unlock()
		return runID, nil
	}
	active := c.eng != nil
	c.mu.Unlock()

	if active {
		c.StopRun("superseded_by_new_run")
	}

	eng, initial := engine.New(engine.Config{
		RunID:     runID,
		Seed:      req.Seed,
		Players:   req.Players,
		StartTSMs: req.StartTSMs,
		TSStepMs:  req.TSStepMs,
	})

	c.mu.Lock()
	c.runID = runID
	c.eng = eng
	c.store = prompt.NewStore()
	c.players = req.PlayerConfigs
	c.pl = pipeline.New(c.client, c.zapLog, req.ArtifactDir)
	c.maxTurns = req.MaxTurns
	c.gate = newPauseGate()
	if req.Paused {
		c.gate.pause()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	c.mu.Unlock()

	c.recordAndBroadcast(runID, initial)
	c.broadcaster.Broadcast(Frame{Type: FrameSnapshot, Snapshot: snapshotPtr(eng.GetSnapshot())})

	go c.gate.watch(ctx)
	go c.run(ctx, runID, eng)

	if c.metrics != nil {
		c.metrics.RecordRunStarted()
	}
	if c.log != nil {
		c.log.WithField("run_id", runID).WithField("seed", req.Seed).Info("run started")
	}
	return runID, nil
}

// StopRun requests the active run stop with reason, cancels the
// runner, and waits for it to drain. A no-op if no run is active.
func (c *Coordinator) StopRun(reason string) {
	c.mu.Lock()
	eng := c.eng
	cancel := c.cancel
	done := c.done
	gate := c.gate
	c.mu.Unlock()

	if eng == nil {
		return
	}

	c.mu.Lock()
	eng.RequestStop(reason)
	c.mu.Unlock()
	if gate != nil {
		gate.resume()
	}
	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	c.mu.Lock()
	c.eng = nil
	c.cancel = nil
	c.mu.Unlock()
}

// Pause toggles the cooperative barrier on; idempotent.
func (c *Coordinator) Pause() {
	c.mu.Lock()
	gate := c.gate
	c.mu.Unlock()
	if gate != nil {
		gate.pause()
	}
}

// Resume toggles the cooperative barrier off; idempotent.
func (c *Coordinator) Resume() {
	c.mu.Lock()
	gate := c.gate
	c.mu.Unlock()
	if gate != nil {
		gate.resume()
	}
}

// IsPaused reports whether the active run's barrier is currently set.
func (c *Coordinator) IsPaused() bool {
	c.mu.Lock()
	gate := c.gate
	c.mu.Unlock()
	return gate != nil && gate.isPaused()
}

// Subscribe registers a new broadcast subscriber and returns its
// inbound frame channel, delivering HELLO + latest snapshot first.
func (c *Coordinator) Subscribe() Subscriber {
	c.mu.Lock()
	eng := c.eng
	runID := c.runID
	var snap model.Snapshot
	if eng != nil {
		snap = eng.GetSnapshot()
	}
	c.mu.Unlock()

	return c.broadcaster.Subscribe(runID, snap)
}

// Unsubscribe removes sub from the broadcast fan-out.
func (c *Coordinator) Unsubscribe(sub Subscriber) {
	c.broadcaster.Unsubscribe(sub)
}

// RunID reports the active run's id, or "" if none is active.
func (c *Coordinator) RunID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runID
}

// OnRunFinished installs a callback invoked with the active run's
// RunSummary right after a run ends, once telemetry/metrics have both
// been notified. Lets the composition root build a richer report
// (internal/summary) from the persisted logs without internal/summary
// needing to depend on internal/coordinator itself.
func (c *Coordinator) OnRunFinished(fn func(runID string, summary RunSummary)) {
	c.onFinish = fn
}

// SetMetrics installs a Metrics sink. May be called once before any
// run starts; nil (the default) disables metrics entirely.
func (c *Coordinator) SetMetrics(m Metrics) {
	c.metrics = m
	if m == nil {
		c.broadcaster.SetHooks(nil, nil)
		return
	}
	c.broadcaster.SetHooks(m.AddSubscriberDrops, m.SetSubscribersConnected)
}

func (c *Coordinator) recordAndBroadcast(runID string, events []event.Event) {
	if len(events) == 0 {
		return
	}
	if c.telemetry != nil {
		c.telemetry.AppendEvents(runID, events)
	}
	c.broadcaster.BroadcastEvents(events)
}

func snapshotPtr(s model.Snapshot) *model.Snapshot { return &s }
