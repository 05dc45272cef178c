package telemetry

import (
	"sync"

	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/coordinator"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/event"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/model"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/pipeline"
)

// Memory is an in-process Log, useful for tests and dry runs that
// don't want a file or database dependency.
type Memory struct {
	mu            sync.Mutex
	events        []EventRecord
	snapshots     []SnapshotRecord
	decisions     []DecisionRecord
	summaries     []coordinator.RunSummary
	lastSnapshots map[string]model.Snapshot
}

// NewMemory builds an empty Memory log.
func NewMemory() *Memory {
	return &Memory{lastSnapshots: make(map[string]model.Snapshot)}
}

func (m *Memory) AppendEvents(runID string, events []event.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ev := range events {
		m.events = append(m.events, newEventRecord(runID, ev))
	}
}

func (m *Memory) RecordSnapshot(runID string, turnIndex int, reason string, snap model.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = append(m.snapshots, SnapshotRecord{RunID: runID, TurnIndex: turnIndex, Reason: reason, Snapshot: snap})
	m.lastSnapshots[runID] = snap
}

func (m *Memory) RecordDecision(runID, decisionID string, outcome pipeline.Outcome, durationMs int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions = append(m.decisions, newDecisionRecord(runID, decisionID, outcome, durationMs))
}

func (m *Memory) FinishRun(runID string, summary coordinator.RunSummary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries = append(m.summaries, summary)
}

// Events returns a defensive copy of every recorded event so far.
func (m *Memory) Events() []EventRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]EventRecord(nil), m.events...)
}

// Snapshots returns a defensive copy of every recorded snapshot.
func (m *Memory) Snapshots() []SnapshotRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SnapshotRecord(nil), m.snapshots...)
}

// Decisions returns a defensive copy of every recorded decision.
func (m *Memory) Decisions() []DecisionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]DecisionRecord(nil), m.decisions...)
}

// Summaries returns a defensive copy of every finished run's summary.
func (m *Memory) Summaries() []coordinator.RunSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]coordinator.RunSummary(nil), m.summaries...)
}

// LatestSnapshot returns the most recent snapshot recorded for runID,
// satisfying internal/summary.LogReader alongside Events/Decisions.
func (m *Memory) LatestSnapshot(runID string) model.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSnapshots[runID]
}
