package telemetry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/coordinator"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/event"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/model"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/pipeline"
)

// JSONL is a Log that appends one JSON object per line to three files
// under dir: events.jsonl, snapshots.jsonl, decisions.jsonl, plus a
// single summary.json written once at the end of each run. It mirrors
// the pipeline's own artifact writer's file-per-concern layout rather
// than interleaving record kinds in one stream.
type JSONL struct {
	mu            sync.Mutex
	dir           string
	events        []EventRecord
	decisions     []DecisionRecord
	lastSnapshots map[string]model.Snapshot
}

// NewJSONL builds a JSONL log rooted at dir, creating it if needed.
func NewJSONL(dir string) (*JSONL, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &JSONL{dir: dir, lastSnapshots: make(map[string]model.Snapshot)}, nil
}

func (j *JSONL) appendLine(name string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	raw = append(raw, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()
	f, err := os.OpenFile(filepath.Join(j.dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = f.Write(raw)
}

func (j *JSONL) AppendEvents(runID string, events []event.Event) {
	j.mu.Lock()
	for _, ev := range events {
		j.events = append(j.events, newEventRecord(runID, ev))
	}
	j.mu.Unlock()
	for _, ev := range events {
		j.appendLine("events.jsonl", newEventRecord(runID, ev))
	}
}

func (j *JSONL) RecordSnapshot(runID string, turnIndex int, reason string, snap model.Snapshot) {
	j.mu.Lock()
	j.lastSnapshots[runID] = snap
	j.mu.Unlock()
	j.appendLine("snapshots.jsonl", SnapshotRecord{RunID: runID, TurnIndex: turnIndex, Reason: reason, Snapshot: snap})
}

func (j *JSONL) RecordDecision(runID, decisionID string, outcome pipeline.Outcome, durationMs int64) {
	rec := newDecisionRecord(runID, decisionID, outcome, durationMs)
	j.mu.Lock()
	j.decisions = append(j.decisions, rec)
	j.mu.Unlock()
	j.appendLine("decisions.jsonl", rec)
}

// Events returns a defensive copy of every event appended so far,
// satisfying internal/summary.LogReader alongside Decisions.
func (j *JSONL) Events() []EventRecord {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]EventRecord(nil), j.events...)
}

// Decisions returns a defensive copy of every decision recorded so far.
func (j *JSONL) Decisions() []DecisionRecord {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]DecisionRecord(nil), j.decisions...)
}

// LatestSnapshot returns the most recent snapshot recorded for runID.
func (j *JSONL) LatestSnapshot(runID string) model.Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastSnapshots[runID]
}

func (j *JSONL) FinishRun(runID string, summary coordinator.RunSummary) {
	raw, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	_ = os.WriteFile(filepath.Join(j.dir, "summary.json"), raw, 0o644)
}
