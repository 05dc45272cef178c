// Package telemetry persists the append-only record of a run: every
// event in emission order, the snapshots captured at the moments
// spec.md §4.3 names, and each decision's final outcome. It provides
// three interchangeable backends satisfying coordinator.Telemetry: an
// in-memory Log for tests, a JSONL append-file Log for local runs, and
// a Postgres-backed Log for anything that outlives the process.
package telemetry

import (
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/event"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/model"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/pipeline"
)

// EventRecord is the flattened, JSON-friendly projection of one
// event.Event, as persisted to the events log.
type EventRecord struct {
	RunID         string         `json:"run_id"`
	Seq           int            `json:"seq"`
	EventID       string         `json:"event_id"`
	TurnIndex     int            `json:"turn_index"`
	TSMs          int64          `json:"ts_ms"`
	ActorKind     string         `json:"actor_kind"`
	ActorPlayerID string         `json:"actor_player_id,omitempty"`
	Type          string         `json:"type"`
	Payload       map[string]any `json:"payload,omitempty"`
}

func newEventRecord(runID string, ev event.Event) EventRecord {
	return EventRecord{
		RunID:         runID,
		Seq:           ev.Seq,
		EventID:       ev.EventID,
		TurnIndex:     ev.TurnIndex,
		TSMs:          ev.TSMs,
		ActorKind:     string(ev.Actor.Kind),
		ActorPlayerID: ev.Actor.PlayerID,
		Type:          ev.Type,
		Payload:       ev.Payload,
	}
}

// SnapshotRecord is one captured GameState projection, tagged with
// why it was captured (LLM_DECISION_REQUESTED, TURN_ENDED, GAME_ENDED).
type SnapshotRecord struct {
	RunID     string         `json:"run_id"`
	TurnIndex int            `json:"turn_index"`
	Reason    string         `json:"reason"`
	Snapshot  model.Snapshot `json:"snapshot"`
}

// DecisionRecord is the persisted outcome of one resolved decision:
// the start/resolve pair spec.md's decisions log wants, collapsed to
// its final result since the per-attempt trail already lives in the
// pipeline's own artifact bundle.
type DecisionRecord struct {
	RunID          string `json:"run_id"`
	DecisionID     string `json:"decision_id"`
	Action         string `json:"action"`
	RetryUsed      bool   `json:"retry_used"`
	FallbackUsed   bool   `json:"fallback_used"`
	FallbackReason string `json:"fallback_reason,omitempty"`
	Attempts       int    `json:"attempts"`
	DurationMs     int64  `json:"duration_ms"`
}

func newDecisionRecord(runID, decisionID string, outcome pipeline.Outcome, durationMs int64) DecisionRecord {
	return DecisionRecord{
		RunID:          runID,
		DecisionID:     decisionID,
		Action:         string(outcome.Action.Name),
		RetryUsed:      outcome.RetryUsed,
		FallbackUsed:   outcome.FallbackUsed,
		FallbackReason: outcome.FallbackReason,
		Attempts:       len(outcome.Attempts),
		DurationMs:     durationMs,
	}
}
