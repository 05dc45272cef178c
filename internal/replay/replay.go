// Package replay implements the Replay Driver: pure re-execution of a
// previously recorded action stream against a fresh Engine instance
// (spec.md §2 component E). It has no dependency on the pipeline or
// telemetry packages — it only needs the same inputs the original run
// started from plus the actions that were actually applied.
package replay

import (
	"fmt"

	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/action"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/engine"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/event"
)

// Config is the complete set of inputs the Determinism law (spec.md
// §5/§8) requires to be identical across two runs: {seed, players,
// actions[], max_turns, start_ts_ms, ts_step_ms}.
type Config struct {
	RunID     string
	Seed      int64
	Players   []engine.PlayerSpec
	StartTSMs int64
	TSStepMs  int64

	// MaxStepsPerAdvance bounds each internal AdvanceUntilDecision
	// call, mirroring the budget the original run used. Defaults to
	// 500 when zero or negative.
	MaxStepsPerAdvance int
}

// Result is the full, ordered event sequence a replay produced, plus
// whether the game reached GAME_OVER and how many recorded actions
// were left unconsumed. A decision still pending when the action
// stream ran out is not included.
type Result struct {
	Events    []event.Event
	GameOver  bool
	Remaining int // count of recorded actions not consumed, if the game ended first
}

// Run re-executes actions, in order, against a brand-new Engine built
// from cfg, applying exactly one action per decision the engine
// produces. It never inspects telemetry or artifacts — only the
// actions slice and the engine's own AdvanceUntilDecision/ApplyAction
// protocol, so its behavior depends solely on cfg and actions.
func Run(cfg Config, actions []action.Request) (Result, error) {
	maxSteps := cfg.MaxStepsPerAdvance
	if maxSteps <= 0 {
		maxSteps = 500
	}

	e, initial := engine.New(engine.Config{
		RunID:     cfg.RunID,
		Seed:      cfg.Seed,
		Players:   cfg.Players,
		StartTSMs: cfg.StartTSMs,
		TSStepMs:  cfg.TSStepMs,
	})

	all := append([]event.Event(nil), initial...)

	step := e.AdvanceUntilDecision(maxSteps)
	all = append(all, step.Events...)

	consumed := 0
	for !step.GameOver && step.Decision != nil {
		if consumed >= len(actions) {
			// The recorded stream ran dry before the game ended; this
			// is not an error on its own (a caller may be replaying a
			// prefix), but the caller should check Remaining.
			break
		}
		req := actions[consumed]
		if req.DecisionID != step.Decision.DecisionID {
			return Result{Events: all}, fmt.Errorf(
				"replay diverged at action %d: recorded decision_id %q but engine is awaiting %q",
				consumed, req.DecisionID, step.Decision.DecisionID)
		}
		var err error
		step, err = e.ApplyAction(req, nil)
		if err != nil {
			return Result{Events: all}, fmt.Errorf("replay failed to apply action %d (%s): %w", consumed, req.Name, err)
		}
		all = append(all, step.Events...)
		consumed++
	}

	return Result{
		Events:    all,
		GameOver:  e.IsGameOver(),
		Remaining: len(actions) - consumed,
	}, nil
}

// Equal reports whether two event sequences are identical for the
// purposes of the Determinism law (spec.md §5/§8): every field
// matches, including the deterministic seq/ts_ms allocation. Engine
// events carry no wall-clock timestamp of their own — that field only
// exists on decision-log records in the telemetry layer and is out of
// scope here — so this is a plain structural comparison.
func Equal(a, b []event.Event) (bool, string) {
	if len(a) != len(b) {
		return false, fmt.Sprintf("length mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if diff := diffEvent(a[i], b[i]); diff != "" {
			return false, fmt.Sprintf("event %d: %s", i, diff)
		}
	}
	return true, ""
}

func diffEvent(x, y event.Event) string {
	switch {
	case x.SchemaVersion != y.SchemaVersion:
		return fmt.Sprintf("schema_version %q vs %q", x.SchemaVersion, y.SchemaVersion)
	case x.RunID != y.RunID:
		return fmt.Sprintf("run_id %q vs %q", x.RunID, y.RunID)
	case x.EventID != y.EventID:
		return fmt.Sprintf("event_id %q vs %q", x.EventID, y.EventID)
	case x.Seq != y.Seq:
		return fmt.Sprintf("seq %d vs %d", x.Seq, y.Seq)
	case x.TurnIndex != y.TurnIndex:
		return fmt.Sprintf("turn_index %d vs %d", x.TurnIndex, y.TurnIndex)
	case x.TSMs != y.TSMs:
		return fmt.Sprintf("ts_ms %d vs %d", x.TSMs, y.TSMs)
	case x.Actor != y.Actor:
		return fmt.Sprintf("actor %+v vs %+v", x.Actor, y.Actor)
	case x.Type != y.Type:
		return fmt.Sprintf("type %q vs %q", x.Type, y.Type)
	}
	if dp := diffPayload(x.Payload, y.Payload); dp != "" {
		return dp
	}
	return ""
}

func diffPayload(x, y map[string]any) string {
	if len(x) != len(y) {
		return fmt.Sprintf("payload key count %d vs %d", len(x), len(y))
	}
	for k, xv := range x {
		yv, ok := y[k]
		if !ok {
			return fmt.Sprintf("payload missing key %q", k)
		}
		if fmt.Sprint(xv) != fmt.Sprint(yv) {
			return fmt.Sprintf("payload[%q] %v vs %v", k, xv, yv)
		}
	}
	return ""
}
