package coordinator

import (
	"context"
	"time"

	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/decision"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/engine"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/event"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/model"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/pipeline"
)

// run is the single cooperative runner task for one active run: it
// alternates advance_until_decision(1) with pipeline resolution and
// apply_action until the game ends or the run is cancelled (spec.md
// §4.3). Every suspension point — before advancing, before the model
// call, and before committing the resolved action — waits on the
// pause gate first, so pause() takes effect between any two engine
// calls and never while the engine itself is mid-step (the engine
// never suspends internally).
func (c *Coordinator) run(ctx context.Context, runID string, eng *engine.Engine) {
	defer close(c.done)

	for {
		c.gate.wait(ctx)
		if ctx.Err() != nil {
			return
		}

		c.mu.Lock()
		if c.maxTurns > 0 && eng.GetSnapshot().TurnIndex >= c.maxTurns {
			eng.RequestStop("max_turns_reached")
		}
		res := eng.AdvanceUntilDecision(1)
		c.mu.Unlock()
		c.recordAndBroadcast(runID, res.Events)
		c.absorbNotableEvents(res.Events)

		if res.GameOver {
			c.finish(runID, res.Snapshot, res.Events)
			return
		}
		if res.Decision == nil {
			continue
		}

		c.recordSnapshot(runID, res.Decision.TurnIndex, "LLM_DECISION_REQUESTED", res.Snapshot)

		c.gate.wait(ctx)
		if ctx.Err() != nil {
			return
		}
		decisionStart := time.Now()
		outcome := c.resolveDecision(ctx, runID, eng, res.Decision, res.Snapshot)

		c.gate.wait(ctx)
		if ctx.Err() != nil {
			return
		}
		outcome = pipeline.Resume(res.Decision, outcome)
		elapsed := time.Since(decisionStart)
		if c.telemetry != nil {
			c.telemetry.RecordDecision(runID, res.Decision.DecisionID, outcome, elapsed.Milliseconds())
		}
		if c.metrics != nil {
			c.metrics.RecordDecision(string(res.Decision.Type), elapsed.Seconds(), outcome.RetryUsed, outcome.FallbackUsed, outcome.FallbackReason)
		}

		c.mu.Lock()
		applyRes, err := eng.ApplyAction(outcome.Action, nil)
		c.mu.Unlock()
		if err != nil {
			c.broadcaster.Broadcast(Frame{Type: FrameError, Message: err.Error()})
			continue
		}
		c.recordAndBroadcast(runID, applyRes.Events)
		c.absorbNotableEvents(applyRes.Events)

		if containsType(applyRes.Events, event.TypeTurnEnded) {
			c.recordSnapshot(runID, applyRes.Snapshot.TurnIndex, "TURN_ENDED", applyRes.Snapshot)
			if c.metrics != nil {
				c.metrics.RecordTurnPlayed()
			}
		}
		if applyRes.GameOver {
			c.finish(runID, applyRes.Snapshot, applyRes.Events)
			return
		}
	}
}

// resolveDecision runs the pipeline for dp and brackets it with the
// LLM_* events spec.md §6 requires, injected into the engine's own
// seq sequence via EmitExternal so the run's event numbering stays
// dense and gapless.
func (c *Coordinator) resolveDecision(ctx context.Context, runID string, eng *engine.Engine, dp *decision.Point, snap model.Snapshot) pipeline.Outcome {
	cfg := c.players[dp.ActorPlayerID]

	c.emitExternal(runID, eng, event.TypeLLMDecisionRequested, dp.ActorPlayerID, map[string]any{
		"decision_id":   dp.DecisionID,
		"decision_type": string(dp.Type),
	})

	outcome := c.pl.Decide(ctx, dp, snap, c.store, cfg)

	if outcome.Action.PublicMessage != "" {
		c.store.RecordPublicMessage(dp.TurnIndex, dp.ActorPlayerID, outcome.Action.PublicMessage)
		c.emitExternal(runID, eng, event.TypeLLMPublicMessage, dp.ActorPlayerID, map[string]any{
			"decision_id": dp.DecisionID,
			"text":        outcome.Action.PublicMessage,
		})
	}
	if outcome.Action.PrivateThought != "" {
		c.store.RecordPrivateThought(dp.ActorPlayerID, outcome.Action.PrivateThought)
		c.emitExternal(runID, eng, event.TypeLLMPrivateThought, dp.ActorPlayerID, map[string]any{
			"decision_id": dp.DecisionID,
			"text":        outcome.Action.PrivateThought,
		})
	}

	c.emitExternal(runID, eng, event.TypeLLMDecisionResponse, dp.ActorPlayerID, map[string]any{
		"decision_id":     dp.DecisionID,
		"action":          string(outcome.Action.Name),
		"retry_used":      outcome.RetryUsed,
		"fallback_used":   outcome.FallbackUsed,
		"fallback_reason": outcome.FallbackReason,
	})

	return outcome
}

func (c *Coordinator) emitExternal(runID string, eng *engine.Engine, typ, playerID string, payload map[string]any) {
	c.mu.Lock()
	ev := eng.EmitExternal(event.ActorPlayer, playerID, typ, payload)
	c.mu.Unlock()
	c.recordAndBroadcast(runID, []event.Event{ev})
}

func (c *Coordinator) recordSnapshot(runID string, turnIndex int, reason string, snap model.Snapshot) {
	c.broadcaster.Broadcast(Frame{Type: FrameSnapshot, Snapshot: snapshotPtr(snap)})
	if c.telemetry != nil {
		c.telemetry.RecordSnapshot(runID, turnIndex, reason, snap)
	}
}

func (c *Coordinator) finish(runID string, snap model.Snapshot, events []event.Event) {
	c.recordSnapshot(runID, snap.TurnIndex, "GAME_ENDED", snap)
	winner, reason := gameEndedOutcome(events)
	if c.telemetry != nil {
		c.telemetry.FinishRun(runID, RunSummary{
			RunID:       runID,
			TurnsPlayed: snap.TurnIndex,
			Winner:      winner,
			StopReason:  reason,
		})
	}
	if c.metrics != nil {
		c.metrics.RecordRunFinished(reason)
	}
	if c.log != nil {
		c.log.WithField("run_id", runID).WithField("winner", winner).WithField("reason", reason).Info("run finished")
	}
	if c.onFinish != nil {
		c.onFinish(runID, RunSummary{RunID: runID, TurnsPlayed: snap.TurnIndex, Winner: winner, StopReason: reason})
	}
}

// gameEndedOutcome pulls winner/reason out of the run's GAME_ENDED
// event rather than re-deriving them, since GameState doesn't expose
// either field on its Snapshot projection.
func gameEndedOutcome(events []event.Event) (winner, reason string) {
	for _, ev := range events {
		if ev.Type == event.TypeGameEnded {
			winner = str(ev.Payload["winner"])
			reason = str(ev.Payload["reason"])
		}
	}
	return winner, reason
}

// absorbNotableEvents folds a small set of engine events worth
// remembering across decisions into the prompt memory store, per
// spec.md §4.2's notable-action window.
func (c *Coordinator) absorbNotableEvents(events []event.Event) {
	for _, ev := range events {
		summary, ok := notableSummary(ev)
		if !ok {
			continue
		}
		c.store.RecordNotableAction(ev.TurnIndex, summary)
	}
}

func containsType(events []event.Event, typ string) bool {
	for _, ev := range events {
		if ev.Type == typ {
			return true
		}
	}
	return false
}
