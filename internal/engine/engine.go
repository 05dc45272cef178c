// Package engine is the rules engine: a pure state machine over
// board, players, bank, auctions, trades, cards, and payment
// obligations, exposing the advance_until_decision / apply_action
// protocol from spec.md §4.1. It is single-threaded and non-reentrant
// (spec.md §5) — callers must serialize AdvanceUntilDecision and
// ApplyAction themselves; the engine does not lock internally.
package engine

import (
	"fmt"

	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/action"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/apperrors"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/board"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/decision"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/event"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/model"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/rng"
)

// Engine is the referee: it owns the GameState exclusively.
type Engine struct {
	state  *model.GameState
	events *event.Allocator
	rng    *rng.Source

	pending          *decision.Point
	appliedDecisions map[string]bool
	decisionSeq      int

	buffer []event.Event

	// pendingRoll carries a dice roll already consumed for a different
	// purpose (escaping jail on a double) into the next movement step,
	// so resolveMove does not roll twice for the same turn.
	pendingRoll *[2]int
}

// Config configures a new Engine.
type Config struct {
	RunID     string
	Seed      int64
	Players   []PlayerSpec
	StartTSMs int64
	TSStepMs  int64
}

// PlayerSpec describes one seat at creation time.
type PlayerSpec struct {
	ID   string
	Name string
}

// New creates a fresh Engine and its initial GameState, matching the
// original's create_initial_state.
func New(cfg Config) (*Engine, []event.Event) {
	state := &model.GameState{
		RunID:     cfg.RunID,
		Seed:      cfg.Seed,
		TurnIndex: 0,
		Phase:     model.PhaseStartTurn,
		Bank:      model.NewBank(),
		Board:     model.NewBoard(),
		JailCardOrigin: make(map[string][]string),
	}
	for _, p := range cfg.Players {
		state.Players = append(state.Players, model.NewPlayer(p.ID, p.Name))
	}
	if len(state.Players) > 0 {
		state.ActivePlayerID = state.Players[0].ID
	}

	e := &Engine{
		state:            state,
		events:           event.NewAllocator(cfg.RunID, cfg.StartTSMs, cfg.TSStepMs),
		rng:              rng.New(cfg.Seed),
		appliedDecisions: make(map[string]bool),
	}
	e.state.ChanceDeck = rng.Shuffle(e.rng, defaultChanceDeck())
	e.state.CommunityChestDeck = rng.Shuffle(e.rng, defaultCommunityChestDeck())

	e.emit(event.ActorEngine, "", event.TypeGameStarted, map[string]any{
		"seed":    cfg.Seed,
		"players": playerIDs(state.Players),
	})

	initial := append([]event.Event(nil), e.buffer...)
	e.buffer = nil
	return e, initial
}

func playerIDs(players []*model.Player) []string {
	out := make([]string, len(players))
	for i, p := range players {
		out[i] = p.ID
	}
	return out
}

// emit allocates and buffers a new event whose actor is kind and
// playerID exactly as given (playerID may be empty).
func (e *Engine) emit(kind event.ActorKind, playerID, typ string, payload map[string]any) event.Event {
	ev := e.events.New(e.state.TurnIndex, event.Actor{Kind: kind, PlayerID: playerID}, typ, payload)
	e.buffer = append(e.buffer, ev)
	return ev
}

func (e *Engine) drain() []event.Event {
	out := e.buffer
	e.buffer = nil
	return out
}

// StepResult is returned by AdvanceUntilDecision.
type StepResult struct {
	Events   []event.Event
	Decision *decision.Point
	Snapshot model.Snapshot
	GameOver bool
}

// AdvanceUntilDecision runs internal steps until a decision point is
// produced, the game ends, or maxSteps internal turns have elapsed
// with no decision required (spec.md §4.1).
func (e *Engine) AdvanceUntilDecision(maxSteps int) StepResult {
	if maxSteps <= 0 {
		maxSteps = 1
	}
	for steps := 0; steps < maxSteps; steps++ {
		if e.pending != nil || e.isGameOver() {
			break
		}
		next := e.progress()
		if next != nil {
			e.pending = next
			break
		}
		if e.isGameOver() {
			break
		}
	}
	return StepResult{
		Events:   e.drain(),
		Decision: e.pending,
		Snapshot: e.state.ToSnapshot(),
		GameOver: e.isGameOver(),
	}
}

// ApplyAction consumes the pending decision, validates and applies
// req, and may chain directly into the next decision in the same
// call (spec.md §4.1).
func (e *Engine) ApplyAction(req action.Request, meta map[string]any) (StepResult, error) {
	if e.pending == nil {
		return StepResult{}, apperrors.NewIllegalAction("no decision is pending")
	}
	if req.DecisionID != e.pending.DecisionID {
		return StepResult{}, apperrors.NewIllegalAction("decision id mismatch: pending=%s got=%s", e.pending.DecisionID, req.DecisionID)
	}
	if e.appliedDecisions[req.DecisionID] {
		return StepResult{}, apperrors.NewIllegalAction("decision already applied: %s", req.DecisionID)
	}
	if !e.pending.HasAction(string(req.Name)) {
		return StepResult{}, apperrors.NewIllegalAction("action %s is not legal for decision %s", req.Name, req.DecisionID)
	}

	dp := e.pending
	if err := e.dispatchAction(dp, req); err != nil {
		return StepResult{}, err
	}
	e.appliedDecisions[req.DecisionID] = true
	e.pending = nil

	// Chain forward: keep resolving internal progression until the
	// next decision is required, within the same call.
	for {
		if e.isGameOver() {
			break
		}
		next := e.progress()
		if next != nil {
			e.pending = next
			break
		}
		if e.isGameOver() {
			break
		}
	}

	return StepResult{
		Events:   e.drain(),
		Decision: e.pending,
		Snapshot: e.state.ToSnapshot(),
		GameOver: e.isGameOver(),
	}, nil
}

// EmitExternal allocates and returns one engine-numbered event for an
// occurrence the coordinator/pipeline layer produces out of band (an
// LLM request/response/message record): it keeps those events in the
// same dense seq sequence as engine-authored events without exposing
// the allocator itself.
func (e *Engine) EmitExternal(kind event.ActorKind, playerID, typ string, payload map[string]any) event.Event {
	e.emit(kind, playerID, typ, payload)
	return e.drain()[0]
}

// GetSnapshot returns a read-only projection of the current state.
func (e *Engine) GetSnapshot() model.Snapshot { return e.state.ToSnapshot() }

// IsGameOver reports whether the game has ended.
func (e *Engine) IsGameOver() bool { return e.isGameOver() }

func (e *Engine) isGameOver() bool {
	return e.state.Phase == model.PhaseGameOver
}

// RequestStop records a stop reason; the next progress() transitions
// to GAME_OVER.
func (e *Engine) RequestStop(reason string) {
	e.state.StopReason = reason
}

// PendingDecision returns the currently pending decision, if any.
func (e *Engine) PendingDecision() *decision.Point { return e.pending }

func (e *Engine) nextDecisionID() string {
	e.decisionSeq++
	return fmt.Sprintf("%s-d%05d", e.state.RunID, e.decisionSeq)
}

func (e *Engine) findPlayer(id string) *model.Player {
	return e.state.PlayerByID(id)
}

func (e *Engine) spaceKey(idx int) string { return board.SpaceKeyByIndex[idx] }

func (e *Engine) spaceIndex(key string) (int, bool) {
	idx, ok := board.SpaceIndexByKey[key]
	return idx, ok
}
