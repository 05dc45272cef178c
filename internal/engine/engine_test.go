package engine

import (
	"testing"

	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/action"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/decision"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, initial := New(Config{
		RunID:     "test-run",
		Seed:      42,
		Players:   []PlayerSpec{{ID: "p1", Name: "Ann"}, {ID: "p2", Name: "Bo"}},
		StartTSMs: 0,
		TSStepMs:  10,
	})
	require.NotEmpty(t, initial)
	return e
}

func TestNewGameStartsAtStartTurn(t *testing.T) {
	e := newTestEngine(t)
	snap := e.GetSnapshot()
	require.Equal(t, "p1", snap.ActivePlayerID)
	require.Len(t, snap.Players, 2)
	for _, p := range snap.Players {
		require.Equal(t, 1500, p.Cash)
	}
}

func TestAdvanceUntilDecisionProducesDecision(t *testing.T) {
	e := newTestEngine(t)
	res := e.AdvanceUntilDecision(200)
	require.NotNil(t, res.Decision)
	require.False(t, res.GameOver)
}

func TestApplyActionRejectsWrongDecisionID(t *testing.T) {
	e := newTestEngine(t)
	res := e.AdvanceUntilDecision(200)
	require.NotNil(t, res.Decision)

	_, err := e.ApplyAction(action.Request{
		SchemaVersion: "v1",
		DecisionID:    "bogus",
		Name:          action.EndTurn,
	}, nil)
	require.Error(t, err)
}

func TestApplyActionRejectsIllegalActionName(t *testing.T) {
	e := newTestEngine(t)
	res := e.AdvanceUntilDecision(200)
	require.NotNil(t, res.Decision)

	_, err := e.ApplyAction(action.Request{
		SchemaVersion: "v1",
		DecisionID:    res.Decision.DecisionID,
		Name:          action.UseGetOutOfJailCard,
	}, nil)
	if res.Decision.Type != decision.Jail {
		require.Error(t, err)
	}
}

func TestApplyActionCannotReplayDecision(t *testing.T) {
	e := newTestEngine(t)
	res := e.AdvanceUntilDecision(200)
	require.NotNil(t, res.Decision)

	dp := res.Decision
	var name action.Name
	for _, la := range dp.LegalActions {
		if la.Name == string(action.EndTurn) {
			name = action.EndTurn
			break
		}
	}
	if name == "" {
		return // this decision has no end_turn action to replay in this scenario
	}

	first, err := e.ApplyAction(action.Request{SchemaVersion: "v1", DecisionID: dp.DecisionID, Name: name}, nil)
	require.NoError(t, err)
	_ = first

	_, err = e.ApplyAction(action.Request{SchemaVersion: "v1", DecisionID: dp.DecisionID, Name: name}, nil)
	require.Error(t, err)
}

func TestBankConservationHoldsAfterManySteps(t *testing.T) {
	e := newTestEngine(t)
	for i := 0; i < 50 && !e.IsGameOver(); i++ {
		res := e.AdvanceUntilDecision(500)
		if res.Decision == nil {
			break
		}
		dp := res.Decision
		name := action.Name(dp.LegalActions[0].Name)
		req := action.Request{SchemaVersion: "v1", DecisionID: dp.DecisionID, Name: name}
		if name == action.BidAuction {
			req.Args.BidAmount = dp.Focus["high_bid"].(int) + 1
		}
		if _, err := e.ApplyAction(req, nil); err != nil {
			// some synthetic first-legal-action choices are not affordable;
			// fall back to the last legal action instead.
			last := action.Name(dp.LegalActions[len(dp.LegalActions)-1].Name)
			req.Name = last
			if _, err2 := e.ApplyAction(req, nil); err2 != nil {
				break
			}
		}
	}
	require.Equal(t, 32+12*5, e.state.BankConservationTotal())
}

func TestRollDiceIsDeterministicForSeed(t *testing.T) {
	e1, _ := New(Config{RunID: "r1", Seed: 7, Players: []PlayerSpec{{ID: "p1"}, {ID: "p2"}}})
	e2, _ := New(Config{RunID: "r2", Seed: 7, Players: []PlayerSpec{{ID: "p1"}, {ID: "p2"}}})
	d1a, d1b := e1.rollDice()
	d2a, d2b := e2.rollDice()
	require.Equal(t, d1a, d2a)
	require.Equal(t, d1b, d2b)
}
