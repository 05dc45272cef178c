package replay

import (
	"testing"

	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/action"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/engine"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/event"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		RunID:     "replay-test",
		Seed:      99,
		Players:   []engine.PlayerSpec{{ID: "p1", Name: "Ann"}, {ID: "p2", Name: "Bo"}},
		StartTSMs: 1_700_000_000_000,
		TSStepMs:  5,
	}
}

// recordRun drives a fresh engine for up to maxDecisions decisions,
// always choosing the first legal action (falling back to the last on
// rejection, same policy engine_test.go uses), and returns every event
// produced plus the action stream that produced them.
func recordRun(t *testing.T, cfg Config, maxDecisions int) ([]event.Event, []action.Request) {
	t.Helper()
	e, initial := engine.New(engine.Config{
		RunID:     cfg.RunID,
		Seed:      cfg.Seed,
		Players:   cfg.Players,
		StartTSMs: cfg.StartTSMs,
		TSStepMs:  cfg.TSStepMs,
	})
	events := append([]event.Event(nil), initial...)
	var actions []action.Request

	step := e.AdvanceUntilDecision(500)
	events = append(events, step.Events...)

	for i := 0; i < maxDecisions && !step.GameOver && step.Decision != nil; i++ {
		dp := step.Decision
		name := action.Name(dp.LegalActions[0].Name)
		req := action.Request{SchemaVersion: "v1", DecisionID: dp.DecisionID, Name: name}
		if name == action.BidAuction {
			req.Args.BidAmount = dp.Focus["high_bid"].(int) + 1
		}
		applied, err := e.ApplyAction(req, nil)
		if err != nil {
			last := action.Name(dp.LegalActions[len(dp.LegalActions)-1].Name)
			req.Name = last
			applied, err = e.ApplyAction(req, nil)
			if err != nil {
				break
			}
		}
		actions = append(actions, req)
		events = append(events, applied.Events...)
		step = applied
	}

	return events, actions
}

func TestReplayReproducesRecordedEventSequence(t *testing.T) {
	cfg := testConfig()
	recorded, actions := recordRun(t, cfg, 60)
	require.NotEmpty(t, recorded)
	require.NotEmpty(t, actions)

	result, err := Run(cfg, actions)
	require.NoError(t, err)
	require.Equal(t, 0, result.Remaining)

	equal, diff := Equal(recorded, result.Events)
	require.True(t, equal, diff)
}

func TestReplayDivergesOnMismatchedDecisionID(t *testing.T) {
	cfg := testConfig()
	_, actions := recordRun(t, cfg, 5)
	require.NotEmpty(t, actions)

	tampered := append([]action.Request(nil), actions...)
	tampered[0].DecisionID = "bogus-decision-id"

	_, err := Run(cfg, tampered)
	require.Error(t, err)
}

func TestReplayIsStableAcrossTwoIndependentRecordings(t *testing.T) {
	cfg := testConfig()
	eventsA, actionsA := recordRun(t, cfg, 40)
	eventsB, actionsB := recordRun(t, cfg, 40)

	equal, diff := Equal(eventsA, eventsB)
	require.True(t, equal, diff)
	require.Equal(t, len(actionsA), len(actionsB))

	resultA, err := Run(cfg, actionsA)
	require.NoError(t, err)
	resultB, err := Run(cfg, actionsB)
	require.NoError(t, err)

	equal, diff = Equal(resultA.Events, resultB.Events)
	require.True(t, equal, diff)
}
