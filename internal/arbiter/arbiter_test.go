package arbiter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/action"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/engine"
)

func decisionFixture(t *testing.T) *engine.Engine {
	t.Helper()
	e, _ := engine.New(engine.Config{
		RunID:   "arbiter-test",
		Seed:    11,
		Players: []engine.PlayerSpec{{ID: "p1", Name: "Ann"}, {ID: "p2", Name: "Bo"}},
	})
	return e
}

func TestParseResponsePrefersToolCalls(t *testing.T) {
	raw := []byte(`{"tool_calls":[{"function":{"name":"end_turn","arguments":"{\"public_message\":\"gg\"}"}}]}`)
	parsed, err := ParseResponse(raw)
	require.NoError(t, err)
	require.Equal(t, "end_turn", parsed.ToolName)
	require.Equal(t, "gg", parsed.PublicMessage)
}

func TestParseResponseFallsBackToFunctionCall(t *testing.T) {
	raw := []byte(`{"function_call":{"name":"end_turn","arguments":"{}"}}`)
	parsed, err := ParseResponse(raw)
	require.NoError(t, err)
	require.Equal(t, "end_turn", parsed.ToolName)
}

func TestParseResponseErrorsWithNoToolCall(t *testing.T) {
	_, err := ParseResponse([]byte(`{"content":"I pass"}`))
	require.Error(t, err)
}

func TestParseResponseErrorsOnInvalidArgumentsJSON(t *testing.T) {
	raw := []byte(`{"tool_calls":[{"function":{"name":"end_turn","arguments":"not-json"}}]}`)
	_, err := ParseResponse(raw)
	require.Error(t, err)
}

func TestValidateRejectsActionNotLegalForDecision(t *testing.T) {
	e := decisionFixture(t)
	res := e.AdvanceUntilDecision(200)
	require.NotNil(t, res.Decision)

	_, err := Validate(res.Decision, &ParsedToolCall{ToolName: "accept_trade", RawArguments: "{}"})
	require.Error(t, err)
}

func TestValidateRejectsMissingRequiredArg(t *testing.T) {
	e := decisionFixture(t)
	var dp = e.AdvanceUntilDecision(200).Decision
	for dp.Type != "AUCTION_BID_DECISION" && !e.IsGameOver() {
		fallback := Fallback(dp)
		res, err := e.ApplyAction(fallback, nil)
		require.NoError(t, err)
		if res.Decision == nil {
			break
		}
		dp = res.Decision
	}
	if dp == nil || dp.Type != "AUCTION_BID_DECISION" {
		t.Skip("no auction arose in this deterministic walk")
	}
	_, err := Validate(dp, &ParsedToolCall{ToolName: "bid_auction", RawArguments: "{}"})
	require.Error(t, err)
}

func TestValidateAcceptsWellFormedAction(t *testing.T) {
	e := decisionFixture(t)
	res := e.AdvanceUntilDecision(200)
	require.NotNil(t, res.Decision)

	name := res.Decision.LegalActions[0].Name
	req, err := Validate(res.Decision, &ParsedToolCall{ToolName: name, RawArguments: "{}"})
	require.NoError(t, err)
	require.Equal(t, action.Name(name), req.Name)
	require.Equal(t, res.Decision.DecisionID, req.DecisionID)
}

func TestFallbackIsAlwaysLegal(t *testing.T) {
	e := decisionFixture(t)
	res := e.AdvanceUntilDecision(200)
	for i := 0; i < 80 && res.Decision != nil && !res.GameOver; i++ {
		dp := res.Decision
		req := Fallback(dp)
		require.True(t, dp.HasAction(string(req.Name)), "fallback %s not legal for %s", req.Name, dp.Type)
		var err error
		res, err = e.ApplyAction(req, nil)
		require.NoError(t, err)
	}
}
