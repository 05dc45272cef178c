package llmclient

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/engine"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/prompt"
)

func TestBuildChatRequestProducesOneToolPerLegalAction(t *testing.T) {
	e, _ := engine.New(engine.Config{
		RunID:   "llmclient-test",
		Seed:    3,
		Players: []engine.PlayerSpec{{ID: "p1", Name: "Ann"}, {ID: "p2", Name: "Bo"}},
	})
	res := e.AdvanceUntilDecision(200)
	require.NotNil(t, res.Decision)

	payload := prompt.Build(res.Decision, res.Snapshot, prompt.NewStore(), nil)
	req, err := BuildChatRequest("some-model", "you are playing monopoly", payload)
	require.NoError(t, err)
	require.Equal(t, "required", req.ToolChoice)
	require.Len(t, req.Tools, len(payload.Decision.LegalActions))
	for _, tool := range req.Tools {
		require.Equal(t, "function", tool.Type)
		props, ok := tool.Function.Parameters["properties"].(map[string]any)
		require.True(t, ok)
		require.Contains(t, props, "public_message")
		require.Contains(t, props, "private_thought")
	}
	require.Len(t, req.Messages, 2)
	require.Equal(t, "system", req.Messages[0].Role)
	require.Equal(t, "user", req.Messages[1].Role)
}
