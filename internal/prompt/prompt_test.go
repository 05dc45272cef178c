package prompt

import (
	"testing"

	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/engine"
	"github.com/stretchr/testify/require"
)

func TestBuildProducesCanonicalASCIIPayload(t *testing.T) {
	e, _ := engine.New(engine.Config{
		RunID:   "prompt-test",
		Seed:    5,
		Players: []engine.PlayerSpec{{ID: "p1", Name: "Ann"}, {ID: "p2", Name: "Bo"}},
	})
	res := e.AdvanceUntilDecision(200)
	require.NotNil(t, res.Decision)

	store := NewStore()
	store.RecordPublicMessage(0, "p1", "héllo wörld")
	store.RecordPrivateThought("p1", "thinking…")
	store.RecordNotableAction(0, "p2 bought BOARDWALK")

	payload := Build(res.Decision, res.Snapshot, store, nil)
	require.Equal(t, res.Decision.ActorPlayerID, payload.FullState.You.PlayerID)
	require.NotEmpty(t, payload.Decision.LegalActions)
	for _, la := range payload.Decision.LegalActions {
		require.Contains(t, la.Fields, "public_message")
		require.Contains(t, la.Fields, "private_thought")
	}

	raw, err := CanonicalJSON(payload)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "\n")
	require.NotContains(t, string(raw), "  ")
	for _, b := range raw {
		require.Less(t, b, byte(0x80))
	}
}

func TestCanonicalJSONIsStableAcrossMapKeyOrder(t *testing.T) {
	a := map[string]any{"b": 1, "a": 2, "c": 3}
	ja, err := CanonicalJSON(a)
	require.NoError(t, err)
	require.Equal(t, `{"a":2,"b":1,"c":3}`, string(ja))
}

func TestMemoryStoreTrimsToWindow(t *testing.T) {
	store := NewStore()
	for i := 0; i < 30; i++ {
		store.RecordPublicMessage(i, "p1", "msg")
		store.RecordNotableAction(i, "action")
	}
	for i := 0; i < 15; i++ {
		store.RecordPrivateThought("p1", "thought")
	}
	snap := store.SnapshotFor("p1")
	require.Len(t, snap.PublicMessages, maxPublicMessages)
	require.Len(t, snap.NotableActions, maxNotableActions)
	require.Len(t, snap.PrivateThoughts, maxPrivateThoughts)
}

func TestMemorySnapshotHidesOtherPlayersPrivateThoughts(t *testing.T) {
	store := NewStore()
	store.RecordPrivateThought("p1", "p1 thinks")
	store.RecordPrivateThought("p2", "p2 thinks")
	snap := store.SnapshotFor("p1")
	require.Equal(t, []string{"p1 thinks"}, snap.PrivateThoughts)
}
