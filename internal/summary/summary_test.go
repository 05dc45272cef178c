package summary

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/event"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/model"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/telemetry"
)

func finalSnapshot() model.Snapshot {
	return model.Snapshot{
		RunID:     "run-1",
		TurnIndex: 10,
		Players: []model.PlayerSnapshot{
			{PlayerID: "p1", Name: "Ann", Cash: 1200},
			{PlayerID: "p2", Name: "Bo", Cash: 0, Bankrupt: true},
		},
		Board: []model.SpaceSnapshot{
			{Index: 1, SpaceKey: "MEDITERRANEAN_AVENUE", Price: 60, OwnerID: "p1"},
			{Index: 3, SpaceKey: "BALTIC_AVENUE", Price: 60, OwnerID: "p1", Mortgaged: true},
		},
	}
}

func TestBuildPlayerReportsComputesNetWorth(t *testing.T) {
	events := []telemetry.EventRecord{
		{Type: event.TypeLLMDecisionRequested, TurnIndex: 0, ActorPlayerID: "p1"},
		{Type: event.TypeLLMDecisionRequested, TurnIndex: 1, ActorPlayerID: "p2"},
	}
	report := Build("run-1", "p1", "last_player_standing", finalSnapshot(), events, nil)

	p1 := report.Players["p1"]
	require.Equal(t, 1200, p1.Cash)
	require.Equal(t, 1200+60+30, p1.NetWorthEstimate)
	require.Equal(t, 1, p1.TurnsPlayed)
	require.False(t, p1.Bankrupt)

	p2 := report.Players["p2"]
	require.True(t, p2.Bankrupt)
	require.Equal(t, 1, p2.TurnsPlayed)
}

func TestBuildAcquisitionTimelineDistinguishesAuctionFromBuy(t *testing.T) {
	events := []telemetry.EventRecord{
		{Type: event.TypePropertyPurchased, TurnIndex: 0, Payload: map[string]any{"player_id": "p1", "space_index": 1, "price": 60}},
		{Type: event.TypeAuctionEnded, TurnIndex: 1, Payload: map[string]any{"reason": "sold", "winner_player_id": "p2", "space_index": 3}},
		{Type: event.TypePropertyPurchased, TurnIndex: 1, Payload: map[string]any{"player_id": "p2", "space_index": 3, "price": 40}},
	}
	report := Build("run-1", "", "", finalSnapshot(), events, nil)

	require.Len(t, report.AcquisitionTimeline, 2)
	require.Equal(t, "BUY", report.AcquisitionTimeline[0].Method)
	require.Equal(t, "MEDITERRANEAN_AVENUE", report.AcquisitionTimeline[0].SpaceKey)
	require.Equal(t, "AUCTION", report.AcquisitionTimeline[1].Method)
	require.Equal(t, "BALTIC_AVENUE", report.AcquisitionTimeline[1].SpaceKey)
}

func TestBuildDecisionStatsComputesRatesAndLatency(t *testing.T) {
	decisions := []telemetry.DecisionRecord{
		{DecisionID: "d1", RetryUsed: true, DurationMs: 100},
		{DecisionID: "d2", FallbackUsed: true, DurationMs: 300},
		{DecisionID: "d3", DurationMs: 200},
	}
	report := Build("run-1", "", "", finalSnapshot(), nil, decisions)

	require.Equal(t, 3, report.DecisionStats.TotalDecisions)
	require.Equal(t, 1, report.DecisionStats.Retries)
	require.Equal(t, 1, report.DecisionStats.Fallbacks)
	require.Equal(t, int64(200), report.DecisionStats.AvgLatencyMs)
	require.Equal(t, int64(200), report.DecisionStats.MedianLatencyMs)
}

func TestBuildDecisionStatsHandlesEmpty(t *testing.T) {
	report := Build("run-1", "", "", finalSnapshot(), nil, nil)
	require.Equal(t, 0, report.DecisionStats.TotalDecisions)
	require.Equal(t, int64(0), report.DecisionStats.AvgLatencyMs)
}
