// Package summary derives the statistics spec.md's component L wants
// from a run's persisted logs: a per-player financial snapshot, the
// property acquisition timeline, and decision-resolution stats
// (fallback rate, retry rate, latency). It is grounded on the
// original monopoly_telemetry.summary module's build_summary, adapted
// to read our own event/decision record shapes rather than replaying
// the python engine's event vocabulary.
package summary

import (
	"sort"

	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/event"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/model"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/telemetry"
)

// PlayerReport is one player's final financial standing.
type PlayerReport struct {
	PlayerID         string `json:"player_id"`
	Name             string `json:"name"`
	Cash             int    `json:"cash"`
	NetWorthEstimate int    `json:"net_worth_estimate"`
	Bankrupt         bool   `json:"bankrupt"`
	TurnsPlayed      int    `json:"turns_played"`
}

// DecisionStats aggregates how the pipeline resolved decisions over
// the run.
type DecisionStats struct {
	TotalDecisions  int   `json:"total_decisions"`
	Retries         int   `json:"retries"`
	Fallbacks       int   `json:"fallbacks"`
	AvgLatencyMs    int64 `json:"avg_latency_ms"`
	MedianLatencyMs int64 `json:"median_latency_ms"`
}

// AcquisitionRecord is one property changing hands.
type AcquisitionRecord struct {
	TurnIndex int    `json:"turn_index"`
	PlayerID  string `json:"player_id"`
	SpaceKey  string `json:"space_key"`
	Method    string `json:"method"` // BUY, AUCTION, TRADE, BANKRUPTCY
}

// Report is the full derived-statistics bundle written as the run's
// summary.json, supplementing coordinator.RunSummary's minimal fields.
type Report struct {
	RunID               string                  `json:"run_id"`
	WinnerID            string                  `json:"winner_player_id"`
	StopReason          string                  `json:"reason"`
	TurnCount           int                     `json:"turn_count"`
	Players             map[string]PlayerReport `json:"players"`
	DecisionStats       DecisionStats           `json:"decision_stats"`
	AcquisitionTimeline []AcquisitionRecord     `json:"property_acquisition_timeline"`
}

// LogReader is the minimal read-back surface an in-process telemetry
// backend (Memory, JSONL) exposes so BuildFromReader can derive a
// Report without the telemetry package importing this one back.
type LogReader interface {
	Events() []telemetry.EventRecord
	Decisions() []telemetry.DecisionRecord
	LatestSnapshot(runID string) model.Snapshot
}

// BuildFromReader derives a Report by reading back everything r has
// persisted for runID, using r's own latest recorded snapshot (the
// GAME_ENDED one, once the run has finished) as the final state.
func BuildFromReader(runID, winnerID, stopReason string, r LogReader) Report {
	return Build(runID, winnerID, stopReason, r.LatestSnapshot(runID), r.Events(), r.Decisions())
}

// Build derives a Report from the run's final snapshot plus its
// persisted event and decision logs.
func Build(runID, winnerID, stopReason string, final model.Snapshot, events []telemetry.EventRecord, decisions []telemetry.DecisionRecord) Report {
	return Report{
		RunID:               runID,
		WinnerID:            winnerID,
		StopReason:          stopReason,
		TurnCount:           final.TurnIndex,
		Players:             buildPlayerReports(final, events),
		DecisionStats:       buildDecisionStats(decisions),
		AcquisitionTimeline: buildAcquisitionTimeline(final, events),
	}
}

func spaceKeysByIndex(final model.Snapshot) map[int]string {
	keys := make(map[int]string, len(final.Board))
	for _, sp := range final.Board {
		keys[sp.Index] = sp.SpaceKey
	}
	return keys
}

func buildPlayerReports(final model.Snapshot, events []telemetry.EventRecord) map[string]PlayerReport {
	priceBySpace := make(map[string]int, len(final.Board))
	mortgagedBySpace := make(map[string]bool, len(final.Board))
	ownerBySpace := make(map[string]string, len(final.Board))
	for _, sp := range final.Board {
		priceBySpace[sp.SpaceKey] = sp.Price
		mortgagedBySpace[sp.SpaceKey] = sp.Mortgaged
		ownerBySpace[sp.SpaceKey] = sp.OwnerID
	}

	propertyValue := make(map[string]int)
	mortgageValue := make(map[string]int)
	for key, owner := range ownerBySpace {
		if owner == "" {
			continue
		}
		price := priceBySpace[key]
		propertyValue[owner] += price
		if mortgagedBySpace[key] {
			mortgageValue[owner] += price / 2
		}
	}

	turnsPlayed := turnsPlayedByPlayer(events)

	reports := make(map[string]PlayerReport, len(final.Players))
	for _, p := range final.Players {
		reports[p.PlayerID] = PlayerReport{
			PlayerID:         p.PlayerID,
			Name:             p.Name,
			Cash:             p.Cash,
			NetWorthEstimate: p.Cash + propertyValue[p.PlayerID] - mortgageValue[p.PlayerID],
			Bankrupt:         p.Bankrupt,
			TurnsPlayed:      turnsPlayed[p.PlayerID],
		}
	}
	return reports
}

// turnsPlayedByPlayer counts, for each turn index, the first
// LLM_DECISION_REQUESTED actor as that turn's player, mirroring the
// original's turn_first_actor bookkeeping.
func turnsPlayedByPlayer(events []telemetry.EventRecord) map[string]int {
	counts := make(map[string]int)
	seenTurn := make(map[int]bool)
	for _, ev := range events {
		if ev.Type != event.TypeLLMDecisionRequested {
			continue
		}
		if seenTurn[ev.TurnIndex] {
			continue
		}
		seenTurn[ev.TurnIndex] = true
		counts[ev.ActorPlayerID]++
	}
	return counts
}

// buildAcquisitionTimeline walks the event log for ownership changes,
// disambiguating a direct buy from an auction win by checking whether
// the immediately preceding event is that property's AUCTION_ENDED.
func buildAcquisitionTimeline(final model.Snapshot, events []telemetry.EventRecord) []AcquisitionRecord {
	spaceKeys := spaceKeysByIndex(final)
	var timeline []AcquisitionRecord
	for i, ev := range events {
		switch ev.Type {
		case event.TypePropertyPurchased:
			method := "BUY"
			if i > 0 && events[i-1].Type == event.TypeAuctionEnded && str(events[i-1].Payload["reason"]) == "sold" {
				method = "AUCTION"
			}
			timeline = append(timeline, AcquisitionRecord{
				TurnIndex: ev.TurnIndex,
				PlayerID:  str(ev.Payload["player_id"]),
				SpaceKey:  spaceKeyFromIndex(ev.Payload, spaceKeys),
				Method:    method,
			})
		case event.TypePropertyTransferred:
			method := ""
			switch str(ev.Payload["reason"]) {
			case "trade":
				method = "TRADE"
			case "bankruptcy":
				method = "BANKRUPTCY"
			default:
				continue
			}
			timeline = append(timeline, AcquisitionRecord{
				TurnIndex: ev.TurnIndex,
				PlayerID:  str(ev.Payload["to_player_id"]),
				SpaceKey:  str(ev.Payload["space_key"]),
				Method:    method,
			})
		}
	}
	return timeline
}

func buildDecisionStats(decisions []telemetry.DecisionRecord) DecisionStats {
	stats := DecisionStats{TotalDecisions: len(decisions)}
	if len(decisions) == 0 {
		return stats
	}

	latencies := make([]int64, 0, len(decisions))
	var total int64
	for _, d := range decisions {
		if d.RetryUsed {
			stats.Retries++
		}
		if d.FallbackUsed {
			stats.Fallbacks++
		}
		latencies = append(latencies, d.DurationMs)
		total += d.DurationMs
	}

	stats.AvgLatencyMs = total / int64(len(latencies))
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	mid := len(latencies) / 2
	if len(latencies)%2 == 1 {
		stats.MedianLatencyMs = latencies[mid]
	} else {
		stats.MedianLatencyMs = (latencies[mid-1] + latencies[mid]) / 2
	}
	return stats
}

func spaceKeyFromIndex(payload map[string]any, spaceKeys map[int]string) string {
	idx, ok := payload["space_index"].(float64)
	if !ok {
		if n, ok2 := payload["space_index"].(int); ok2 {
			return spaceKeys[n]
		}
		return ""
	}
	return spaceKeys[int(idx)]
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
