package prompt

import (
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/board"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/decision"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/model"
)

// BuildFocus produces the decision_focus scenario object for dp
// (spec.md §4.2): a per-decision-type object built from the engine's
// raw decision.Point.Focus plus whatever static board data and
// snapshot ownership context the scenario calls for.
func BuildFocus(dp *decision.Point, snap model.Snapshot) map[string]any {
	switch dp.Type {
	case decision.BuyOrAuction:
		return buyOrAuctionFocus(dp, snap)
	case decision.Jail:
		return jailFocus(dp)
	case decision.PostTurnAction:
		return postTurnFocus(dp, snap)
	case decision.AuctionBid:
		return auctionBidFocus(dp)
	case decision.TradeResponse, decision.TradePropose:
		return tradeFocus(dp)
	case decision.Liquidation:
		return liquidationFocus(dp)
	default:
		return map[string]any{}
	}
}

func buyOrAuctionFocus(dp *decision.Point, snap model.Snapshot) map[string]any {
	key, _ := dp.Focus["space_key"].(string)
	idx, ok := board.SpaceIndexByKey[key]
	if !ok {
		return map[string]any{"space_key": key}
	}
	static := board.SpaceByIndex(idx)
	youOwn, total := groupProgress(snap, dp.ActorPlayerID, static.Group)
	focus := map[string]any{
		"space_key":  key,
		"kind":       string(static.Kind),
		"group":      static.Group,
		"price":      static.Price,
		"house_cost": board.HouseCostByGroup[static.Group],
		"group_progress": map[string]any{
			"you_own_in_group": youOwn,
			"total_in_group":   total,
		},
	}
	if rent, ok := board.PropertyRentTables[idx]; ok {
		focus["rent_vector"] = rent
	} else if static.Kind == board.KindRailroad {
		focus["rent_vector"] = board.RailroadRents
	} else if static.Kind == board.KindUtility {
		focus["rent_vector"] = board.UtilityRentMultiplier
	}
	return focus
}

func groupProgress(snap model.Snapshot, playerID, group string) (int, int) {
	if group == "" {
		return 0, 0
	}
	indexes := board.GroupIndexes[group]
	youOwn := 0
	for _, idx := range indexes {
		if snap.Board[idx].OwnerID == playerID {
			youOwn++
		}
	}
	return youOwn, len(indexes)
}

func jailFocus(dp *decision.Point) map[string]any {
	focus := map[string]any{
		"jail_fine":         model.JailFine,
		"jail_turns":        dp.Focus["jail_turns"],
		"can_roll_for_doubles": dp.HasAction("roll_for_doubles"),
		"can_pay_fine":         dp.HasAction("pay_jail_fine"),
		"can_use_card":         dp.HasAction("use_get_out_of_jail_card"),
	}
	return focus
}

// postTurnFocus passes through the mortgageable/unmortgageable/buildable
// /sellable space_key sets and eligible counterparties the engine already
// computed to gate legal_actions (decisions.go's buildPostTurnActionDecision) —
// decision_focus must never drift from what legal_actions itself allows.
func postTurnFocus(dp *decision.Point, snap model.Snapshot) map[string]any {
	focus := map[string]any{
		"mortgageable_space_keys":   dp.Focus["mortgageable_space_keys"],
		"unmortgageable_space_keys": dp.Focus["unmortgageable_space_keys"],
		"buildable_space_keys":      dp.Focus["buildable_space_keys"],
		"sellable_space_keys":       dp.Focus["sellable_space_keys"],
		"eligible_counterparties":   dp.Focus["eligible_counterparties"],
	}
	if actor := findPlayerSnapshot(snap, dp.ActorPlayerID); actor != nil {
		focus["cash"] = actor.Cash
	}
	return focus
}

func findPlayerSnapshot(snap model.Snapshot, playerID string) *model.PlayerSnapshot {
	for i := range snap.Players {
		if snap.Players[i].PlayerID == playerID {
			return &snap.Players[i]
		}
	}
	return nil
}

func auctionBidFocus(dp *decision.Point) map[string]any {
	highBid, _ := dp.Focus["high_bid"].(int)
	return map[string]any{
		"space_key":    dp.Focus["space_key"],
		"high_bid":     highBid,
		"leader_id":    dp.Focus["leader_id"],
		"minimum_bid":  highBid + 1,
	}
}

func tradeFocus(dp *decision.Point) map[string]any {
	return map[string]any{
		"initiator_id":    dp.Focus["initiator_id"],
		"counterparty_id": dp.Focus["counterparty_id"],
		"offer":           dp.Focus["offer"],
		"request":         dp.Focus["request"],
		"exchange_index":  dp.Focus["exchange_index"],
	}
}

// liquidationFocus passes through the same mortgageable/sellable space_key
// sets decisions.go's buildLiquidationDecision used to gate legal_actions.
func liquidationFocus(dp *decision.Point) map[string]any {
	return map[string]any{
		"amount_owed":             dp.Focus["amount_owed"],
		"creditor_id":             dp.Focus["creditor_id"],
		"reason":                  dp.Focus["reason"],
		"mortgageable_space_keys": dp.Focus["mortgageable_space_keys"],
		"sellable_space_keys":     dp.Focus["sellable_space_keys"],
	}
}
