package arbiter

import (
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/action"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/decision"
)

// Fallback computes the deterministic, always-legal fallback action
// for dp, per spec.md §4.2's fallback policy table. It never inspects
// anything the model said — only dp's own legal actions and focus —
// so it is safe to call whenever an attempt could not be applied.
func Fallback(dp *decision.Point) action.Request {
	req := action.Request{SchemaVersion: "v1", DecisionID: dp.DecisionID}

	switch dp.Type {
	case decision.BuyOrAuction:
		if dp.HasAction(string(action.BuyProperty)) {
			req.Name = action.BuyProperty
		} else {
			req.Name = action.StartAuction
		}
	case decision.Jail:
		switch {
		case dp.HasAction(string(action.UseGetOutOfJailCard)):
			req.Name = action.UseGetOutOfJailCard
		case dp.HasAction(string(action.PayJailFine)):
			req.Name = action.PayJailFine
		default:
			req.Name = action.RollForDoubles
		}
	case decision.AuctionBid:
		highBid, _ := dp.Focus["high_bid"].(int)
		// bid the minimum legal raise whenever the engine offers
		// bid_auction (only when the actor can cover high_bid+1);
		// otherwise drop_out.
		if dp.HasAction(string(action.BidAuction)) {
			req.Name = action.BidAuction
			req.Args.BidAmount = highBid + 1
		} else {
			req.Name = action.DropOut
		}
	case decision.TradeResponse:
		req.Name = action.RejectTrade
	case decision.TradePropose:
		req.Name = action.RejectTrade
	case decision.PostTurnAction:
		req.Name = action.EndTurn
	case decision.Liquidation:
		mortgageable, sellableHouse, sellableHotel := ownedBuildingOptions(dp)
		switch {
		case dp.HasAction(string(action.MortgageProperty)) && mortgageable != "":
			req.Name = action.MortgageProperty
			req.Args.SpaceKey = mortgageable
		case dp.HasAction(string(action.SellHousesOrHotel)) && sellableHotel != "":
			req.Name = action.SellHousesOrHotel
			req.Args.SellPlan = []action.BuildItem{{SpaceKey: sellableHotel, Kind: "HOTEL", Count: 1}}
		case dp.HasAction(string(action.SellHousesOrHotel)) && sellableHouse != "":
			req.Name = action.SellHousesOrHotel
			req.Args.SellPlan = []action.BuildItem{{SpaceKey: sellableHouse, Kind: "HOUSE", Count: 1}}
		default:
			req.Name = action.DeclareBankruptcy
		}
	default:
		req.Name = action.EndTurn
	}
	return req
}

// ownedBuildingOptions scans dp's own snapshot, in board order, for the
// first property the actor owns that the engine listed in dp's focus as
// mortgageable, and the first house-bearing / hotel-bearing one it
// listed as sellable, so the fallback never needs an engine call to
// find something it can legally liquidate.
func ownedBuildingOptions(dp *decision.Point) (mortgageable, sellableHouse, sellableHotel string) {
	inFocus := func(name, key string) bool {
		keys, _ := dp.Focus[name].([]string)
		for _, k := range keys {
			if k == key {
				return true
			}
		}
		return false
	}
	for _, sp := range dp.Snapshot.Board {
		if sp.OwnerID != dp.ActorPlayerID {
			continue
		}
		if mortgageable == "" && inFocus("mortgageable_space_keys", sp.SpaceKey) {
			mortgageable = sp.SpaceKey
		}
		if sp.Hotel && sellableHotel == "" && inFocus("sellable_space_keys", sp.SpaceKey) {
			sellableHotel = sp.SpaceKey
		}
		if sp.Houses > 0 && sellableHouse == "" && inFocus("sellable_space_keys", sp.SpaceKey) {
			sellableHouse = sp.SpaceKey
		}
	}
	return
}
