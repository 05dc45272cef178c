package engine

import (
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/action"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/board"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/decision"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/model"
)

func la(name action.Name, required []string, fields map[string]string, hint string) decision.LegalAction {
	return decision.LegalAction{
		Name:   string(name),
		Args:   decision.ArgsSchema{Required: required, Fields: fields},
		UIHint: hint,
	}
}

func (e *Engine) newPoint(typ decision.Type, actorID string, legal []decision.LegalAction, focus map[string]any) *decision.Point {
	return &decision.Point{
		SchemaVersion: "v1",
		RunID:         e.state.RunID,
		DecisionID:    e.nextDecisionID(),
		TurnIndex:     e.state.TurnIndex,
		ActorPlayerID: actorID,
		Type:          typ,
		Snapshot:      e.state.ToSnapshot(),
		LegalActions:  legal,
		Focus:         focus,
	}
}

func (e *Engine) buildJailDecision(player *model.Player) *decision.Point {
	legal := []decision.LegalAction{
		la(action.RollForDoubles, nil, nil, "roll to try for doubles"),
	}
	if player.Cash >= model.JailFine {
		legal = append(legal, la(action.PayJailFine, nil, nil, "pay the $50 fine and roll normally"))
	}
	if player.GetOutOfJailCards > 0 {
		legal = append(legal, la(action.UseGetOutOfJailCard, nil, nil, "use a get-out-of-jail-free card"))
	}
	return e.newPoint(decision.Jail, player.ID, legal, map[string]any{
		"jail_turns": player.JailTurns,
	})
}

func (e *Engine) buildBuyOrAuctionDecision(player *model.Player, idx int) *decision.Point {
	static := board.SpaceByIndex(idx)
	legal := []decision.LegalAction{
		la(action.StartAuction, nil, nil, "send this property to auction instead"),
	}
	if player.Cash >= static.Price {
		legal = append([]decision.LegalAction{la(action.BuyProperty, nil, nil, "buy at list price")}, legal...)
	}
	return e.newPoint(decision.BuyOrAuction, player.ID, legal, map[string]any{
		"space_key": e.spaceKey(idx),
		"price":     static.Price,
	})
}

func (e *Engine) buildLiquidationDecision() *decision.Point {
	player := e.findPlayer(e.state.ActivePlayerID)
	mortgageable := e.mortgageableSpaceKeys(player.ID)
	sellable := e.sellableSpaceKeys(player.ID)

	legal := []decision.LegalAction{
		la(action.DeclareBankruptcy, nil, nil, "you cannot raise enough cash"),
	}
	if len(mortgageable) > 0 {
		legal = append(legal, la(action.MortgageProperty, []string{"space_key"}, map[string]string{"space_key": "string"}, "mortgage a property for cash"))
	}
	if len(sellable) > 0 {
		legal = append(legal, la(action.SellHousesOrHotel, []string{"sell_plan"}, map[string]string{"sell_plan": "array"}, "sell buildings back to the bank"))
	}
	focus := map[string]any{
		"amount_owed":             e.state.Pending.Current.Amount,
		"creditor_id":             e.state.Pending.Current.CreditorID,
		"reason":                  e.state.Pending.Current.Reason,
		"mortgageable_space_keys": mortgageable,
		"sellable_space_keys":     sellable,
	}
	return e.newPoint(decision.Liquidation, player.ID, legal, focus)
}

func (e *Engine) buildPostTurnActionDecision() *decision.Point {
	player := e.state.ActivePlayer()
	mortgageable := e.mortgageableSpaceKeys(player.ID)
	unmortgageable := e.unmortgageableSpaceKeys(player.ID, player.Cash)
	buildable := e.buildableSpaceKeys(player)
	sellable := e.sellableSpaceKeys(player.ID)
	counterparties := e.eligibleCounterpartyIDs(player.ID)

	legal := []decision.LegalAction{
		la(action.EndTurn, nil, nil, "end your turn"),
	}
	if len(mortgageable) > 0 {
		legal = append(legal, la(action.MortgageProperty, []string{"space_key"}, map[string]string{"space_key": "string"}, "mortgage a property"))
	}
	if len(unmortgageable) > 0 {
		legal = append(legal, la(action.UnmortgageProperty, []string{"space_key"}, map[string]string{"space_key": "string"}, "lift a mortgage"))
	}
	if len(buildable) > 0 {
		legal = append(legal, la(action.BuildHousesOrHotel, []string{"build_plan"}, map[string]string{"build_plan": "array"}, "build evenly across a monopoly"))
	}
	if len(sellable) > 0 {
		legal = append(legal, la(action.SellHousesOrHotel, []string{"sell_plan"}, map[string]string{"sell_plan": "array"}, "sell buildings back to the bank"))
	}
	if len(counterparties) > 0 {
		legal = append(legal, la(action.ProposeTrade, []string{"to_player_id", "offer", "request"}, map[string]string{"to_player_id": "string", "offer": "bundle", "request": "bundle"}, "propose a trade"))
	}
	legal = append(legal, la(action.DeclareBankruptcy, nil, nil, "liquidate voluntarily"))
	focus := map[string]any{
		"mortgageable_space_keys":   mortgageable,
		"unmortgageable_space_keys": unmortgageable,
		"buildable_space_keys":      buildable,
		"sellable_space_keys":       sellable,
		"eligible_counterparties":   counterparties,
		"cash":                      player.Cash,
	}
	return e.newPoint(decision.PostTurnAction, player.ID, legal, focus)
}

func (e *Engine) buildAuctionDecision() *decision.Point {
	auc := e.state.Auction
	bidderID := auc.ActiveBidders[auc.CursorIndex]
	bidder := e.findPlayer(bidderID)
	legal := []decision.LegalAction{
		la(action.DropOut, nil, nil, "drop out of the auction"),
	}
	if bidder.Cash >= auc.HighBid+1 {
		legal = append([]decision.LegalAction{la(action.BidAuction, []string{"bid_amount"}, map[string]string{"bid_amount": "int"}, "bid above the current high bid")}, legal...)
	}
	return e.newPoint(decision.AuctionBid, bidderID, legal, map[string]any{
		"space_key": e.spaceKey(auc.TargetIndex),
		"high_bid":  auc.HighBid,
		"leader_id": auc.LeaderID,
	})
}

func (e *Engine) buildTradeDecision() *decision.Point {
	t := e.state.Trade
	responderID := t.CounterpartyID
	if len(t.History) > 0 && t.History[len(t.History)-1].ActorID == t.CounterpartyID {
		responderID = t.InitiatorID
	}
	proposerID := t.History[len(t.History)-1].ActorID
	proposer, responder := e.findPlayer(proposerID), e.findPlayer(responderID)
	legal := []decision.LegalAction{
		la(action.RejectTrade, nil, nil, "reject and end the negotiation"),
	}
	if e.tradeSettlementFeasible(proposer, responder, t.CurrentOffer, t.CurrentRequest) {
		legal = append([]decision.LegalAction{la(action.AcceptTrade, nil, nil, "accept the current offer")}, legal...)
	}
	if t.ExchangeIndex < t.MaxExchanges {
		legal = append(legal, la(action.CounterTrade, []string{"offer", "request"}, map[string]string{"offer": "bundle", "request": "bundle"}, "propose a counter-offer"))
	}
	return e.newPoint(decision.TradeResponse, responderID, legal, map[string]any{
		"initiator_id":    t.InitiatorID,
		"counterparty_id": t.CounterpartyID,
		"offer":           t.CurrentOffer,
		"request":         t.CurrentRequest,
		"exchange_index":  t.ExchangeIndex,
	})
}
