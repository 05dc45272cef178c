package engine

import (
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/action"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/apperrors"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/board"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/event"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/model"
)

func toModelBundle(b action.Bundle) model.Bundle {
	return model.Bundle{Cash: b.Cash, Properties: append([]string(nil), b.Properties...), GetOutOfJailCards: b.GetOutOfJailCards}
}

// validateBundle checks that owner actually holds every listed
// property unmortgaged and unbuilt, enough cash, and enough cards.
func (e *Engine) validateBundle(owner *model.Player, b model.Bundle) error {
	if owner.Cash < b.Cash {
		return apperrors.NewIllegalAction("%s cannot offer %d cash with only %d on hand", owner.ID, b.Cash, owner.Cash)
	}
	if owner.GetOutOfJailCards < b.GetOutOfJailCards {
		return apperrors.NewIllegalAction("%s does not hold %d get-out-of-jail cards", owner.ID, b.GetOutOfJailCards)
	}
	for _, key := range b.Properties {
		idx, ok := e.spaceIndex(key)
		if !ok {
			return apperrors.NewIllegalAction("unknown space_key %q", key)
		}
		sp := e.state.SpaceAt(idx)
		if sp.OwnerID != owner.ID {
			return apperrors.NewIllegalAction("%s does not own %s", owner.ID, key)
		}
		if sp.Houses > 0 || sp.Hotel {
			return apperrors.NewIllegalAction("%s cannot be traded while it carries buildings", key)
		}
	}
	return nil
}

func (e *Engine) proposeTrade(initiator *model.Player, toPlayerID string, offer, request action.Bundle) error {
	if toPlayerID == initiator.ID {
		return apperrors.NewIllegalAction("cannot trade with yourself")
	}
	counterparty := e.findPlayer(toPlayerID)
	if counterparty == nil || counterparty.Bankrupt {
		return apperrors.NewIllegalAction("unknown or bankrupt counterparty %s", toPlayerID)
	}
	offerBundle := toModelBundle(offer)
	requestBundle := toModelBundle(request)
	if err := e.validateBundle(initiator, offerBundle); err != nil {
		return err
	}
	if err := e.validateBundle(counterparty, requestBundle); err != nil {
		return err
	}

	e.state.Trade = &model.TradeThread{
		InitiatorID:    initiator.ID,
		CounterpartyID: counterparty.ID,
		MaxExchanges:   model.MaxTradeExchanges,
		ExchangeIndex:  1,
		History:        []model.TradeExchange{{ActorID: initiator.ID, Offer: offerBundle, Request: requestBundle}},
		CurrentOffer:   offerBundle,
		CurrentRequest: requestBundle,
		TurnOwnerID:    e.state.ActivePlayerID,
	}
	e.emit(event.ActorEngine, initiator.ID, event.TypeTradeProposed, map[string]any{
		"to_player_id": counterparty.ID,
	})
	return nil
}

func (e *Engine) currentTradeResponder() string {
	t := e.state.Trade
	if len(t.History) == 0 {
		return t.CounterpartyID
	}
	last := t.History[len(t.History)-1].ActorID
	if last == t.InitiatorID {
		return t.CounterpartyID
	}
	return t.InitiatorID
}

func (e *Engine) acceptTrade(actor *model.Player) error {
	t := e.state.Trade
	if t == nil {
		return apperrors.NewIllegalAction("no trade is in progress")
	}
	if actor.ID != e.currentTradeResponder() {
		return apperrors.NewIllegalAction("it is not %s's turn to respond to this trade", actor.ID)
	}
	proposerID := t.History[len(t.History)-1].ActorID
	proposer := e.findPlayer(proposerID)

	if err := e.validateBundle(proposer, t.CurrentOffer); err != nil {
		return err
	}
	if err := e.validateBundle(actor, t.CurrentRequest); err != nil {
		return err
	}
	if err := e.chargeMortgageInterest(actor, t.CurrentOffer); err != nil {
		return err
	}
	if err := e.chargeMortgageInterest(proposer, t.CurrentRequest); err != nil {
		return err
	}

	e.transferBundle(proposer, actor, t.CurrentOffer)
	e.transferBundle(actor, proposer, t.CurrentRequest)
	e.emit(event.ActorEngine, actor.ID, event.TypeTradeAccepted, map[string]any{
		"initiator_id": t.InitiatorID, "counterparty_id": t.CounterpartyID,
	})
	e.state.Trade = nil
	return nil
}

// chargeMortgageInterest charges receiver the standard 10% mortgage
// interest fee for each mortgaged property in bundle, as required to
// accept it into a trade.
func (e *Engine) chargeMortgageInterest(receiver *model.Player, bundle model.Bundle) error {
	total := 0
	for _, key := range bundle.Properties {
		idx, ok := e.spaceIndex(key)
		if !ok {
			continue
		}
		sp := e.state.SpaceAt(idx)
		if sp.Mortgaged {
			static := e.spaceStaticPrice(idx)
			total += static * model.MortgageInterestPct / 100
		}
	}
	if total == 0 {
		return nil
	}
	if receiver.Cash < total {
		return apperrors.NewIllegalAction("%s cannot cover %d in mortgage interest to accept this trade", receiver.ID, total)
	}
	receiver.Cash -= total
	e.emit(event.ActorEngine, receiver.ID, event.TypeCashChanged, map[string]any{
		"delta": -total, "reason": "mortgage_interest", "cash": receiver.Cash,
	})
	return nil
}

func (e *Engine) transferBundle(from, to *model.Player, bundle model.Bundle) {
	if bundle.Cash != 0 {
		from.Cash -= bundle.Cash
		to.Cash += bundle.Cash
		e.emit(event.ActorEngine, from.ID, event.TypeCashChanged, map[string]any{"delta": -bundle.Cash, "reason": "trade", "cash": from.Cash})
		e.emit(event.ActorEngine, to.ID, event.TypeCashChanged, map[string]any{"delta": bundle.Cash, "reason": "trade", "cash": to.Cash})
	}
	if bundle.GetOutOfJailCards != 0 {
		from.GetOutOfJailCards -= bundle.GetOutOfJailCards
		to.GetOutOfJailCards += bundle.GetOutOfJailCards
		e.migrateJailCardOrigins(from.ID, to.ID, bundle.GetOutOfJailCards)
	}
	for _, key := range bundle.Properties {
		idx, ok := e.spaceIndex(key)
		if !ok {
			continue
		}
		e.state.SpaceAt(idx).OwnerID = to.ID
		e.emit(event.ActorEngine, from.ID, event.TypePropertyTransferred, map[string]any{
			"to_player_id": to.ID, "space_key": key, "reason": "trade",
		})
	}
}

func (e *Engine) rejectTrade(actor *model.Player) error {
	t := e.state.Trade
	if t == nil {
		return apperrors.NewIllegalAction("no trade is in progress")
	}
	if actor.ID != e.currentTradeResponder() {
		return apperrors.NewIllegalAction("it is not %s's turn to respond to this trade", actor.ID)
	}
	e.emit(event.ActorEngine, actor.ID, event.TypeTradeRejected, map[string]any{
		"initiator_id": t.InitiatorID, "counterparty_id": t.CounterpartyID,
	})
	e.state.Trade = nil
	return nil
}

func (e *Engine) counterTrade(actor *model.Player, offer, request action.Bundle) error {
	t := e.state.Trade
	if t == nil {
		return apperrors.NewIllegalAction("no trade is in progress")
	}
	if actor.ID != e.currentTradeResponder() {
		return apperrors.NewIllegalAction("it is not %s's turn to respond to this trade", actor.ID)
	}
	if t.ExchangeIndex >= t.MaxExchanges {
		e.emit(event.ActorEngine, actor.ID, event.TypeTradeExpired, map[string]any{})
		e.state.Trade = nil
		return nil
	}
	offerBundle := toModelBundle(offer)
	requestBundle := toModelBundle(request)
	if err := e.validateBundle(actor, offerBundle); err != nil {
		return err
	}
	other := e.otherTradeParty(actor.ID)
	if err := e.validateBundle(other, requestBundle); err != nil {
		return err
	}
	t.History = append(t.History, model.TradeExchange{ActorID: actor.ID, Offer: offerBundle, Request: requestBundle})
	t.CurrentOffer = offerBundle
	t.CurrentRequest = requestBundle
	t.ExchangeIndex++
	e.emit(event.ActorEngine, actor.ID, event.TypeTradeCountered, map[string]any{})
	return nil
}

func (e *Engine) otherTradeParty(actorID string) *model.Player {
	t := e.state.Trade
	if actorID == t.InitiatorID {
		return e.findPlayer(t.CounterpartyID)
	}
	return e.findPlayer(t.InitiatorID)
}

func (e *Engine) spaceStaticPrice(idx int) int {
	return board.SpaceByIndex(idx).Price
}
