package engine

import (
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/action"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/apperrors"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/board"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/decision"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/event"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/model"
)

// dispatchAction validates req against the decision dp already legal
// for the actor, and applies it, mutating no state on error.
func (e *Engine) dispatchAction(dp *decision.Point, req action.Request) error {
	actor := e.findPlayer(dp.ActorPlayerID)
	if actor == nil {
		return apperrors.NewIllegalAction("unknown actor %s", dp.ActorPlayerID)
	}

	switch req.Name {
	case action.BuyProperty:
		return e.dispatchBuyProperty(actor, dp)
	case action.StartAuction:
		idx, _ := e.spaceIndex(dp.Focus["space_key"].(string))
		e.startAuction(actor, idx)
		return nil
	case action.PayJailFine:
		return e.dispatchPayJailFine(actor)
	case action.RollForDoubles:
		return e.dispatchRollForDoubles(actor)
	case action.UseGetOutOfJailCard:
		return e.dispatchUseGetOutOfJailCard(actor)
	case action.BidAuction:
		return e.bidAuction(actor, req.Args.BidAmount)
	case action.DropOut:
		return e.dropOutAuction(actor)
	case action.ProposeTrade:
		return e.proposeTrade(actor, req.Args.ToPlayerID, req.Args.Offer, req.Args.Request)
	case action.AcceptTrade:
		return e.acceptTrade(actor)
	case action.RejectTrade:
		return e.rejectTrade(actor)
	case action.CounterTrade:
		return e.counterTrade(actor, req.Args.Offer, req.Args.Request)
	case action.MortgageProperty:
		return e.mortgageProperty(actor, req.Args.SpaceKey)
	case action.UnmortgageProperty:
		return e.unmortgageProperty(actor, req.Args.SpaceKey)
	case action.BuildHousesOrHotel:
		return e.buildHousesOrHotel(actor, req.Args.BuildPlan)
	case action.SellHousesOrHotel:
		return e.sellHousesOrHotel(actor, req.Args.SellPlan)
	case action.EndTurn:
		return e.dispatchEndTurn(dp)
	case action.DeclareBankruptcy:
		return e.dispatchDeclareBankruptcy(actor)
	default:
		return apperrors.NewIllegalAction("unsupported action %s", req.Name)
	}
}

func (e *Engine) dispatchBuyProperty(actor *model.Player, dp *decision.Point) error {
	idx, ok := e.spaceIndex(dp.Focus["space_key"].(string))
	if !ok {
		return apperrors.NewIllegalAction("decision has no associated space")
	}
	static := board.SpaceByIndex(idx)
	if actor.Cash < static.Price {
		return apperrors.NewIllegalAction("%s cannot afford %s at %d", actor.ID, dp.Focus["space_key"], static.Price)
	}
	sp := e.state.SpaceAt(idx)
	sp.OwnerID = actor.ID
	actor.Cash -= static.Price
	e.emit(event.ActorEngine, actor.ID, event.TypeCashChanged, map[string]any{"player_id": actor.ID, "delta": -static.Price, "reason": "buy_property", "cash": actor.Cash})
	e.emit(event.ActorEngine, actor.ID, event.TypePropertyPurchased, map[string]any{"player_id": actor.ID, "space_index": idx, "price": static.Price})
	e.state.Phase = model.PhaseAwaitingDecision
	return nil
}

func (e *Engine) dispatchPayJailFine(actor *model.Player) error {
	if actor.Cash < model.JailFine {
		return apperrors.NewIllegalAction("%s cannot afford the %d jail fine", actor.ID, model.JailFine)
	}
	actor.Cash -= model.JailFine
	e.emit(event.ActorEngine, actor.ID, event.TypeCashChanged, map[string]any{"delta": -model.JailFine, "reason": "jail_fine", "cash": actor.Cash})
	actor.InJail = false
	actor.JailTurns = 0
	actor.DoublesStreak = 0
	e.state.Phase = model.PhaseResolvingMove
	return nil
}

func (e *Engine) dispatchUseGetOutOfJailCard(actor *model.Player) error {
	if actor.GetOutOfJailCards <= 0 {
		return apperrors.NewIllegalAction("%s holds no get-out-of-jail cards", actor.ID)
	}
	actor.GetOutOfJailCards--
	actor.InJail = false
	actor.JailTurns = 0
	actor.DoublesStreak = 0

	origins := e.state.JailCardOrigin[actor.ID]
	if len(origins) > 0 {
		deckName := origins[0]
		e.state.JailCardOrigin[actor.ID] = origins[1:]
		deck := e.deckFor(deckName)
		*deck = append(*deck, cardGetOutOfJailFree)
	}
	e.state.Phase = model.PhaseResolvingMove
	return nil
}

// dispatchRollForDoubles handles a jail roll attempt: a double escapes
// jail and the same roll is carried into this turn's movement; a
// third consecutive failed attempt forces the fine and also moves on
// that final roll; otherwise the turn simply ends with no movement.
func (e *Engine) dispatchRollForDoubles(actor *model.Player) error {
	d1, d2 := e.rollDice()
	e.emitDiceRolled(actor.ID, d1, d2)

	if d1 == d2 {
		actor.InJail = false
		actor.JailTurns = 0
		actor.DoublesStreak = 0
		e.pendingRoll = &[2]int{d1, d2}
		e.state.Phase = model.PhaseResolvingMove
		return nil
	}

	actor.JailTurns++
	if actor.JailTurns >= model.MaxJailTurns {
		if actor.Cash < model.JailFine {
			return apperrors.NewIllegalAction("%s failed three jail rolls and cannot afford the fine", actor.ID)
		}
		actor.Cash -= model.JailFine
		e.emit(event.ActorEngine, actor.ID, event.TypeCashChanged, map[string]any{"delta": -model.JailFine, "reason": "jail_fine", "cash": actor.Cash})
		actor.InJail = false
		actor.JailTurns = 0
		e.pendingRoll = &[2]int{d1, d2}
		e.state.Phase = model.PhaseResolvingMove
		return nil
	}

	e.state.Phase = model.PhaseEndTurn
	return nil
}

func (e *Engine) dispatchEndTurn(dp *decision.Point) error {
	if dp.Type != decision.PostTurnAction {
		return apperrors.NewIllegalAction("end_turn is only legal for a post-turn decision")
	}
	e.state.Phase = model.PhaseEndTurn
	return nil
}

func (e *Engine) dispatchDeclareBankruptcy(actor *model.Player) error {
	creditorID := ""
	if e.state.Pending != nil {
		creditorID = e.state.Pending.Current.CreditorID
	}
	return e.declareBankruptcy(actor, creditorID)
}
