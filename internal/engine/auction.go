package engine

import (
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/apperrors"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/event"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/model"
)

// startAuction opens an auction on idx to every solvent player,
// including the one who declined to buy it outright.
func (e *Engine) startAuction(initiator *model.Player, idx int) {
	bidders := make([]string, 0, len(e.state.Players))
	for _, p := range e.state.Players {
		if !p.Bankrupt {
			bidders = append(bidders, p.ID)
		}
	}
	cursor := 0
	for i, id := range bidders {
		if id == initiator.ID {
			cursor = (i + 1) % len(bidders)
		}
	}
	e.state.Auction = &model.Auction{
		TargetIndex:   idx,
		InitiatorID:   initiator.ID,
		TurnOwnerID:   e.state.ActivePlayerID,
		ActiveBidders: bidders,
		CursorIndex:   cursor,
	}
	e.emit(event.ActorEngine, initiator.ID, event.TypeAuctionStarted, map[string]any{
		"space_key": e.spaceKey(idx),
	})
}

func (e *Engine) bidAuction(bidder *model.Player, amount int) error {
	auc := e.state.Auction
	if auc == nil {
		return apperrors.NewIllegalAction("no auction is in progress")
	}
	if auc.ActiveBidders[auc.CursorIndex] != bidder.ID {
		return apperrors.NewIllegalAction("it is not %s's turn to bid", bidder.ID)
	}
	if amount <= auc.HighBid {
		return apperrors.NewIllegalAction("bid %d does not exceed the current high bid %d", amount, auc.HighBid)
	}
	if bidder.Cash < amount {
		return apperrors.NewIllegalAction("%s cannot cover a bid of %d", bidder.ID, amount)
	}
	auc.HighBid = amount
	auc.LeaderID = bidder.ID
	e.emit(event.ActorEngine, bidder.ID, event.TypeAuctionBidPlaced, map[string]any{
		"amount": amount, "space_key": e.spaceKey(auc.TargetIndex),
	})
	e.advanceAuctionCursor()
	e.resolveAuctionIfDone()
	return nil
}

func (e *Engine) dropOutAuction(bidder *model.Player) error {
	auc := e.state.Auction
	if auc == nil {
		return apperrors.NewIllegalAction("no auction is in progress")
	}
	if auc.ActiveBidders[auc.CursorIndex] != bidder.ID {
		return apperrors.NewIllegalAction("it is not %s's turn to bid", bidder.ID)
	}
	auc.ActiveBidders = append(auc.ActiveBidders[:auc.CursorIndex], auc.ActiveBidders[auc.CursorIndex+1:]...)
	if len(auc.ActiveBidders) > 0 {
		auc.CursorIndex = auc.CursorIndex % len(auc.ActiveBidders)
	}
	e.emit(event.ActorEngine, bidder.ID, event.TypeAuctionPlayerDropped, map[string]any{
		"space_key": e.spaceKey(auc.TargetIndex),
	})
	e.resolveAuctionIfDone()
	return nil
}

func (e *Engine) advanceAuctionCursor() {
	auc := e.state.Auction
	if len(auc.ActiveBidders) == 0 {
		return
	}
	auc.CursorIndex = (auc.CursorIndex + 1) % len(auc.ActiveBidders)
}

func (e *Engine) resolveAuctionIfDone() {
	auc := e.state.Auction
	if len(auc.ActiveBidders) > 1 {
		return
	}
	idx := auc.TargetIndex
	if len(auc.ActiveBidders) == 1 && auc.HighBid > 0 {
		winnerID := auc.ActiveBidders[0]
		winner := e.findPlayer(winnerID)
		winner.Cash -= auc.HighBid
		sp := e.state.SpaceAt(idx)
		sp.OwnerID = winnerID
		e.emit(event.ActorEngine, winnerID, event.TypeAuctionEnded, map[string]any{
			"reason": "sold", "winner_player_id": winnerID, "winning_bid": auc.HighBid, "space_index": idx,
		})
		e.emit(event.ActorEngine, winnerID, event.TypePropertyPurchased, map[string]any{
			"player_id": winnerID, "space_index": idx, "price": auc.HighBid,
		})
	} else {
		e.emit(event.ActorEngine, "", event.TypeAuctionEnded, map[string]any{
			"reason": "no_bids", "winner_player_id": "", "winning_bid": 0, "space_index": idx,
		})
	}
	e.state.Auction = nil
	e.state.Phase = model.PhaseAwaitingDecision
}
