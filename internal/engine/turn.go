package engine

import (
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/board"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/decision"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/event"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/model"
)

const passGoBonus = 200

// progress runs one internal step of the turn state machine and
// returns a decision point when one is required, or nil to let
// AdvanceUntilDecision/ApplyAction keep looping. Auctions, trades, and
// unresolved payments take priority over the coarse turn phase since
// any of them can interrupt a turn in progress (spec.md §4.1).
func (e *Engine) progress() *decision.Point {
	if e.state.Trade != nil {
		return e.buildTradeDecision()
	}
	if e.state.Auction != nil {
		return e.buildAuctionDecision()
	}
	if e.state.Pending != nil {
		if e.tryResolvePending() {
			return nil
		}
		return e.buildLiquidationDecision()
	}
	if e.state.StopReason != "" {
		e.endGame(e.state.StopReason, "")
		return nil
	}
	if e.state.SolvencyCount() <= 1 {
		e.endGame("last_player_standing", e.lastSolventPlayerID())
		return nil
	}

	switch e.state.Phase {
	case model.PhaseStartTurn:
		return e.startTurn()
	case model.PhaseResolvingMove:
		return e.resolveMove()
	case model.PhaseAwaitingDecision:
		return e.buildPostTurnActionDecision()
	case model.PhaseEndTurn:
		e.endTurn()
		return nil
	default:
		return nil
	}
}

func (e *Engine) lastSolventPlayerID() string {
	for _, p := range e.state.Players {
		if !p.Bankrupt {
			return p.ID
		}
	}
	return ""
}

func (e *Engine) endGame(reason, winner string) {
	e.state.Phase = model.PhaseGameOver
	e.state.EndReason = reason
	e.state.Winner = winner
	e.emit(event.ActorEngine, "", event.TypeGameEnded, map[string]any{
		"reason": reason,
		"winner": winner,
	})
}

// startTurn begins a new active player's turn. A player in jail is
// presented a JAIL_DECISION before any dice are rolled.
func (e *Engine) startTurn() *decision.Point {
	player := e.state.ActivePlayer()
	if player == nil {
		e.endGame("no_active_player", "")
		return nil
	}
	e.emit(event.ActorEngine, player.ID, event.TypeTurnStarted, map[string]any{
		"player_id": player.ID,
	})
	if player.InJail {
		return e.buildJailDecision(player)
	}
	e.state.Phase = model.PhaseResolvingMove
	return nil
}

// rollDice rolls two dice through the engine's deterministic source.
func (e *Engine) rollDice() (int, int) { return e.rng.RollDice() }

func (e *Engine) emitDiceRolled(playerID string, d1, d2 int) {
	e.emit(event.ActorEngine, playerID, event.TypeDiceRolled, map[string]any{
		"d1":        d1,
		"d2":        d2,
		"is_double": d1 == d2,
	})
}

// resolveMove rolls (or consumes a pre-rolled escape roll), moves the
// active player, and resolves whatever they land on.
func (e *Engine) resolveMove() *decision.Point {
	player := e.state.ActivePlayer()
	if player == nil {
		e.endGame("no_active_player", "")
		return nil
	}

	var d1, d2 int
	fromJailEscape := false
	if e.pendingRoll != nil {
		d1, d2 = e.pendingRoll[0], e.pendingRoll[1]
		e.pendingRoll = nil
		fromJailEscape = true
	} else {
		d1, d2 = e.rollDice()
		e.emitDiceRolled(player.ID, d1, d2)
		if d1 == d2 {
			player.DoublesStreak++
		} else {
			player.DoublesStreak = 0
		}
		if player.DoublesStreak >= 3 {
			player.DoublesStreak = 0
			e.sendToJail(player, "THREE_DOUBLES")
			e.state.DoubleRolledThisTurn = false
			e.state.Phase = model.PhaseEndTurn
			return nil
		}
	}
	e.state.DoubleRolledThisTurn = !fromJailEscape && d1 == d2

	total := d1 + d2
	e.movePlayer(player, total)
	return e.resolveLanding(player, total)
}

// movePlayer advances player by steps, paying the $200 GO bonus when
// the move passes or lands on GO.
func (e *Engine) movePlayer(player *model.Player, steps int) {
	old := player.Position
	newPos := (old + steps) % board.Size
	passedGo := newPos < old
	if passedGo {
		e.creditCash(player, passGoBonus, "passed_go")
	}
	player.Position = newPos
	e.emit(event.ActorEngine, player.ID, event.TypePlayerMoved, map[string]any{
		"from":      old,
		"to":        newPos,
		"passed_go": passedGo,
		"space_key": e.spaceKey(newPos),
	})
}

func (e *Engine) creditCash(player *model.Player, amount int, reason string) {
	if amount == 0 {
		return
	}
	player.Cash += amount
	e.emit(event.ActorEngine, player.ID, event.TypeCashChanged, map[string]any{
		"player_id": player.ID,
		"delta":     amount,
		"reason":    reason,
		"cash":      player.Cash,
	})
}

// resolveLanding applies the effect of the space the player now
// occupies. diceTotal is the roll that produced this move, used for
// utility rent.
func (e *Engine) resolveLanding(player *model.Player, diceTotal int) *decision.Point {
	idx := player.Position
	static := board.SpaceByIndex(idx)

	switch static.Kind {
	case board.KindProperty, board.KindRailroad, board.KindUtility:
		if dp := e.resolveOwnableLanding(player, idx, diceTotal); dp != nil {
			return dp
		}
	case board.KindTax:
		amount := board.TaxAmounts[idx]
		if amount > 0 {
			e.payObligation(player, []model.PaymentEntry{{
				Amount: amount, CreditorID: "", Reason: "tax", OriginSpaceIndex: idx,
			}})
		}
	case board.KindChance:
		return e.drawCard(player, "CHANCE")
	case board.KindCommunityChest:
		return e.drawCard(player, "COMMUNITY_CHEST")
	case board.KindGoToJail:
		e.sendToJail(player, "GO_TO_JAIL_SPACE")
		e.state.DoubleRolledThisTurn = false
		e.state.Phase = model.PhaseEndTurn
		return nil
	case board.KindJail, board.KindFreeParking, board.KindGo:
		// no effect beyond having arrived
	}

	if e.state.Pending != nil {
		return nil // progress() will surface LIQUIDATION_DECISION next loop
	}
	e.state.Phase = model.PhaseAwaitingDecision
	return nil
}

func (e *Engine) sendToJail(player *model.Player, reason string) {
	player.Position = board.SpaceIndexByKey["JAIL"]
	player.InJail = true
	player.JailTurns = 0
	player.DoublesStreak = 0
	e.emit(event.ActorEngine, player.ID, event.TypeSentToJail, map[string]any{
		"player_id": player.ID, "reason": reason,
	})
}

// calcRent computes the rent owed for landing on an owned, unmortgaged
// ownable space (spec.md §3's rent tables).
func (e *Engine) calcRent(idx int, ownerID string, diceTotal int) int {
	static := board.SpaceByIndex(idx)
	sp := e.state.SpaceAt(idx)
	switch static.Kind {
	case board.KindProperty:
		table := board.PropertyRentTables[idx]
		tier := sp.BuildingValue()
		rent := table[tier]
		if tier == 0 && e.state.GroupMonopolist(static.Group) == ownerID {
			rent *= 2
		}
		return rent
	case board.KindRailroad:
		count := e.state.RailroadsOwnedBy(ownerID)
		if count < 1 {
			count = 1
		}
		return board.RailroadRents[count-1]
	case board.KindUtility:
		count := e.state.UtilitiesOwnedBy(ownerID)
		mult := board.UtilityRentMultiplier[count]
		if mult == 0 {
			mult = board.UtilityRentMultiplier[1]
		}
		return diceTotal * mult
	default:
		return 0
	}
}

// endTurn rotates the active player, unless the outgoing player rolled
// a (non-third) double this turn and remains solvent, in which case
// they take another turn.
func (e *Engine) endTurn() {
	player := e.state.ActivePlayer()
	outgoingID := ""
	if player != nil {
		outgoingID = player.ID
		e.emit(event.ActorEngine, player.ID, event.TypeTurnEnded, map[string]any{})
	}

	extraTurn := e.state.DoubleRolledThisTurn && player != nil && !player.Bankrupt && !player.InJail
	e.state.DoubleRolledThisTurn = false

	if extraTurn {
		e.state.TurnIndex++
		e.state.Phase = model.PhaseStartTurn
		return
	}

	next := e.state.NextActivePlayerID(outgoingID)
	e.state.ActivePlayerID = next
	e.state.TurnIndex++
	e.state.Phase = model.PhaseStartTurn
}
