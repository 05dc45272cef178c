package engine

import (
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/board"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/decision"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/event"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/model"
)

// Card ids. GET_OUT_OF_JAIL_FREE is retained by the drawing player
// instead of returning to the deck (spec.md §4.1).
const (
	cardGetOutOfJailFree     = "GET_OUT_OF_JAIL_FREE"
	cardAdvanceToGo          = "ADVANCE_TO_GO"
	cardAdvanceToBoardwalk   = "ADVANCE_TO_BOARDWALK"
	cardAdvanceToIllinois    = "ADVANCE_TO_ILLINOIS_AVENUE"
	cardAdvanceToStCharles   = "ADVANCE_TO_ST_CHARLES_PLACE"
	cardAdvanceToNearestUtil = "ADVANCE_TO_NEAREST_UTILITY"
	cardAdvanceToNearestRail = "ADVANCE_TO_NEAREST_RAILROAD"
	cardAdvanceToReading     = "ADVANCE_TO_READING_RAILROAD"
	cardGoBack3              = "GO_BACK_THREE_SPACES"
	cardGoToJailCard         = "GO_TO_JAIL_CARD"
	cardBankPays50           = "BANK_PAYS_YOU_DIVIDEND_50"
	cardPayPoorTax15         = "PAY_POOR_TAX_15"
	cardDoctorFee50          = "DOCTOR_FEE_50"
	cardSchoolFee50          = "SCHOOL_FEE_50"
	cardPayEachPlayer50      = "PAY_EACH_PLAYER_50"
	cardCollectFromEach50    = "COLLECT_50_FROM_EACH_PLAYER"
	cardIncomeTaxRefund20    = "INCOME_TAX_REFUND_COLLECT_20"
	cardLifeInsuranceMatures = "LIFE_INSURANCE_MATURES_100"
	cardHospitalFee100       = "HOSPITAL_FEE_100"
	cardInheritance100       = "YOU_INHERIT_100"
	cardBuildingLoanMatures  = "BUILDING_LOAN_MATURES_150"
	cardStreetRepairs        = "STREET_REPAIRS"
	cardGrandOperaOpening    = "GRAND_OPERA_OPENING_50"
	cardHolidayFundMatures   = "HOLIDAY_FUND_MATURES_100"
	cardSecondPrizeBeauty    = "SECOND_PRIZE_BEAUTY_CONTEST_10"
)

func defaultChanceDeck() []string {
	return []string{
		cardAdvanceToGo,
		cardAdvanceToBoardwalk,
		cardAdvanceToIllinois,
		cardAdvanceToStCharles,
		cardAdvanceToNearestUtil,
		cardAdvanceToNearestRail,
		cardAdvanceToNearestRail,
		cardAdvanceToReading,
		cardGoBack3,
		cardGoToJailCard,
		cardBankPays50,
		cardGetOutOfJailFree,
		cardGrandOperaOpening,
		cardBuildingLoanMatures,
		cardSecondPrizeBeauty,
		cardInheritance100,
	}
}

func defaultCommunityChestDeck() []string {
	return []string{
		cardAdvanceToGo,
		cardGoToJailCard,
		cardGetOutOfJailFree,
		cardBankPays50,
		cardPayPoorTax15,
		cardDoctorFee50,
		cardSchoolFee50,
		cardPayEachPlayer50,
		cardCollectFromEach50,
		cardIncomeTaxRefund20,
		cardLifeInsuranceMatures,
		cardHospitalFee100,
		cardInheritance100,
		cardHolidayFundMatures,
		cardStreetRepairs,
	}
}

func (e *Engine) deckFor(deckName string) *[]string {
	if deckName == "CHANCE" {
		return &e.state.ChanceDeck
	}
	return &e.state.CommunityChestDeck
}

// releaseJailCardsToBank returns every get-out-of-jail card playerID
// holds to the bottom of its originating deck, the bankruptcy-to-bank
// counterpart of dispatchUseGetOutOfJailCard's single-card release.
func (e *Engine) releaseJailCardsToBank(playerID string) {
	origins := e.state.JailCardOrigin[playerID]
	for _, deckName := range origins {
		deck := e.deckFor(deckName)
		*deck = append(*deck, cardGetOutOfJailFree)
	}
	delete(e.state.JailCardOrigin, playerID)
}

// migrateJailCardOrigins moves count get-out-of-jail cards' origin
// entries from fromID to toID, FIFO, keeping JailCardOrigin in sync
// whenever GetOutOfJailCards changes hands outside dispatchUseGetOutOfJailCard.
func (e *Engine) migrateJailCardOrigins(fromID, toID string, count int) {
	if count <= 0 {
		return
	}
	origins := e.state.JailCardOrigin[fromID]
	if count > len(origins) {
		count = len(origins)
	}
	e.state.JailCardOrigin[toID] = append(e.state.JailCardOrigin[toID], origins[:count]...)
	e.state.JailCardOrigin[fromID] = origins[count:]
}

// teleport moves player directly to idx, crediting the $200 GO bonus
// whenever the move passes or lands on GO.
func (e *Engine) teleport(player *model.Player, idx int) {
	old := player.Position
	if idx < old {
		e.creditCash(player, passGoBonus, "passed_go")
	}
	player.Position = idx
	e.emit(event.ActorEngine, player.ID, event.TypePlayerMoved, map[string]any{
		"from": old, "to": idx, "space_key": e.spaceKey(idx), "via": "card",
	})
}

func nearestIndexAhead(from int, targets []int) int {
	best := targets[0]
	bestDist := (best - from + board.Size) % board.Size
	if bestDist == 0 {
		bestDist = board.Size
	}
	for _, t := range targets[1:] {
		d := (t - from + board.Size) % board.Size
		if d == 0 {
			d = board.Size
		}
		if d < bestDist {
			best, bestDist = t, d
		}
	}
	return best
}

// resolveOwnableLanding handles the buy/auction/rent branch shared by
// normal dice movement and card-driven teleports, using ordinary rent
// math (no special multiplier).
func (e *Engine) resolveOwnableLanding(player *model.Player, idx, diceTotal int) *decision.Point {
	sp := e.state.SpaceAt(idx)
	if !sp.Owned() {
		e.state.Phase = model.PhaseResolvingMove
		return e.buildBuyOrAuctionDecision(player, idx)
	}
	if sp.OwnerID == player.ID || sp.Mortgaged {
		return nil
	}
	rent := e.calcRent(idx, sp.OwnerID, diceTotal)
	e.chargeRent(player, sp.OwnerID, rent, idx)
	return nil
}

func (e *Engine) chargeRent(payer *model.Player, ownerID string, rent, idx int) {
	if rent <= 0 {
		return
	}
	e.payObligation(payer, []model.PaymentEntry{{Amount: rent, CreditorID: ownerID, Reason: "rent", OriginSpaceIndex: idx}})
	e.emit(event.ActorEngine, payer.ID, event.TypeRentPaid, map[string]any{
		"from_player_id": payer.ID, "to_player_id": ownerID, "amount": rent, "space_index": idx,
	})
}

// drawCard pops the top card of deckName, applies its effect, and
// (unless it is a retained get-out-of-jail card) returns it to the
// bottom of the same deck.
func (e *Engine) drawCard(player *model.Player, deckName string) *decision.Point {
	deck := e.deckFor(deckName)
	if len(*deck) == 0 {
		e.state.Phase = model.PhaseAwaitingDecision
		return nil
	}
	card := (*deck)[0]
	*deck = (*deck)[1:]
	keep := card == cardGetOutOfJailFree

	e.emit(event.ActorEngine, player.ID, event.TypeCardDrawn, map[string]any{
		"deck_type": deckName, "card_id": card,
	})

	var dp *decision.Point
	switch card {
	case cardAdvanceToGo:
		e.teleport(player, 0)
	case cardAdvanceToBoardwalk:
		e.teleport(player, 39)
		dp = e.resolveOwnableLanding(player, 39, 0)
	case cardAdvanceToIllinois:
		e.teleport(player, 24)
		dp = e.resolveOwnableLanding(player, 24, 0)
	case cardAdvanceToStCharles:
		e.teleport(player, 11)
		dp = e.resolveOwnableLanding(player, 11, 0)
	case cardAdvanceToReading:
		e.teleport(player, 5)
		dp = e.resolveOwnableLanding(player, 5, 0)
	case cardAdvanceToNearestUtil:
		idx := nearestIndexAhead(player.Position, []int{12, 28})
		e.teleport(player, idx)
		sp := e.state.SpaceAt(idx)
		if sp.Owned() && sp.OwnerID != player.ID && !sp.Mortgaged {
			d1, d2 := e.rollDice()
			e.emitDiceRolled(player.ID, d1, d2)
			e.chargeRent(player, sp.OwnerID, (d1+d2)*10, idx)
		} else if !sp.Owned() {
			dp = e.buildBuyOrAuctionDecision(player, idx)
			e.state.Phase = model.PhaseResolvingMove
		}
	case cardAdvanceToNearestRail:
		idx := nearestIndexAhead(player.Position, []int{5, 15, 25, 35})
		e.teleport(player, idx)
		sp := e.state.SpaceAt(idx)
		if sp.Owned() && sp.OwnerID != player.ID && !sp.Mortgaged {
			rent := e.calcRent(idx, sp.OwnerID, 0) * 2
			e.chargeRent(player, sp.OwnerID, rent, idx)
		} else if !sp.Owned() {
			dp = e.buildBuyOrAuctionDecision(player, idx)
			e.state.Phase = model.PhaseResolvingMove
		}
	case cardGoBack3:
		idx := (player.Position - 3 + board.Size) % board.Size
		player.Position = idx
		e.emit(event.ActorEngine, player.ID, event.TypePlayerMoved, map[string]any{"to": idx, "via": "card"})
		dp = e.resolveOwnableLanding(player, idx, 0)
	case cardGoToJailCard:
		e.sendToJail(player, "GO_TO_JAIL_CARD")
		e.state.DoubleRolledThisTurn = false
		e.state.Phase = model.PhaseEndTurn
		return nil
	case cardGetOutOfJailFree:
		player.GetOutOfJailCards++
		e.state.JailCardOrigin[player.ID] = append(e.state.JailCardOrigin[player.ID], deckName)
	case cardBankPays50:
		e.creditCash(player, 50, "card")
	case cardInheritance100, cardLifeInsuranceMatures:
		e.creditCash(player, 100, "card")
	case cardBuildingLoanMatures:
		e.creditCash(player, 150, "card")
	case cardHolidayFundMatures:
		e.creditCash(player, 100, "card")
	case cardIncomeTaxRefund20:
		e.creditCash(player, 20, "card")
	case cardSecondPrizeBeauty:
		e.creditCash(player, 10, "card")
	case cardPayPoorTax15:
		e.payObligation(player, []model.PaymentEntry{{Amount: 15, Reason: "card", OriginSpaceIndex: -1}})
	case cardDoctorFee50:
		e.payObligation(player, []model.PaymentEntry{{Amount: 50, Reason: "card", OriginSpaceIndex: -1}})
	case cardSchoolFee50:
		e.payObligation(player, []model.PaymentEntry{{Amount: 50, Reason: "card", OriginSpaceIndex: -1}})
	case cardHospitalFee100:
		e.payObligation(player, []model.PaymentEntry{{Amount: 100, Reason: "card", OriginSpaceIndex: -1}})
	case cardStreetRepairs:
		amount := 0
		for _, sp := range e.state.Board {
			if sp.OwnerID != player.ID {
				continue
			}
			amount += sp.Houses * 40
			if sp.Hotel {
				amount += 115
			}
		}
		if amount > 0 {
			e.payObligation(player, []model.PaymentEntry{{Amount: amount, Reason: "card", OriginSpaceIndex: -1}})
		}
	case cardPayEachPlayer50:
		var entries []model.PaymentEntry
		for _, p := range e.state.Players {
			if p.ID != player.ID && !p.Bankrupt {
				entries = append(entries, model.PaymentEntry{Amount: 50, CreditorID: p.ID, Reason: "card"})
			}
		}
		e.payObligation(player, entries)
	case cardCollectFromEach50, cardGrandOperaOpening:
		total := 0
		for _, p := range e.state.Players {
			if p.ID == player.ID || p.Bankrupt {
				continue
			}
			amount := 50
			if amount > p.Cash {
				amount = p.Cash
			}
			p.Cash -= amount
			total += amount
			e.emit(event.ActorEngine, p.ID, event.TypeCashChanged, map[string]any{"delta": -amount, "reason": "card", "cash": p.Cash})
		}
		e.creditCash(player, total, "card")
	}

	if !keep {
		*deck = append(*deck, card)
	}

	if dp != nil {
		return dp
	}
	if e.state.Pending != nil || e.isGameOver() {
		return nil
	}
	if e.state.Phase == model.PhaseResolvingMove {
		e.state.Phase = model.PhaseAwaitingDecision
	}
	return nil
}
