package engine

import (
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/board"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/model"
)

// mortgageableSpaceKeys returns the space_keys player could legally
// mortgage right now, mirroring mortgageProperty's own preconditions.
func (e *Engine) mortgageableSpaceKeys(playerID string) []string {
	var keys []string
	for idx, sp := range e.state.Board {
		if sp.OwnerID != playerID || sp.Mortgaged || sp.Houses > 0 || sp.Hotel {
			continue
		}
		keys = append(keys, e.spaceKey(idx))
	}
	return keys
}

// unmortgageableSpaceKeys returns the space_keys player could legally
// lift the mortgage on right now, including the cash check
// unmortgageProperty itself enforces.
func (e *Engine) unmortgageableSpaceKeys(playerID string, cash int) []string {
	var keys []string
	for idx, sp := range e.state.Board {
		if sp.OwnerID != playerID || !sp.Mortgaged {
			continue
		}
		static := board.SpaceByIndex(idx)
		cost := static.Price / 2 * (100 + model.MortgageInterestPct) / 100
		if cash < cost {
			continue
		}
		keys = append(keys, e.spaceKey(idx))
	}
	return keys
}

// buildableSpaceKeys returns the space_keys where player could legally
// place the next house or hotel, following buildHousesOrHotel's own
// monopoly, even-building, and bank-inventory preconditions.
func (e *Engine) buildableSpaceKeys(player *model.Player) []string {
	var keys []string
	for group, indexes := range board.GroupIndexes {
		if e.state.GroupMonopolist(group) != player.ID {
			continue
		}
		if player.Cash < board.HouseCostByGroup[group] {
			continue
		}
		minTier := e.buildTier(indexes[0])
		for _, idx := range indexes[1:] {
			if t := e.buildTier(idx); t < minTier {
				minTier = t
			}
		}
		if minTier >= 5 {
			continue // every member already carries a hotel
		}
		for _, idx := range indexes {
			sp := e.state.SpaceAt(idx)
			if e.buildTier(idx) != minTier || sp.Hotel {
				continue
			}
			if sp.Houses < 4 {
				if e.state.Bank.HousesRemaining <= 0 {
					continue
				}
			} else if e.state.Bank.HotelsRemaining <= 0 {
				continue
			}
			keys = append(keys, e.spaceKey(idx))
		}
	}
	return keys
}

// sellableSpaceKeys returns the space_keys where player could legally
// sell a house or hotel back to the bank, following sellHousesOrHotel's
// own ownership and bank-inventory preconditions.
func (e *Engine) sellableSpaceKeys(playerID string) []string {
	var keys []string
	for _, indexes := range board.GroupIndexes {
		allOwned := true
		for _, idx := range indexes {
			if e.state.SpaceAt(idx).OwnerID != playerID {
				allOwned = false
				break
			}
		}
		if !allOwned {
			continue
		}
		maxTier := e.buildTier(indexes[0])
		for _, idx := range indexes[1:] {
			if t := e.buildTier(idx); t > maxTier {
				maxTier = t
			}
		}
		if maxTier <= 0 {
			continue
		}
		for _, idx := range indexes {
			sp := e.state.SpaceAt(idx)
			if e.buildTier(idx) != maxTier {
				continue
			}
			if sp.Hotel {
				if e.state.Bank.HousesRemaining < 4 {
					continue
				}
			} else if sp.Houses == 0 {
				continue
			}
			keys = append(keys, e.spaceKey(idx))
		}
	}
	return keys
}

// eligibleCounterpartyIDs returns every other solvent player's id,
// the same set a trade proposal or post-turn trade offer can target.
func (e *Engine) eligibleCounterpartyIDs(playerID string) []string {
	var ids []string
	for _, p := range e.state.Players {
		if p.ID != playerID && !p.Bankrupt {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// tradeSettlementFeasible reports whether accepting the trade thread's
// current offer/request could actually be applied: both bundles must
// still validate and both parties must be able to cover the mortgage
// interest acceptTrade charges, mirroring acceptTrade's own checks.
func (e *Engine) tradeSettlementFeasible(proposer, responder *model.Player, offer, request model.Bundle) bool {
	if e.validateBundle(proposer, offer) != nil {
		return false
	}
	if e.validateBundle(responder, request) != nil {
		return false
	}
	if !e.canCoverMortgageInterest(responder, offer) {
		return false
	}
	if !e.canCoverMortgageInterest(proposer, request) {
		return false
	}
	return true
}

// canCoverMortgageInterest reports whether receiver can afford the 10%
// mortgage-interest fee chargeMortgageInterest would charge for every
// mortgaged property in bundle.
func (e *Engine) canCoverMortgageInterest(receiver *model.Player, bundle model.Bundle) bool {
	total := 0
	for _, key := range bundle.Properties {
		idx, ok := e.spaceIndex(key)
		if !ok {
			continue
		}
		if e.state.SpaceAt(idx).Mortgaged {
			total += e.spaceStaticPrice(idx) * model.MortgageInterestPct / 100
		}
	}
	return receiver.Cash >= total
}
