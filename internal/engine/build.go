package engine

import (
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/action"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/apperrors"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/board"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/event"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/model"
)

// buildTier returns a space's building level: 0-4 for houses, 5 for a
// hotel, used by the even-building check.
func (e *Engine) buildTier(idx int) int {
	sp := e.state.SpaceAt(idx)
	if sp.Hotel {
		return 5
	}
	return sp.Houses
}

// evenBuildingOK reports whether every member of group is within one
// building level of every other member, per spec.md's even-building
// invariant.
func (e *Engine) evenBuildingOK(group string) bool {
	indexes := board.GroupIndexes[group]
	if len(indexes) == 0 {
		return true
	}
	min, max := e.buildTier(indexes[0]), e.buildTier(indexes[0])
	for _, idx := range indexes[1:] {
		t := e.buildTier(idx)
		if t < min {
			min = t
		}
		if t > max {
			max = t
		}
	}
	return max-min <= 1
}

// buildHousesOrHotel validates plan atomically against the current
// board (no partial mutation on a rejected plan) and applies it one
// item at a time, re-checking the even-building invariant after each.
func (e *Engine) buildHousesOrHotel(player *model.Player, plan []action.BuildItem) error {
	if len(plan) == 0 {
		return apperrors.NewIllegalAction("build_plan is empty")
	}
	cost := 0
	type step struct {
		idx  int
		kind string
	}
	steps := make([]step, 0, len(plan))
	for _, item := range plan {
		idx, ok := e.spaceIndex(item.SpaceKey)
		if !ok {
			return apperrors.NewIllegalAction("unknown space_key %q", item.SpaceKey)
		}
		static := board.SpaceByIndex(idx)
		if static.Kind != board.KindProperty {
			return apperrors.NewIllegalAction("%s is not a property", item.SpaceKey)
		}
		sp := e.state.SpaceAt(idx)
		if sp.OwnerID != player.ID {
			return apperrors.NewIllegalAction("%s does not own %s", player.ID, item.SpaceKey)
		}
		if e.state.GroupMonopolist(static.Group) != player.ID {
			return apperrors.NewIllegalAction("%s does not hold a monopoly on %s", player.ID, static.Group)
		}
		count := item.Count
		if count <= 0 {
			count = 1
		}
		for n := 0; n < count; n++ {
			steps = append(steps, step{idx: idx, kind: item.Kind})
			cost += board.HouseCostByGroup[static.Group]
		}
	}
	if cost > player.Cash {
		return apperrors.NewIllegalAction("building this plan costs %d but %s only has %d", cost, player.ID, player.Cash)
	}

	// Copy every touched space so a step rejected below leaves the board
	// exactly as it was.
	saved := make(map[int]model.Space, len(steps))
	for _, st := range steps {
		saved[st.idx] = *e.state.SpaceAt(st.idx)
	}
	applied := false
	defer func() {
		for idx, s := range saved {
			if !applied {
				*e.state.SpaceAt(idx) = s
			}
		}
	}()

	houseDelta, hotelDelta := 0, 0
	for _, st := range steps {
		sp := e.state.SpaceAt(st.idx)
		static := board.SpaceByIndex(st.idx)
		switch st.kind {
		case "HOUSE":
			if sp.Hotel {
				return apperrors.NewIllegalAction("%s already has a hotel", e.spaceKey(st.idx))
			}
			if sp.Houses >= 4 {
				return apperrors.NewIllegalAction("%s already has 4 houses; build a hotel instead", e.spaceKey(st.idx))
			}
			if e.state.Bank.HousesRemaining-houseDelta <= 0 {
				return apperrors.NewIllegalAction("the bank has no houses remaining")
			}
			sp.Houses++
			houseDelta++
		case "HOTEL":
			if sp.Hotel {
				return apperrors.NewIllegalAction("%s already has a hotel", e.spaceKey(st.idx))
			}
			if sp.Houses != 4 {
				return apperrors.NewIllegalAction("%s needs 4 houses before a hotel", e.spaceKey(st.idx))
			}
			if e.state.Bank.HotelsRemaining-hotelDelta <= 0 {
				return apperrors.NewIllegalAction("the bank has no hotels remaining")
			}
			sp.Houses = 0
			sp.Hotel = true
			houseDelta -= 4
			hotelDelta++
		default:
			return apperrors.NewIllegalAction("unknown build kind %q", st.kind)
		}
		if !e.evenBuildingOK(static.Group) {
			return apperrors.NewIllegalAction("building on %s would violate even building across %s", e.spaceKey(st.idx), static.Group)
		}
	}

	applied = true
	e.state.Bank.HousesRemaining -= houseDelta
	e.state.Bank.HotelsRemaining -= hotelDelta
	player.Cash -= cost
	e.emit(event.ActorEngine, player.ID, event.TypeCashChanged, map[string]any{"delta": -cost, "reason": "build", "cash": player.Cash})
	for _, st := range steps {
		typ := event.TypeHouseBuilt
		if st.kind == "HOTEL" {
			typ = event.TypeHotelBuilt
		}
		e.emit(event.ActorEngine, player.ID, typ, map[string]any{"space_key": e.spaceKey(st.idx)})
	}
	return nil
}

// sellHousesOrHotel mirrors buildHousesOrHotel in reverse: each house
// sold credits half its build cost, and selling a hotel breaks it back
// into four houses taken from the bank, crediting half the hotel's
// build cost. A rejected plan leaves the board unchanged.
func (e *Engine) sellHousesOrHotel(player *model.Player, plan []action.BuildItem) error {
	if len(plan) == 0 {
		return apperrors.NewIllegalAction("sell_plan is empty")
	}
	type step struct {
		idx  int
		kind string
	}
	steps := make([]step, 0, len(plan))
	for _, item := range plan {
		idx, ok := e.spaceIndex(item.SpaceKey)
		if !ok {
			return apperrors.NewIllegalAction("unknown space_key %q", item.SpaceKey)
		}
		sp := e.state.SpaceAt(idx)
		if sp.OwnerID != player.ID {
			return apperrors.NewIllegalAction("%s does not own %s", player.ID, item.SpaceKey)
		}
		count := item.Count
		if count <= 0 {
			count = 1
		}
		for n := 0; n < count; n++ {
			steps = append(steps, step{idx: idx, kind: item.Kind})
		}
	}

	saved := make(map[int]model.Space, len(steps))
	for _, st := range steps {
		saved[st.idx] = *e.state.SpaceAt(st.idx)
	}
	applied := false
	defer func() {
		for idx, s := range saved {
			if !applied {
				*e.state.SpaceAt(idx) = s
			}
		}
	}()

	credit := 0
	houseReturn, hotelReturn := 0, 0
	for _, st := range steps {
		sp := e.state.SpaceAt(st.idx)
		static := board.SpaceByIndex(st.idx)
		price := board.HouseCostByGroup[static.Group]
		switch st.kind {
		case "HOUSE":
			if sp.Houses == 0 {
				return apperrors.NewIllegalAction("%s has no house to sell", e.spaceKey(st.idx))
			}
			sp.Houses--
			houseReturn++
			credit += price / 2
		case "HOTEL":
			if !sp.Hotel {
				return apperrors.NewIllegalAction("%s has no hotel to sell", e.spaceKey(st.idx))
			}
			if e.state.Bank.HousesRemaining+houseReturn < 4 {
				return apperrors.NewIllegalAction("the bank does not have 4 houses to break %s's hotel into", e.spaceKey(st.idx))
			}
			sp.Hotel = false
			sp.Houses = 4
			hotelReturn++
			houseReturn -= 4
			credit += price / 2
		default:
			return apperrors.NewIllegalAction("unknown sell kind %q", st.kind)
		}
		if !e.evenBuildingOK(static.Group) {
			return apperrors.NewIllegalAction("selling %s would violate even building across %s", e.spaceKey(st.idx), static.Group)
		}
	}

	applied = true
	e.state.Bank.HousesRemaining += houseReturn
	e.state.Bank.HotelsRemaining += hotelReturn
	player.Cash += credit
	e.emit(event.ActorEngine, player.ID, event.TypeCashChanged, map[string]any{"delta": credit, "reason": "sell_building", "cash": player.Cash})
	for _, st := range steps {
		typ := event.TypeHouseSold
		if st.kind == "HOTEL" {
			typ = event.TypeHotelSold
		}
		e.emit(event.ActorEngine, player.ID, typ, map[string]any{"space_key": e.spaceKey(st.idx)})
	}
	return nil
}

func (e *Engine) mortgageProperty(player *model.Player, spaceKey string) error {
	idx, ok := e.spaceIndex(spaceKey)
	if !ok {
		return apperrors.NewIllegalAction("unknown space_key %q", spaceKey)
	}
	sp := e.state.SpaceAt(idx)
	static := board.SpaceByIndex(idx)
	if sp.OwnerID != player.ID {
		return apperrors.NewIllegalAction("%s does not own %s", player.ID, spaceKey)
	}
	if sp.Mortgaged {
		return apperrors.NewIllegalAction("%s is already mortgaged", spaceKey)
	}
	if sp.Houses > 0 || sp.Hotel {
		return apperrors.NewIllegalAction("%s cannot be mortgaged while it carries buildings", spaceKey)
	}
	value := static.Price / 2
	sp.Mortgaged = true
	player.Cash += value
	e.emit(event.ActorEngine, player.ID, event.TypePropertyMortgaged, map[string]any{"space_key": spaceKey, "amount": value})
	e.emit(event.ActorEngine, player.ID, event.TypeCashChanged, map[string]any{"delta": value, "reason": "mortgage", "cash": player.Cash})
	return nil
}

func (e *Engine) unmortgageProperty(player *model.Player, spaceKey string) error {
	idx, ok := e.spaceIndex(spaceKey)
	if !ok {
		return apperrors.NewIllegalAction("unknown space_key %q", spaceKey)
	}
	sp := e.state.SpaceAt(idx)
	static := board.SpaceByIndex(idx)
	if sp.OwnerID != player.ID {
		return apperrors.NewIllegalAction("%s does not own %s", player.ID, spaceKey)
	}
	if !sp.Mortgaged {
		return apperrors.NewIllegalAction("%s is not mortgaged", spaceKey)
	}
	cost := static.Price / 2 * (100 + model.MortgageInterestPct) / 100
	if player.Cash < cost {
		return apperrors.NewIllegalAction("%s cannot afford %d to lift the mortgage on %s", player.ID, cost, spaceKey)
	}
	sp.Mortgaged = false
	player.Cash -= cost
	e.emit(event.ActorEngine, player.ID, event.TypePropertyUnmortgaged, map[string]any{"space_key": spaceKey, "amount": cost})
	e.emit(event.ActorEngine, player.ID, event.TypeCashChanged, map[string]any{"delta": -cost, "reason": "unmortgage", "cash": player.Cash})
	return nil
}
