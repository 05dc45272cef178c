package engine

import (
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/apperrors"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/event"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/model"
)

// payObligation queues entries for debtor in order and attempts to pay
// each immediately; the first entry debtor cannot fully cover becomes
// the active liquidation obligation (spec.md §4.1's payment protocol).
func (e *Engine) payObligation(debtor *model.Player, entries []model.PaymentEntry) {
	if len(entries) == 0 {
		return
	}
	e.state.Pending = &model.PendingPayment{Current: entries[0], Queue: entries[1:]}
	e.tryResolvePending()
}

// tryResolvePending pays as much of the pending queue as debtor's cash
// allows, stopping (and leaving Pending set) at the first entry it
// cannot fully cover. Returns true once the queue is fully drained.
func (e *Engine) tryResolvePending() bool {
	debtor := e.findPlayer(e.state.ActivePlayerID)
	for e.state.Pending != nil {
		entry := e.state.Pending.Current
		if debtor.Cash < entry.Amount {
			return false
		}
		debtor.Cash -= entry.Amount
		e.emit(event.ActorEngine, debtor.ID, event.TypeCashChanged, map[string]any{
			"delta": -entry.Amount, "reason": entry.Reason, "cash": debtor.Cash,
		})
		if entry.CreditorID != "" {
			creditor := e.findPlayer(entry.CreditorID)
			if creditor != nil {
				creditor.Cash += entry.Amount
				e.emit(event.ActorEngine, creditor.ID, event.TypeCashChanged, map[string]any{
					"delta": entry.Amount, "reason": entry.Reason, "cash": creditor.Cash,
				})
			}
		}
		if len(e.state.Pending.Queue) == 0 {
			e.state.Pending = nil
			return true
		}
		e.state.Pending = &model.PendingPayment{
			Current: e.state.Pending.Queue[0],
			Queue:   e.state.Pending.Queue[1:],
		}
	}
	return true
}

// declareBankruptcy transfers everything debtor owns (cash, jail cards,
// and every property with its buildings and mortgage state) to
// creditorID. When creditorID is empty or names no player, buildings
// and jail cards go back to the bank with no cash paid for them, and
// every property is released unowned and unmortgaged. Either way debtor
// is then marked bankrupt with zero cash.
func (e *Engine) declareBankruptcy(debtor *model.Player, creditorID string) error {
	if debtor.Bankrupt {
		return apperrors.NewIllegalAction("player %s is already bankrupt", debtor.ID)
	}

	if creditorID == "" {
		e.liquidateToBank(debtor)
	} else {
		e.transferEverythingTo(debtor, creditorID)
	}

	debtor.Bankrupt = true
	debtor.CreditorID = creditorID
	debtor.Cash = 0
	e.state.Pending = nil

	e.emit(event.ActorEngine, debtor.ID, event.TypeCashChanged, map[string]any{
		"delta": 0, "reason": "bankrupt", "cash": 0,
	})
	return nil
}

func (e *Engine) liquidateToBank(debtor *model.Player) {
	for _, sp := range e.state.Board {
		if sp.OwnerID != debtor.ID {
			continue
		}
		if sp.Houses > 0 {
			e.state.Bank.HousesRemaining += sp.Houses
			sp.Houses = 0
		}
		if sp.Hotel {
			e.state.Bank.HotelsRemaining++
			sp.Hotel = false
		}
		sp.OwnerID = ""
		sp.Mortgaged = false
	}
	e.releaseJailCardsToBank(debtor.ID)
	debtor.GetOutOfJailCards = 0
}

func (e *Engine) transferEverythingTo(debtor *model.Player, creditorID string) {
	creditor := e.findPlayer(creditorID)
	if creditor == nil {
		e.liquidateToBank(debtor)
		return
	}
	creditor.Cash += debtor.Cash
	creditor.GetOutOfJailCards += debtor.GetOutOfJailCards
	e.migrateJailCardOrigins(debtor.ID, creditor.ID, debtor.GetOutOfJailCards)
	debtor.GetOutOfJailCards = 0
	for _, sp := range e.state.Board {
		if sp.OwnerID == debtor.ID {
			sp.OwnerID = creditor.ID
			e.emit(event.ActorEngine, debtor.ID, event.TypePropertyTransferred, map[string]any{
				"to_player_id": creditor.ID, "space_key": e.spaceKey(sp.Index), "reason": "bankruptcy",
			})
		}
	}
}
