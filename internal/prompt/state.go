// Package prompt assembles the per-decision LLM user payload:
// full_state, decision, decision_focus, and an optional reasoning
// block, serialized to canonical JSON (spec.md §4.2).
package prompt

import (
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/model"
)

// Holding is one owned property in a player's view, space_key only.
type Holding struct {
	SpaceKey string `json:"space_key"`
	Houses   int    `json:"houses,omitempty"`
	Hotel    bool   `json:"hotel,omitempty"`
}

// PlayerView is the compact per-player projection spec.md §4.2
// requires for both the acting player and every opponent: cash,
// position as space_key, jail flags, and holdings split into owned
// (unmortgaged) and mortgaged.
type PlayerView struct {
	PlayerID          string    `json:"player_id"`
	Name              string    `json:"name"`
	Cash              int       `json:"cash"`
	SpaceKey          string    `json:"space_key"`
	InJail            bool      `json:"in_jail"`
	JailTurns         int       `json:"jail_turns"`
	Bankrupt          bool      `json:"bankrupt"`
	GetOutOfJailCards int       `json:"get_out_of_jail_cards"`
	Owned             []Holding `json:"owned"`
	Mortgaged         []string  `json:"mortgaged"`
}

// BankView is the shared building inventory.
type BankView struct {
	HousesRemaining int `json:"houses_remaining"`
	HotelsRemaining int `json:"hotels_remaining"`
}

// FullState is the complete full_state field of the prompt payload.
type FullState struct {
	You       PlayerView `json:"you"`
	Opponents []PlayerView `json:"opponents"`
	Bank      BankView   `json:"bank"`
	Memory    Snapshot   `json:"memory"`
}

func buildPlayerView(snap model.Snapshot, p model.PlayerSnapshot) PlayerView {
	var owned []Holding
	var mortgaged []string
	for _, sp := range snap.Board {
		if sp.OwnerID != p.PlayerID {
			continue
		}
		if sp.Mortgaged {
			mortgaged = append(mortgaged, sp.SpaceKey)
			continue
		}
		owned = append(owned, Holding{SpaceKey: sp.SpaceKey, Houses: sp.Houses, Hotel: sp.Hotel})
	}
	return PlayerView{
		PlayerID:          p.PlayerID,
		Name:              p.Name,
		Cash:              p.Cash,
		SpaceKey:          p.SpaceKey,
		InJail:            p.InJail,
		JailTurns:         p.JailTurns,
		Bankrupt:          p.Bankrupt,
		GetOutOfJailCards: p.GetOutOfJailCards,
		Owned:             owned,
		Mortgaged:         mortgaged,
	}
}

// BuildFullState projects snap into the full_state field for actorID,
// using store for the per-player memory window.
func BuildFullState(snap model.Snapshot, actorID string, store *Store) FullState {
	fs := FullState{
		Bank:   BankView{HousesRemaining: snap.Bank.HousesRemaining, HotelsRemaining: snap.Bank.HotelsRemaining},
		Memory: store.SnapshotFor(actorID),
	}
	for _, p := range snap.Players {
		view := buildPlayerView(snap, p)
		if p.PlayerID == actorID {
			fs.You = view
		} else {
			fs.Opponents = append(fs.Opponents, view)
		}
	}
	return fs
}
