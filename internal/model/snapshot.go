package model

import "github.com/KushagraBharti/monopoly-llm-benchmark/internal/board"

// SpaceSnapshot is the serializable projection of one board space.
type SpaceSnapshot struct {
	Index     int    `json:"index"`
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	SpaceKey  string `json:"space_key"`
	Group     string `json:"group,omitempty"`
	Price     int    `json:"price,omitempty"`
	OwnerID   string `json:"owner_id,omitempty"`
	Mortgaged bool   `json:"mortgaged"`
	Houses    int    `json:"houses"`
	Hotel     bool   `json:"hotel"`
}

// PlayerSnapshot is the serializable projection of one player.
type PlayerSnapshot struct {
	PlayerID          string `json:"player_id"`
	Name              string `json:"name"`
	Cash              int    `json:"cash"`
	Position          int    `json:"position"`
	SpaceKey          string `json:"space_key"`
	InJail            bool   `json:"in_jail"`
	JailTurns         int    `json:"jail_turns"`
	DoublesStreak     int    `json:"doubles_streak"`
	Bankrupt          bool   `json:"bankrupt"`
	BankruptTo        string `json:"bankrupt_to,omitempty"`
	GetOutOfJailCards int    `json:"get_out_of_jail_cards"`
}

// BankSnapshot is the serializable projection of bank inventory.
type BankSnapshot struct {
	HousesRemaining int `json:"houses_remaining"`
	HotelsRemaining int `json:"hotels_remaining"`
}

// Snapshot is the full serializable projection of a GameState.
type Snapshot struct {
	SchemaVersion  string           `json:"schema_version"`
	RunID          string           `json:"run_id"`
	TurnIndex      int              `json:"turn_index"`
	Phase          string           `json:"phase"`
	ActivePlayerID string           `json:"active_player_id"`
	Players        []PlayerSnapshot `json:"players"`
	Bank           BankSnapshot     `json:"bank"`
	Board          []SpaceSnapshot  `json:"board"`
}

// ToSnapshot projects the mutable GameState into an immutable,
// serializable Snapshot.
func (g *GameState) ToSnapshot() Snapshot {
	players := make([]PlayerSnapshot, 0, len(g.Players))
	for _, p := range g.Players {
		players = append(players, PlayerSnapshot{
			PlayerID:          p.ID,
			Name:              p.Name,
			Cash:              p.Cash,
			Position:          p.Position,
			SpaceKey:          board.SpaceKeyByIndex[p.Position],
			InJail:            p.InJail,
			JailTurns:         p.JailTurns,
			DoublesStreak:     p.DoublesStreak,
			Bankrupt:          p.Bankrupt,
			BankruptTo:        p.CreditorID,
			GetOutOfJailCards: p.GetOutOfJailCards,
		})
	}

	spaces := make([]SpaceSnapshot, 0, len(g.Board))
	for _, s := range g.Board {
		static := board.SpaceByIndex(s.Index)
		spaces = append(spaces, SpaceSnapshot{
			Index:     s.Index,
			Kind:      string(static.Kind),
			Name:      static.Name,
			SpaceKey:  board.SpaceKeyByIndex[s.Index],
			Group:     static.Group,
			Price:     static.Price,
			OwnerID:   s.OwnerID,
			Mortgaged: s.Mortgaged,
			Houses:    s.Houses,
			Hotel:     s.Hotel,
		})
	}

	return Snapshot{
		SchemaVersion:  "v1",
		RunID:          g.RunID,
		TurnIndex:      g.TurnIndex,
		Phase:          string(g.Phase),
		ActivePlayerID: g.ActivePlayerID,
		Players:        players,
		Bank:           BankSnapshot{HousesRemaining: g.Bank.HousesRemaining, HotelsRemaining: g.Bank.HotelsRemaining},
		Board:          spaces,
	}
}
