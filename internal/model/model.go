// Package model holds the mutable per-run game state: players, board
// overlay, bank inventory, and the optional auction/trade/payment
// sub-states. The rules engine is the only writer; every other
// component only reads projections of it.
package model

import "github.com/KushagraBharti/monopoly-llm-benchmark/internal/board"

// Phase names the engine's coarse turn-loop state.
type Phase string

const (
	PhaseStartTurn        Phase = "START_TURN"
	PhaseResolvingMove     Phase = "RESOLVING_MOVE"
	PhaseAwaitingDecision  Phase = "AWAITING_DECISION"
	PhaseEndTurn           Phase = "END_TURN"
	PhaseGameOver          Phase = "GAME_OVER"
)

const (
	DefaultStartingCash = 1500
	DefaultHouses       = 32
	DefaultHotels       = 12
	JailFine            = 50
	MaxJailTurns        = 3
	MaxDoublesStreak    = 2 // a 3rd consecutive double sends the player to jail
	MaxTradeExchanges   = 5
	MortgageInterestPct = 10
)

// Space is the mutable per-run overlay for one board index. The
// static layout (kind/name/group/price) lives in package board.
type Space struct {
	Index    int
	OwnerID  string // empty means unowned
	Mortgaged bool
	Houses   int
	Hotel    bool
}

// Owned reports whether the space currently has an owner.
func (s *Space) Owned() bool { return s.OwnerID != "" }

// BuildingValue returns the building tier used for even-building and
// rent-tier lookups: 0 for no buildings, 1-4 for house count, 5 for a
// hotel.
func (s *Space) BuildingValue() int {
	if s.Hotel {
		return 5
	}
	return s.Houses
}

// NewBoard builds the per-run mutable overlay, one Space per board index.
func NewBoard() []*Space {
	spaces := make([]*Space, board.Size)
	for i := range spaces {
		spaces[i] = &Space{Index: i}
	}
	return spaces
}

// Player is one seat's mutable state.
type Player struct {
	ID                string
	Name              string
	Cash              int
	Position          int
	InJail            bool
	JailTurns         int
	DoublesStreak     int
	Bankrupt          bool
	CreditorID        string // empty when bankrupt to the bank, or never bankrupt
	GetOutOfJailCards int
}

// NewPlayer creates a player with the standard starting cash.
func NewPlayer(id, name string) *Player {
	return &Player{ID: id, Name: name, Cash: DefaultStartingCash}
}

// Bank tracks the shared building inventory.
type Bank struct {
	HousesRemaining int
	HotelsRemaining int
}

// NewBank returns a bank with the standard starting inventory.
func NewBank() Bank {
	return Bank{HousesRemaining: DefaultHouses, HotelsRemaining: DefaultHotels}
}

// Auction holds the state of an in-progress property auction.
type Auction struct {
	TargetIndex          int
	HighBid              int
	LeaderID             string
	ActiveBidders        []string
	CursorIndex          int
	InitiatorID          string
	TurnOwnerID          string
	RolledDoubleThisTurn bool
}

// Bundle is cash + properties + jail cards exchanged in a trade.
type Bundle struct {
	Cash               int
	Properties         []string // space_keys
	GetOutOfJailCards  int
}

// TradeExchange records one half-turn of a trade negotiation.
type TradeExchange struct {
	ActorID string
	Offer   Bundle
	Request Bundle
}

// TradeThread is the state of an in-progress trade negotiation.
type TradeThread struct {
	InitiatorID    string
	CounterpartyID string
	MaxExchanges   int
	ExchangeIndex  int
	History        []TradeExchange
	CurrentOffer   Bundle
	CurrentRequest Bundle
	TurnOwnerID    string
	RolledDouble   bool
}

// PaymentEntry is one payment obligation in a pending-payment queue
// (used for multi-payee card effects).
type PaymentEntry struct {
	Amount          int
	CreditorID      string // empty means the bank
	Reason          string
	OriginSpaceIndex int // -1 when not rent
}

// PendingPayment is the active player's unresolved debt.
type PendingPayment struct {
	Current PaymentEntry
	Queue   []PaymentEntry // remaining payments after Current resolves
}

// GameState is the full mutable state of one run.
type GameState struct {
	RunID          string
	Seed           int64
	TurnIndex      int
	Phase          Phase
	ActivePlayerID string

	Players []*Player
	Bank    Bank
	Board   []*Space

	Auction *Auction
	Trade   *TradeThread
	Pending *PendingPayment

	ChanceDeck          []string
	CommunityChestDeck  []string

	StopReason string // set by request_stop; consumed on the next advance
	Winner     string
	EndReason  string

	// DoubleRolledThisTurn records whether the active player's last
	// roll this turn was a (non-third) double, granting an extra turn
	// once post-turn effects resolve.
	DoubleRolledThisTurn bool

	// JailCardOrigin tracks, per player, which deck (CHANCE or
	// COMMUNITY_CHEST) each held get-out-of-jail card came from, FIFO,
	// so using one returns it to the bottom of the correct deck.
	JailCardOrigin map[string][]string
}

// PlayerByID finds a player, or nil.
func (g *GameState) PlayerByID(id string) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// ActivePlayer returns the active player, or nil if none is set.
func (g *GameState) ActivePlayer() *Player {
	return g.PlayerByID(g.ActivePlayerID)
}

// NextActivePlayerID returns the next non-bankrupt player after
// currentID, in players' insertion order, wrapping around.
func (g *GameState) NextActivePlayerID(currentID string) string {
	if len(g.Players) == 0 {
		return ""
	}
	start := -1
	for i, p := range g.Players {
		if p.ID == currentID {
			start = i
			break
		}
	}
	if start == -1 {
		start = 0
	}
	for i := 1; i <= len(g.Players); i++ {
		idx := (start + i) % len(g.Players)
		if !g.Players[idx].Bankrupt {
			return g.Players[idx].ID
		}
	}
	return ""
}

// SolvencyCount returns how many players remain non-bankrupt.
func (g *GameState) SolvencyCount() int {
	n := 0
	for _, p := range g.Players {
		if !p.Bankrupt {
			n++
		}
	}
	return n
}

// SpaceAt returns the mutable overlay for index idx.
func (g *GameState) SpaceAt(idx int) *Space { return g.Board[idx] }

// GroupOwnedByMonopolist reports whether every member of group is
// owned by the same solvent player and none is mortgaged; returns
// that owner id (or "" if not a monopoly).
func (g *GameState) GroupMonopolist(group string) string {
	indexes := boardGroupIndexes(group)
	if len(indexes) == 0 {
		return ""
	}
	owner := ""
	for _, idx := range indexes {
		sp := g.Board[idx]
		if !sp.Owned() || sp.Mortgaged {
			return ""
		}
		if owner == "" {
			owner = sp.OwnerID
		} else if owner != sp.OwnerID {
			return ""
		}
	}
	return owner
}

func boardGroupIndexes(group string) []int {
	return board.GroupIndexes[group]
}

// RailroadsOwnedBy counts railroads owned by playerID.
func (g *GameState) RailroadsOwnedBy(playerID string) int {
	count := 0
	for _, s := range board.Spaces() {
		if s.Kind == board.KindRailroad && g.Board[s.Index].OwnerID == playerID {
			count++
		}
	}
	return count
}

// UtilitiesOwnedBy counts utilities owned by playerID.
func (g *GameState) UtilitiesOwnedBy(playerID string) int {
	count := 0
	for _, s := range board.Spaces() {
		if s.Kind == board.KindUtility && g.Board[s.Index].OwnerID == playerID {
			count++
		}
	}
	return count
}

// BankConservationTotal computes the bank-conservation total:
// bank.houses + bank.hotels*5 + sum(spaces.houses) + sum(spaces.hotel*5).
// Building, selling and bankruptcy move units between the bank and the
// board without changing it; a fresh game totals 32 + 12*5.
func (g *GameState) BankConservationTotal() int {
	total := g.Bank.HousesRemaining + g.Bank.HotelsRemaining*5
	for _, s := range g.Board {
		total += s.Houses
		if s.Hotel {
			total += 5
		}
	}
	return total
}
