// Package event defines the engine's append-only, totally ordered
// output record and the sequence/timestamp allocator that guarantees
// spec.md §5's ordering law: seq is dense 0..N-1 and ts_ms is
// non-decreasing.
package event

import "fmt"

// Actor identifies who caused an event.
type ActorKind string

const (
	ActorEngine ActorKind = "ENGINE"
	ActorPlayer ActorKind = "PLAYER"
)

// Actor is the {kind, player_id} pair carried on every event.
type Actor struct {
	Kind     ActorKind
	PlayerID string
}

// Event is one immutable, numbered record of a state change.
type Event struct {
	SchemaVersion string
	RunID         string
	EventID       string
	Seq           int
	TurnIndex     int
	TSMs          int64
	Actor         Actor
	Type          string
	Payload       map[string]any
}

// Allocator hands out dense, monotonically increasing seq values and
// derives ts_ms = start + seq*step, matching spec.md §5.
type Allocator struct {
	runID     string
	startTS   int64
	stepTS    int64
	nextSeq   int
}

// NewAllocator builds an Allocator for one run.
func NewAllocator(runID string, startTSMs, tsStepMs int64) *Allocator {
	return &Allocator{runID: runID, startTS: startTSMs, stepTS: tsStepMs}
}

// New builds the next Event in sequence for turnIndex, actor, typ, and
// payload.
func (a *Allocator) New(turnIndex int, actor Actor, typ string, payload map[string]any) Event {
	seq := a.nextSeq
	a.nextSeq++
	return Event{
		SchemaVersion: "v1",
		RunID:         a.runID,
		EventID:       fmt.Sprintf("%s-%06d", a.runID, seq),
		Seq:           seq,
		TurnIndex:     turnIndex,
		TSMs:          a.startTS + int64(seq)*a.stepTS,
		Actor:         actor,
		Type:          typ,
		Payload:       payload,
	}
}

// NextSeq reports the seq the next allocated event will receive,
// useful for recording event-id ranges on decision-resolved records.
func (a *Allocator) NextSeq() int { return a.nextSeq }

// Event type name constants (spec.md §6).
const (
	TypeGameStarted           = "GAME_STARTED"
	TypeTurnStarted           = "TURN_STARTED"
	TypeTurnEnded             = "TURN_ENDED"
	TypeDiceRolled            = "DICE_ROLLED"
	TypePlayerMoved           = "PLAYER_MOVED"
	TypeCashChanged           = "CASH_CHANGED"
	TypePropertyPurchased     = "PROPERTY_PURCHASED"
	TypeRentPaid              = "RENT_PAID"
	TypeSentToJail            = "SENT_TO_JAIL"
	TypeCardDrawn             = "CARD_DRAWN"
	TypePropertyMortgaged     = "PROPERTY_MORTGAGED"
	TypePropertyUnmortgaged   = "PROPERTY_UNMORTGAGED"
	TypeHouseBuilt            = "HOUSE_BUILT"
	TypeHouseSold             = "HOUSE_SOLD"
	TypeHotelBuilt            = "HOTEL_BUILT"
	TypeHotelSold             = "HOTEL_SOLD"
	TypeAuctionStarted        = "AUCTION_STARTED"
	TypeAuctionBidPlaced      = "AUCTION_BID_PLACED"
	TypeAuctionPlayerDropped  = "AUCTION_PLAYER_DROPPED"
	TypeAuctionEnded          = "AUCTION_ENDED"
	TypeTradeProposed         = "TRADE_PROPOSED"
	TypeTradeCountered        = "TRADE_COUNTERED"
	TypeTradeAccepted         = "TRADE_ACCEPTED"
	TypeTradeRejected         = "TRADE_REJECTED"
	TypeTradeExpired          = "TRADE_EXPIRED"
	TypePropertyTransferred   = "PROPERTY_TRANSFERRED"
	TypeLLMDecisionRequested  = "LLM_DECISION_REQUESTED"
	TypeLLMDecisionResponse   = "LLM_DECISION_RESPONSE"
	TypeLLMPublicMessage      = "LLM_PUBLIC_MESSAGE"
	TypeLLMPrivateThought     = "LLM_PRIVATE_THOUGHT"
	TypeGameEnded             = "GAME_ENDED"
)
