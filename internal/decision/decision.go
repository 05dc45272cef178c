// Package decision defines the structured request the engine emits
// when it needs an action from a player (spec.md §3's Decision point
// and §4.1's decision types).
package decision

import "github.com/KushagraBharti/monopoly-llm-benchmark/internal/model"

// Type enumerates the decision types the engine can produce.
type Type string

const (
	BuyOrAuction   Type = "BUY_OR_AUCTION_DECISION"
	Jail           Type = "JAIL_DECISION"
	AuctionBid     Type = "AUCTION_BID_DECISION"
	TradeResponse  Type = "TRADE_RESPONSE_DECISION"
	TradePropose   Type = "TRADE_PROPOSE_DECISION"
	PostTurnAction Type = "POST_TURN_ACTION_DECISION"
	Liquidation    Type = "LIQUIDATION_DECISION"
)

// ArgsSchema is a minimal JSON-schema-shaped args descriptor: the set
// of required field names and a human-readable type hint per field.
// It always accepts {} when Required is empty, and public_message /
// private_thought are implicitly always allowed (spec.md §3).
type ArgsSchema struct {
	Required []string          `json:"required,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
}

// LegalAction is one action the engine currently accepts for a
// pending decision, with its args contract and an optional UI hint.
type LegalAction struct {
	Name   string     `json:"name"`
	Args   ArgsSchema `json:"args_schema"`
	UIHint string     `json:"ui_hint,omitempty"`
}

// Point is a structured request for an action from one player.
type Point struct {
	SchemaVersion string          `json:"schema_version"`
	RunID         string          `json:"run_id"`
	DecisionID    string          `json:"decision_id"`
	TurnIndex     int             `json:"turn_index"`
	ActorPlayerID string          `json:"actor_player_id"`
	Type          Type            `json:"decision_type"`
	Snapshot      model.Snapshot  `json:"snapshot"`
	LegalActions  []LegalAction   `json:"legal_actions"`
	Focus         map[string]any  `json:"decision_focus,omitempty"`
}

// HasAction reports whether name is among the decision's legal actions.
func (p *Point) HasAction(name string) bool {
	for _, a := range p.LegalActions {
		if a.Name == name {
			return true
		}
	}
	return false
}

// LegalActionNames returns the plain list of legal action names.
func (p *Point) LegalActionNames() []string {
	out := make([]string, len(p.LegalActions))
	for i, a := range p.LegalActions {
		out[i] = a.Name
	}
	return out
}
