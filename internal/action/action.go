// Package action defines the validated instruction shape the engine
// consumes (spec.md §6) and the typed argument structs for each
// action name.
package action

// Name enumerates every action the engine can apply.
type Name string

const (
	BuyProperty          Name = "buy_property"
	StartAuction         Name = "start_auction"
	PayJailFine          Name = "pay_jail_fine"
	RollForDoubles       Name = "roll_for_doubles"
	UseGetOutOfJailCard  Name = "use_get_out_of_jail_card"
	BidAuction           Name = "bid_auction"
	DropOut              Name = "drop_out"
	ProposeTrade         Name = "propose_trade"
	AcceptTrade          Name = "accept_trade"
	RejectTrade          Name = "reject_trade"
	CounterTrade         Name = "counter_trade"
	MortgageProperty     Name = "mortgage_property"
	UnmortgageProperty   Name = "unmortgage_property"
	BuildHousesOrHotel   Name = "build_houses_or_hotel"
	SellHousesOrHotel    Name = "sell_houses_or_hotel"
	EndTurn              Name = "end_turn"
	DeclareBankruptcy    Name = "declare_bankruptcy"
	Noop                 Name = "NOOP"
)

// Bundle is the cash/properties/jail-cards unit exchanged in a trade.
type Bundle struct {
	Cash              int      `json:"cash"`
	Properties        []string `json:"properties"`
	GetOutOfJailCards int      `json:"get_out_of_jail_cards"`
}

// BuildItem is one line of a build or sell plan.
type BuildItem struct {
	SpaceKey string `json:"space_key"`
	Kind     string `json:"kind"` // HOUSE or HOTEL
	Count    int    `json:"count"`
}

// Args is the union of every action's typed arguments. Only the
// fields relevant to Action.Name are populated; this mirrors the
// "tagged sum type" guidance in spec.md §9 within a single struct for
// simplicity, since Go lacks native sum types and every action's args
// are mutually exclusive in practice.
type Args struct {
	BidAmount    int         `json:"bid_amount,omitempty"`
	ToPlayerID   string      `json:"to_player_id,omitempty"`
	Offer        Bundle      `json:"offer,omitempty"`
	Request      Bundle      `json:"request,omitempty"`
	SpaceKey     string      `json:"space_key,omitempty"`
	BuildPlan    []BuildItem `json:"build_plan,omitempty"`
	SellPlan     []BuildItem `json:"sell_plan,omitempty"`
	Reason       string      `json:"reason,omitempty"`
}

// Request is the validated instruction the engine's ApplyAction
// consumes (spec.md §6's action schema).
type Request struct {
	SchemaVersion  string `json:"schema_version"`
	DecisionID     string `json:"decision_id"`
	Name           Name   `json:"action"`
	Args           Args   `json:"args"`
	PublicMessage  string `json:"public_message,omitempty"`
	PrivateThought string `json:"private_thought,omitempty"`
}
