package coordinator

import (
	"fmt"

	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/event"
)

// notableSummary renders a handful of engine event types into the
// compact, space_key-only strings spec.md §4.2's notable-action memory
// window wants. Everything else is left out of memory.
func notableSummary(ev event.Event) (string, bool) {
	switch ev.Type {
	case event.TypePropertyPurchased:
		return fmt.Sprintf("%s bought %s", str(ev.Payload["player_id"]), spaceKeyOf(ev.Payload)), true
	case event.TypeRentPaid:
		return fmt.Sprintf("%s paid %s rent to %s", str(ev.Payload["from_player_id"]), amount(ev.Payload["amount"]), str(ev.Payload["to_player_id"])), true
	case event.TypePropertyMortgaged:
		return fmt.Sprintf("%s mortgaged %s", ev.Actor.PlayerID, str(ev.Payload["space_key"])), true
	case event.TypeAuctionEnded:
		if str(ev.Payload["winner_player_id"]) == "" {
			return "an auction closed with no bids", true
		}
		return fmt.Sprintf("%s won an auction for %s", str(ev.Payload["winner_player_id"]), amount(ev.Payload["winning_bid"])), true
	case event.TypeTradeAccepted:
		return fmt.Sprintf("%s and %s completed a trade", str(ev.Payload["initiator_id"]), str(ev.Payload["counterparty_id"])), true
	case event.TypeSentToJail:
		return fmt.Sprintf("%s was sent to jail (%s)", str(ev.Payload["player_id"]), str(ev.Payload["reason"])), true
	case event.TypeGameEnded:
		return fmt.Sprintf("the game ended (%s)", str(ev.Payload["reason"])), true
	default:
		return "", false
	}
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func amount(v any) string {
	switch n := v.(type) {
	case int:
		return fmt.Sprintf("%d", n)
	case int64:
		return fmt.Sprintf("%d", n)
	case float64:
		return fmt.Sprintf("%d", int(n))
	default:
		return fmt.Sprintf("%v", v)
	}
}

func spaceKeyOf(payload map[string]any) string {
	if v, ok := payload["space_key"]; ok {
		return str(v)
	}
	return fmt.Sprintf("space %v", payload["space_index"])
}
