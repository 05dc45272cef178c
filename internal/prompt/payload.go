package prompt

import (
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/decision"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/model"
)

// LegalActionView augments the engine's decision.LegalAction with the
// two fields spec.md §4.2 says every action's args schema must accept:
// optional public_message and private_thought strings.
type LegalActionView struct {
	Name     string            `json:"name"`
	Required []string          `json:"required,omitempty"`
	Fields   map[string]string `json:"fields"`
	UIHint   string            `json:"ui_hint,omitempty"`
}

func augmentLegalAction(la decision.LegalAction) LegalActionView {
	fields := make(map[string]string, len(la.Args.Fields)+2)
	for k, v := range la.Args.Fields {
		fields[k] = v
	}
	fields["public_message"] = "string"
	fields["private_thought"] = "string"
	return LegalActionView{
		Name:     la.Name,
		Required: la.Args.Required,
		Fields:   fields,
		UIHint:   la.UIHint,
	}
}

// DecisionView is the decision field of the prompt payload.
type DecisionView struct {
	DecisionID    string            `json:"decision_id"`
	Type          string            `json:"decision_type"`
	ActorPlayerID string            `json:"actor_player_id"`
	LegalActions  []LegalActionView `json:"legal_actions"`
}

func buildDecisionView(dp *decision.Point) DecisionView {
	actions := make([]LegalActionView, len(dp.LegalActions))
	for i, la := range dp.LegalActions {
		actions[i] = augmentLegalAction(la)
	}
	return DecisionView{
		DecisionID:    dp.DecisionID,
		Type:          string(dp.Type),
		ActorPlayerID: dp.ActorPlayerID,
		LegalActions:  actions,
	}
}

// ReasoningConfig is the optional llm.reasoning block, only included
// when the acting player's model configuration enables it.
type ReasoningConfig struct {
	Effort    string `json:"effort,omitempty"`
	MaxTokens int    `json:"max_tokens,omitempty"`
}

// Payload is the complete user payload the pipeline sends to the
// remote model, and also the value persisted as prompt_payload_raw.
type Payload struct {
	FullState     FullState        `json:"full_state"`
	Decision      DecisionView     `json:"decision"`
	DecisionFocus map[string]any   `json:"decision_focus"`
	Reasoning     *ReasoningConfig `json:"llm_reasoning,omitempty"`
}

// Build assembles the full prompt Payload for dp: full_state from
// snap/store, decision from dp's legal actions (augmented), and
// decision_focus from the per-type scenario builder. reasoning is nil
// when no reasoning block is configured for this player.
func Build(dp *decision.Point, snap model.Snapshot, store *Store, reasoning *ReasoningConfig) Payload {
	return Payload{
		FullState:     BuildFullState(snap, dp.ActorPlayerID, store),
		Decision:      buildDecisionView(dp),
		DecisionFocus: BuildFocus(dp, snap),
		Reasoning:     reasoning,
	}
}
