// Package arbiter implements the Tool-Call Arbiter (spec.md §4.2,
// component G): parsing a remote chat-completion response into a tool
// call, validating it against a decision's legal actions in two
// stages, and computing the deterministic, always-legal fallback
// action when parsing or validation fails.
package arbiter

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/action"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/apperrors"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/decision"
)

// knownActionNames is the enumerated set the schema validation stage
// checks a parsed tool name against (spec.md §6).
var knownActionNames = map[action.Name]bool{
	action.BuyProperty:         true,
	action.StartAuction:        true,
	action.PayJailFine:         true,
	action.RollForDoubles:      true,
	action.UseGetOutOfJailCard: true,
	action.BidAuction:          true,
	action.DropOut:             true,
	action.ProposeTrade:        true,
	action.AcceptTrade:         true,
	action.RejectTrade:         true,
	action.CounterTrade:        true,
	action.MortgageProperty:    true,
	action.UnmortgageProperty:  true,
	action.BuildHousesOrHotel:  true,
	action.SellHousesOrHotel:   true,
	action.EndTurn:             true,
	action.DeclareBankruptcy:   true,
}

// ParsedToolCall is the result of extracting the model's chosen tool
// call from a raw chat-completion response body.
type ParsedToolCall struct {
	ToolName       string
	RawArguments   string // raw JSON object, "{}" when absent
	PublicMessage  string
	PrivateThought string
}

// ParseResponse extracts tool_calls[0].function from raw, falling
// back to the legacy function_call field, per spec.md §4.2. Arguments
// JSON may be empty (treated as "{}"); public_message/private_thought
// are read as optional siblings inside the arguments object, since the
// augmented tool schema (internal/prompt) declares them there.
func ParseResponse(raw []byte) (*ParsedToolCall, error) {
	fn := gjson.GetBytes(raw, "tool_calls.0.function")
	if !fn.Exists() {
		fn = gjson.GetBytes(raw, "function_call")
	}
	if !fn.Exists() {
		return nil, &apperrors.ContentError{Kind: apperrors.ContentNoToolCall, Message: "no tool_calls[0].function or function_call in response"}
	}
	name := fn.Get("name").String()
	if name == "" {
		return nil, &apperrors.ContentError{Kind: apperrors.ContentNoToolCall, Message: "tool call carries no function name"}
	}
	argsStr := fn.Get("arguments").String()
	if argsStr == "" {
		argsStr = "{}"
	}
	if !gjson.Valid(argsStr) {
		return nil, &apperrors.ContentError{Kind: apperrors.ContentInvalidJSON, Message: "tool call arguments are not valid JSON"}
	}
	parsedArgs := gjson.Parse(argsStr)
	return &ParsedToolCall{
		ToolName:       name,
		RawArguments:   argsStr,
		PublicMessage:  parsedArgs.Get("public_message").String(),
		PrivateThought: parsedArgs.Get("private_thought").String(),
	}, nil
}

// Validate runs both validation stages from spec.md §4.2: schema
// validation (enumerated action name, required args present, args
// unmarshal cleanly) and game-level validation (the action name is
// among dp's legal actions). On success it returns a ready-to-apply
// action.Request carrying dp's decision id.
func Validate(dp *decision.Point, tool *ParsedToolCall) (action.Request, error) {
	name := action.Name(tool.ToolName)
	if !knownActionNames[name] && name != action.Noop {
		return action.Request{}, &apperrors.ValidationError{Reason: fmt.Sprintf("unknown action name %q", tool.ToolName)}
	}

	var legal *decision.LegalAction
	for i := range dp.LegalActions {
		if dp.LegalActions[i].Name == string(name) {
			legal = &dp.LegalActions[i]
			break
		}
	}
	if legal == nil {
		return action.Request{}, &apperrors.ValidationError{Reason: fmt.Sprintf("action %q is not legal for decision %s", tool.ToolName, dp.DecisionID)}
	}

	for _, required := range legal.Args.Required {
		if !gjson.Get(tool.RawArguments, required).Exists() {
			return action.Request{}, &apperrors.ValidationError{Reason: fmt.Sprintf("action %q is missing required arg %q", tool.ToolName, required)}
		}
	}

	var args action.Args
	if err := json.Unmarshal([]byte(tool.RawArguments), &args); err != nil {
		return action.Request{}, &apperrors.ValidationError{Reason: fmt.Sprintf("args do not match the %q schema: %v", tool.ToolName, err)}
	}

	return action.Request{
		SchemaVersion:  "v1",
		DecisionID:     dp.DecisionID,
		Name:           name,
		Args:           args,
		PublicMessage:  tool.PublicMessage,
		PrivateThought: tool.PrivateThought,
	}, nil
}
