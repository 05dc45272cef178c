package llmclient

import (
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/prompt"
)

// ToolsFromDecision converts a prompt.DecisionView's legal actions into
// the chat-completion tools array, one function tool per legal action,
// each accepting the augmented public_message/private_thought fields
// alongside its own args.
func ToolsFromDecision(dv prompt.DecisionView) []Tool {
	tools := make([]Tool, len(dv.LegalActions))
	for i, la := range dv.LegalActions {
		properties := make(map[string]any, len(la.Fields))
		for field, kind := range la.Fields {
			properties[field] = map[string]any{"type": kind}
		}
		tools[i] = Tool{
			Type: "function",
			Function: ToolFunction{
				Name: la.Name,
				Parameters: map[string]any{
					"type":       "object",
					"properties": properties,
					"required":   la.Required,
				},
			},
		}
	}
	return tools
}

// BuildChatRequest assembles the wire request for one attempt: a
// system prompt, the canonical-JSON-serialized payload as the user
// message, and one tool per legal action with tool_choice forced to
// "required" so the model must call one.
func BuildChatRequest(model, systemPrompt string, payload prompt.Payload) (ChatRequest, error) {
	userJSON, err := prompt.CanonicalJSON(payload)
	if err != nil {
		return ChatRequest{}, err
	}
	return ChatRequest{
		Model: model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: string(userJSON)},
		},
		Tools:      ToolsFromDecision(payload.Decision),
		ToolChoice: "required",
	}, nil
}
