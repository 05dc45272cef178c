package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/action"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/decision"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/llmclient"
)

// ArtifactWriter persists the per-attempt bundle spec.md §4.2 requires:
// system.txt, user.json, tools.json, response.json, and parsed.json.
// A zero-value dir disables writing entirely (used in tests and dry
// runs that don't want filesystem side effects).
type ArtifactWriter struct {
	dir string
}

// NewArtifactWriter builds a writer rooted at dir.
func NewArtifactWriter(dir string) *ArtifactWriter {
	return &ArtifactWriter{dir: dir}
}

// responseArtifact is the synthetic shape written to response.json
// when the call failed before producing a real response body.
type responseArtifact struct {
	OK         bool   `json:"ok"`
	ErrorType  string `json:"error_type,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

// parsedArtifact is the shape written to parsed.json: what this single
// attempt parsed out of the response and whether it was applied.
type parsedArtifact struct {
	Attempt         int    `json:"attempt"`
	ParsedToolName  string `json:"parsed_tool_name,omitempty"`
	TransportKind   string `json:"transport_kind,omitempty"`
	ValidationError string `json:"validation_error,omitempty"`
	Applied         bool   `json:"applied"`
}

func (p *Pipeline) writeArtifacts(dp *decision.Point, attempt int, systemPrompt string, req llmclient.ChatRequest, result *llmclient.Result) {
	p.artifacts.write(dp.DecisionID, attempt, systemPrompt, req, result)
}

func (w *ArtifactWriter) write(decisionID string, attempt int, systemPrompt string, req llmclient.ChatRequest, result *llmclient.Result) {
	if w.dir == "" {
		return
	}
	dir := filepath.Join(w.dir, decisionID, "attempt-"+strconv.Itoa(attempt))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return
	}

	_ = os.WriteFile(filepath.Join(dir, "system.txt"), []byte(systemPrompt), 0o644)

	if len(req.Messages) > 1 {
		_ = os.WriteFile(filepath.Join(dir, "user.json"), []byte(req.Messages[len(req.Messages)-1].Content), 0o644)
	}

	if toolsJSON, err := json.Marshal(req.Tools); err == nil {
		_ = os.WriteFile(filepath.Join(dir, "tools.json"), toolsJSON, 0o644)
	}

	var responseJSON []byte
	if result.Err != nil {
		artifact := responseArtifact{
			OK:         false,
			ErrorType:  string(result.Err.Kind),
			StatusCode: result.StatusCode,
			RequestID:  result.RequestID,
			Error:      result.Err.Message,
		}
		responseJSON, _ = json.Marshal(artifact)
	} else {
		responseJSON = result.RawBody
	}
	_ = os.WriteFile(filepath.Join(dir, "response.json"), responseJSON, 0o644)
}

// writeParsed writes this attempt's parsed.json.
func (w *ArtifactWriter) writeParsed(decisionID string, attempt int, rec AttemptRecord) {
	if w.dir == "" {
		return
	}
	dir := filepath.Join(w.dir, decisionID, "attempt-"+strconv.Itoa(attempt))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return
	}
	artifact := parsedArtifact{
		Attempt:         rec.Attempt,
		ParsedToolName:  rec.ParsedToolName,
		TransportKind:   rec.TransportKind,
		ValidationError: rec.ValidationError,
		Applied:         rec.Applied,
	}
	if raw, err := json.Marshal(artifact); err == nil {
		_ = os.WriteFile(filepath.Join(dir, "parsed.json"), raw, 0o644)
	}
}

// writeOutcome writes the decision-level outcome summary (final chosen
// action and retry/fallback flags), once per decision.
func (w *ArtifactWriter) writeOutcome(decisionID string, outcome Outcome) {
	if w.dir == "" {
		return
	}
	dir := filepath.Join(w.dir, decisionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return
	}
	type outcomeArtifact struct {
		Action         action.Request `json:"action"`
		RetryUsed      bool           `json:"retry_used"`
		FallbackUsed   bool           `json:"fallback_used"`
		FallbackReason string         `json:"fallback_reason,omitempty"`
	}
	artifact := outcomeArtifact{
		Action:         outcome.Action,
		RetryUsed:      outcome.RetryUsed,
		FallbackUsed:   outcome.FallbackUsed,
		FallbackReason: outcome.FallbackReason,
	}
	if raw, err := json.Marshal(artifact); err == nil {
		_ = os.WriteFile(filepath.Join(dir, "outcome.json"), raw, 0o644)
	}
}
