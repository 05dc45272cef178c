// Package pipeline implements the Decision Arbitration Pipeline
// (spec.md §4.2, component I): prompt assembly, the remote call,
// tool-call parsing/validation, the attempt decision tree (retry once
// on a validation error, fallback on transport/content errors or a
// still-invalid retry), and per-attempt artifact persistence.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/action"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/apperrors"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/arbiter"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/decision"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/llmclient"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/model"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/prompt"
)

// PlayerConfig is the acting player's model configuration for one
// decision.
type PlayerConfig struct {
	ModelID      string
	SystemPrompt string
	Reasoning    *prompt.ReasoningConfig
}

// AttemptRecord is the structured record of one model-call attempt,
// suitable for both the zap per-attempt log line and the persisted
// parsed.json artifact.
type AttemptRecord struct {
	Attempt         int    `json:"attempt"`
	UserPayload     []byte `json:"-"`
	ResponseRaw     []byte `json:"-"`
	TransportKind   string `json:"transport_kind,omitempty"`
	ParsedToolName  string `json:"parsed_tool_name,omitempty"`
	ValidationError string `json:"validation_error,omitempty"`
	Applied         bool   `json:"applied"`
}

// Outcome is the pipeline's final result for one decision.
type Outcome struct {
	Action         action.Request
	RetryUsed      bool
	FallbackUsed   bool
	FallbackReason string
	Attempts       []AttemptRecord
}

// Pipeline wires the prompt builder, remote model client, and arbiter
// together for one run.
type Pipeline struct {
	client    *llmclient.Client
	log       *zap.SugaredLogger
	artifacts *ArtifactWriter
}

// New builds a Pipeline. artifactDir == "" disables artifact writing.
func New(client *llmclient.Client, log *zap.SugaredLogger, artifactDir string) *Pipeline {
	if log == nil {
		l, _ := zap.NewProduction()
		log = l.Sugar()
	}
	return &Pipeline{client: client, log: log, artifacts: NewArtifactWriter(artifactDir)}
}

// Decide runs the full attempt decision tree for dp and returns the
// outcome: either the model's validated action, or a deterministic
// fallback, along with the attempt trail.
func (p *Pipeline) Decide(ctx context.Context, dp *decision.Point, snap model.Snapshot, store *prompt.Store, cfg PlayerConfig) Outcome {
	notes := ""
	var attempts []AttemptRecord

	for attempt := 1; attempt <= 2; attempt++ {
		payload := prompt.Build(dp, snap, store, cfg.Reasoning)
		systemPrompt := cfg.SystemPrompt
		if notes != "" {
			systemPrompt = systemPrompt + "\n\n" + notes
		}

		req, err := llmclient.BuildChatRequest(cfg.ModelID, systemPrompt, payload)
		if err != nil {
			rec := AttemptRecord{Attempt: attempt, ValidationError: err.Error()}
			attempts = append(attempts, rec)
			p.artifacts.writeParsed(dp.DecisionID, attempt, rec)
			return p.finish(dp, attempts, "invalid_action", attempt > 1)
		}
		userJSON, _ := prompt.CanonicalJSON(payload)
		rec := AttemptRecord{Attempt: attempt, UserPayload: userJSON}

		result := p.client.ChatCompletion(ctx, req)
		p.writeArtifacts(dp, attempt, systemPrompt, req, result)

		if result.Err != nil {
			rec.TransportKind = string(result.Err.Kind)
			attempts = append(attempts, rec)
			p.logAttempt(dp, rec)
			p.artifacts.writeParsed(dp.DecisionID, attempt, rec)
			return p.finish(dp, attempts, transportFallbackReason(result.Err.Kind), attempt > 1)
		}
		rec.ResponseRaw = result.RawBody

		tool, parseErr := arbiter.ParseResponse(result.RawBody)
		if parseErr != nil {
			rec.ValidationError = parseErr.Error()
			attempts = append(attempts, rec)
			p.logAttempt(dp, rec)
			p.artifacts.writeParsed(dp.DecisionID, attempt, rec)
			return p.finish(dp, attempts, "invalid_tool_call", attempt > 1)
		}
		rec.ParsedToolName = tool.ToolName

		actionReq, validateErr := arbiter.Validate(dp, tool)
		if validateErr != nil {
			rec.ValidationError = validateErr.Error()
			attempts = append(attempts, rec)
			p.logAttempt(dp, rec)
			p.artifacts.writeParsed(dp.DecisionID, attempt, rec)
			if attempt == 1 && isValidationError(validateErr) {
				notes = fmt.Sprintf("Previous validation errors: %s; Respond with a valid tool call only.", validateErr.Error())
				continue
			}
			return p.finish(dp, attempts, "invalid_action", attempt > 1)
		}

		rec.Applied = true
		attempts = append(attempts, rec)
		p.logAttempt(dp, rec)
		p.artifacts.writeParsed(dp.DecisionID, attempt, rec)
		outcome := Outcome{Action: actionReq, RetryUsed: attempt > 1, FallbackUsed: false, Attempts: attempts}
		p.artifacts.writeOutcome(dp.DecisionID, outcome)
		return outcome
	}

	// Unreachable in practice: the loop always returns by attempt 2.
	return p.finish(dp, attempts, "invalid_action", true)
}

// Resume re-validates a previously computed outcome against dp after a
// pause/resume barrier, per spec.md §4.2's pause interaction. If the
// action is no longer legal, it is replaced by the fallback with
// reason invalid_action_after_pause.
func Resume(dp *decision.Point, outcome Outcome) Outcome {
	if dp.HasAction(string(outcome.Action.Name)) {
		return outcome
	}
	outcome.Action = arbiter.Fallback(dp)
	outcome.FallbackUsed = true
	outcome.FallbackReason = "invalid_action_after_pause"
	return outcome
}

func (p *Pipeline) finish(dp *decision.Point, attempts []AttemptRecord, reason string, retryUsed bool) Outcome {
	outcome := Outcome{
		Action:         arbiter.Fallback(dp),
		RetryUsed:      retryUsed,
		FallbackUsed:   true,
		FallbackReason: reason,
		Attempts:       attempts,
	}
	p.artifacts.writeOutcome(dp.DecisionID, outcome)
	return outcome
}

func (p *Pipeline) logAttempt(dp *decision.Point, rec AttemptRecord) {
	p.log.Infow("decision attempt",
		"decision_id", dp.DecisionID,
		"decision_type", string(dp.Type),
		"attempt", rec.Attempt,
		"transport_kind", rec.TransportKind,
		"parsed_tool_name", rec.ParsedToolName,
		"validation_error", rec.ValidationError,
		"applied", rec.Applied,
	)
}

func isValidationError(err error) bool {
	_, ok := err.(*apperrors.ValidationError)
	return ok
}

func transportFallbackReason(kind apperrors.TransportErrorKind) string {
	switch kind {
	case apperrors.TransportHTTP429:
		return "openrouter_http_429"
	case apperrors.TransportHTTP5xx:
		return "openrouter_http_5xx"
	case apperrors.TransportHTTP4xx:
		return "openrouter_http_4xx"
	case apperrors.TransportNetworkError:
		return "openrouter_network_error"
	case apperrors.TransportInvalidJSON:
		return "openrouter_invalid_json"
	case apperrors.TransportNoAPIKey:
		return "no_api_key"
	default:
		return "openrouter_unknown_error"
	}
}
