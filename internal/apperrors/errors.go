// Package apperrors defines the error taxonomy shared by the engine,
// pipeline, and coordinator: a concrete type per kind, each wrapping a
// sentinel so callers can compare with errors.Is, matching the layered
// sentinel-plus-context style the teacher uses for infrastructure
// errors (e.g. resilience.ErrCircuitOpen).
package apperrors

import "fmt"

// Sentinels for errors.Is comparisons.
var (
	ErrIllegalAction      = fmt.Errorf("illegal action")
	ErrTransport          = fmt.Errorf("transport error")
	ErrContent            = fmt.Errorf("content error")
	ErrValidation         = fmt.Errorf("validation error")
	ErrCoordinatorConflict = fmt.Errorf("coordinator conflict")
)

// IllegalAction is returned by the engine when an action cannot be
// applied: no decision pending, decision id mismatch, action not
// legal, or args violate the per-action contract.
type IllegalAction struct {
	Reason string
}

func (e *IllegalAction) Error() string { return "illegal action: " + e.Reason }
func (e *IllegalAction) Unwrap() error { return ErrIllegalAction }

// NewIllegalAction builds an IllegalAction with a formatted reason.
func NewIllegalAction(format string, args ...any) *IllegalAction {
	return &IllegalAction{Reason: fmt.Sprintf(format, args...)}
}

// TransportErrorKind enumerates the remote-call failure classes the
// model client can observe.
type TransportErrorKind string

const (
	TransportOK           TransportErrorKind = "ok"
	TransportHTTP429      TransportErrorKind = "http_429"
	TransportHTTP5xx      TransportErrorKind = "http_5xx"
	TransportHTTP4xx      TransportErrorKind = "http_4xx"
	TransportNetworkError TransportErrorKind = "network_error"
	TransportInvalidJSON  TransportErrorKind = "invalid_json"
	TransportNoAPIKey     TransportErrorKind = "no_api_key"
)

// TransportError is a classified remote-call failure.
type TransportError struct {
	Kind       TransportErrorKind
	StatusCode int
	Message    string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error (%s): %s", e.Kind, e.Message)
}
func (e *TransportError) Unwrap() error { return ErrTransport }

// ContentErrorKind enumerates malformed-response failure classes.
type ContentErrorKind string

const (
	ContentInvalidJSON ContentErrorKind = "invalid_json"
	ContentNoToolCall  ContentErrorKind = "no_tool_call"
)

// ContentError indicates the remote response was well-transported but
// could not be parsed into a tool call.
type ContentError struct {
	Kind    ContentErrorKind
	Message string
}

func (e *ContentError) Error() string { return fmt.Sprintf("content error (%s): %s", e.Kind, e.Message) }
func (e *ContentError) Unwrap() error { return ErrContent }

// ValidationError indicates an action failed schema or legality
// validation inside the pipeline, before ever reaching the engine.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation error: " + e.Reason }
func (e *ValidationError) Unwrap() error { return ErrValidation }

// CoordinatorConflict indicates start_run was rejected because an
// incompatible run is already active.
type CoordinatorConflict struct {
	Reason string
}

func (e *CoordinatorConflict) Error() string { return "coordinator conflict: " + e.Reason }
func (e *CoordinatorConflict) Unwrap() error { return ErrCoordinatorConflict }
