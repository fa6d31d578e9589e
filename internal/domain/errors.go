package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failed chat turn.
type ErrorKind string

const (
	// KindValidation indicates a malformed or empty request. Client fault.
	KindValidation ErrorKind = "validation"

	// KindBlocked indicates the content guardrail rejected the input or
	// the generated answer. Client fault, no retry.
	KindBlocked ErrorKind = "blocked"

	// KindUpstream indicates a retrieval, model, or store call failed.
	// Server fault; retry policy is the caller's concern.
	KindUpstream ErrorKind = "upstream"
)

// TurnError is the canonical error for a failed chat turn. The HTTP
// layer maps it onto the response envelope; anything that is not a
// TurnError is treated as an upstream failure.
type TurnError struct {
	Kind    ErrorKind
	Message string
	// RequestID is the correlation identifier of the external call that
	// produced the error, when one exists (guardrail verdicts carry one).
	RequestID string
	Err       error
}

func (e *TurnError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *TurnError) Unwrap() error { return e.Err }

// HTTPStatusCode returns the status code for the response envelope.
func (e *TurnError) HTTPStatusCode() int {
	switch e.Kind {
	case KindValidation, KindBlocked:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ErrNoQuery is returned when the query field is absent or empty.
// The message text is part of the external contract.
func ErrNoQuery() *TurnError {
	return &TurnError{Kind: KindValidation, Message: "No query provided in the event"}
}

// ErrBlocked reports a guardrail intervention. requestID is the
// guardrail call's correlation identifier, kept for auditability.
func ErrBlocked(requestID string) *TurnError {
	return &TurnError{
		Kind:      KindBlocked,
		Message:   "Request blocked by content guardrail",
		RequestID: requestID,
	}
}

// ErrUpstream wraps a failed external call.
func ErrUpstream(op string, err error) *TurnError {
	return &TurnError{Kind: KindUpstream, Message: op + " failed", Err: err}
}

// AsTurnError classifies err: a TurnError passes through, anything else
// becomes an upstream failure. Never returns nil for a non-nil err.
func AsTurnError(err error) *TurnError {
	var te *TurnError
	if errors.As(err, &te) {
		return te
	}
	return &TurnError{Kind: KindUpstream, Message: "unexpected error", Err: err}
}
