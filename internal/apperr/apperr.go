// Package apperr defines the structured error taxonomy for the sync engine.
package apperr

import (
	"errors"
	"fmt"
)

// Code represents specific failure classes.
type Code string

const (
	// CodeInvalidInput marks a caller mistake: missing user id, empty access
	// token, malformed arguments. Never retryable.
	CodeInvalidInput Code = "INVALID_INPUT"
	// CodeUpstreamUnavailable marks an aggregator failure. Retryability
	// depends on the upstream error class.
	CodeUpstreamUnavailable Code = "UPSTREAM_UNAVAILABLE"
	// CodeRecordInvalid marks a single provider record that cannot be
	// processed; batch processing continues past it.
	CodeRecordInvalid Code = "RECORD_INVALID"
)

// Error is a structured error with a code and retryability flag.
type Error struct {
	Code      Code
	Message   string
	Retryable bool
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable returns whether this error is retryable.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// Invalid builds a non-retryable input validation error.
func Invalid(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// Upstream builds an aggregator failure error.
func Upstream(msg string, retryable bool, cause error) *Error {
	return &Error{Code: CodeUpstreamUnavailable, Message: msg, Retryable: retryable, Cause: cause}
}

// Record builds a per-record processing error.
func Record(msg string, cause error) *Error {
	return &Error{Code: CodeRecordInvalid, Message: msg, Cause: cause}
}

// CodeOf extracts the code from an error chain, or "" if the chain has no
// structured error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsRetryable reports whether err should be retried. Errors outside the
// taxonomy are treated as retryable, matching the behavior of transient
// transport failures.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return true
}
