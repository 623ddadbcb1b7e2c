// Package errors provides coded errors for the tagtree command line.
//
// Library packages return plain sentinel errors (graph.ErrSaturated,
// expand.ErrDeadEnd, grow.ErrBusy and so on). The CLI wraps them here so
// the user sees one message per failure class and scripts can switch on
// a stable code.
//
// # Error Codes
//
// Codes follow a prefix convention:
//   - INVALID_*: bad input or configuration
//   - NOT_FOUND / RUN_NOT_FOUND: missing resources
//   - NETWORK_ERROR, RATE_LIMITED, UNAUTHORIZED: photo service failures
//   - SEARCH_FAILED, DEAD_END, SATURATED, BUSY: growth outcomes
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMissingAPIKey, "set FLICKR_API_KEY or flickr.api_key")
//	if errors.Is(err, errors.ErrCodeMissingAPIKey) {
//	    // ...
//	}
//
//	err = errors.Wrap(errors.ErrCodeSearchFailed, cause, "search %q", tag)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidTag    Code = "INVALID_TAG"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeMissingAPIKey Code = "MISSING_API_KEY"

	// Resource not found errors
	ErrCodeNotFound    Code = "NOT_FOUND"
	ErrCodeRunNotFound Code = "RUN_NOT_FOUND"

	// Photo service errors
	ErrCodeNetwork      Code = "NETWORK_ERROR"
	ErrCodeRateLimited  Code = "RATE_LIMITED"
	ErrCodeUnauthorized Code = "UNAUTHORIZED"

	// Growth outcomes
	ErrCodeSearchFailed Code = "SEARCH_FAILED"
	ErrCodeDeadEnd      Code = "DEAD_END"
	ErrCodeSaturated    Code = "SATURATED"
	ErrCodeBusy         Code = "BUSY"

	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix for *Error
// values and the plain error string otherwise.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}
