// SPDX-License-Identifier: Apache-2.0
// Package errors provides typed error handling with rich context for Gremio.
package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode classifies Gremio errors for monitoring and recovery.
type ErrorCode string

const (
	// CodeInternal indicates an internal system error.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeInvalidInput indicates the host supplied invalid input.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeConfig indicates a catalog or configuration problem. It is
	// operator-facing and must never be disguised as a user decision.
	CodeConfig ErrorCode = "CONFIG_ERROR"

	// CodeNotFound indicates a resource (session, role) was not found.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeIncompleteResults indicates aggregation was invoked before all
	// outstanding evaluators responded. Recoverable: the host re-invokes
	// once more results arrive.
	CodeIncompleteResults ErrorCode = "INCOMPLETE_RESULTS"

	// CodeSessionState indicates an operation was attempted in the wrong
	// session state.
	CodeSessionState ErrorCode = "SESSION_STATE"
)

// GremioError is a typed error with rich context for observability.
// It implements the error interface and can be unwrapped with errors.As().
type GremioError struct {
	Code        ErrorCode
	Message     string
	Err         error
	Context     map[string]interface{}
	Recoverable bool
	StatusCode  int // For HTTP responses
}

// Error implements the error interface.
func (e *GremioError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap for error chain traversal.
func (e *GremioError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements json.Marshaler for structured logging.
func (e *GremioError) MarshalJSON() ([]byte, error) {
	type Alias GremioError
	return json.Marshal(&struct {
		Message     string `json:"message"`
		Code        string `json:"code"`
		Err         string `json:"error,omitempty"`
		Recoverable bool   `json:"recoverable"`
		*Alias
	}{
		Message:     e.Error(),
		Code:        string(e.Code),
		Err:         fmt.Sprintf("%v", e.Err),
		Recoverable: e.Recoverable,
		Alias:       (*Alias)(e),
	})
}

// New creates a new GremioError with the given code, message, and cause.
func New(code ErrorCode, msg string, cause error) *GremioError {
	return &GremioError{
		Code:        code,
		Message:     msg,
		Err:         cause,
		Context:     make(map[string]interface{}),
		Recoverable: defaultRecoverable(code),
		StatusCode:  codeToStatusCode(code),
	}
}

// WithContext adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *GremioError) WithContext(key string, value interface{}) *GremioError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithRecoverable sets whether the error can be recovered from.
// Returns the error for method chaining.
func (e *GremioError) WithRecoverable(recoverable bool) *GremioError {
	e.Recoverable = recoverable
	return e
}

// AsGremioError attempts to convert an error to a GremioError.
// Returns the error as GremioError if it is one, or wraps it otherwise.
func AsGremioError(err error) *GremioError {
	if err == nil {
		return nil
	}
	if ge, ok := err.(*GremioError); ok {
		return ge
	}
	return New(CodeInternal, "wrapped error", err)
}

// HasCode reports whether err is a GremioError carrying the given code.
func HasCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	ge, ok := err.(*GremioError)
	return ok && ge.Code == code
}

// RecoverableString returns "true" or "false" as a string for observability.
func (e *GremioError) RecoverableString() string {
	if e.Recoverable {
		return "true"
	}
	return "false"
}

// defaultRecoverable encodes the error taxonomy: user ambiguity and
// incomplete results recover locally, configuration errors do not.
func defaultRecoverable(code ErrorCode) bool {
	switch code {
	case CodeIncompleteResults, CodeInvalidInput:
		return true
	default:
		return false
	}
}

// codeToStatusCode maps error codes to HTTP status codes.
func codeToStatusCode(code ErrorCode) int {
	switch code {
	case CodeNotFound:
		return 404
	case CodeInvalidInput:
		return 400
	case CodeSessionState:
		return 409
	case CodeIncompleteResults:
		return 409
	default:
		return 500
	}
}
