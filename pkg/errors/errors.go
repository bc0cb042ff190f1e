// SPDX-License-Identifier: Apache-2.0
// Package errors provides typed error handling for the agentdir registry.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode classifies registry errors for callers and monitoring.
type ErrorCode string

const (
	// CodeInternal indicates an internal system error.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeAlreadyExists indicates a create collided with a stored agent name.
	CodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// CodeInvalidCard indicates a fetched agent card failed validation.
	CodeInvalidCard ErrorCode = "INVALID_CARD"

	// CodeFetchFailed indicates the agent card could not be retrieved.
	CodeFetchFailed ErrorCode = "FETCH_FAILED"

	// CodeStorage indicates an unexpected storage backend failure.
	CodeStorage ErrorCode = "STORAGE_ERROR"

	// CodeNotFound indicates a named agent does not exist. The core pipeline
	// signals absence with a boolean; this code exists for the adapter boundary.
	CodeNotFound ErrorCode = "NOT_FOUND"
)

// RegistryError is a typed error carrying the failure kind and context.
// It implements the error interface and can be unwrapped with errors.As().
type RegistryError struct {
	Code       ErrorCode
	Message    string
	Err        error
	Context    map[string]interface{}
	StatusCode int // For HTTP responses
}

// Error implements the error interface.
func (e *RegistryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap for error chain traversal.
func (e *RegistryError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements json.Marshaler for structured logging.
func (e *RegistryError) MarshalJSON() ([]byte, error) {
	out := struct {
		Message string                 `json:"message"`
		Code    string                 `json:"code"`
		Err     string                 `json:"error,omitempty"`
		Context map[string]interface{} `json:"context,omitempty"`
	}{
		Message: e.Message,
		Code:    string(e.Code),
		Context: e.Context,
	}
	if e.Err != nil {
		out.Err = e.Err.Error()
	}
	return json.Marshal(out)
}

// New creates a RegistryError with the given code, message, and cause.
func New(code ErrorCode, msg string, cause error) *RegistryError {
	return &RegistryError{
		Code:       code,
		Message:    msg,
		Err:        cause,
		Context:    make(map[string]interface{}),
		StatusCode: codeToStatusCode(code),
	}
}

// Newf creates a RegistryError with a formatted message and no cause.
func Newf(code ErrorCode, format string, args ...interface{}) *RegistryError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// WithContext adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *RegistryError) WithContext(key string, value interface{}) *RegistryError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// AsRegistryError attempts to convert an error to a RegistryError.
// Unknown errors are wrapped as internal.
func AsRegistryError(err error) *RegistryError {
	if err == nil {
		return nil
	}
	var re *RegistryError
	if errors.As(err, &re) {
		return re
	}
	return New(CodeInternal, "wrapped error", err)
}

// Code returns the error code of err, or CodeInternal for untyped errors.
func Code(err error) ErrorCode {
	var re *RegistryError
	if errors.As(err, &re) {
		return re.Code
	}
	return CodeInternal
}

// IsAlreadyExists reports whether err is a name-collision error.
func IsAlreadyExists(err error) bool {
	return Code(err) == CodeAlreadyExists
}

// IsInvalidCard reports whether err is a card validation error.
func IsInvalidCard(err error) bool {
	return Code(err) == CodeInvalidCard
}

// IsFetchFailed reports whether err is an agent card fetch error.
func IsFetchFailed(err error) bool {
	return Code(err) == CodeFetchFailed
}

// codeToStatusCode maps error codes to HTTP status codes.
func codeToStatusCode(code ErrorCode) int {
	switch code {
	case CodeNotFound:
		return 404
	case CodeAlreadyExists:
		return 409
	case CodeInvalidCard:
		return 400
	case CodeFetchFailed:
		return 502
	default:
		return 500
	}
}
