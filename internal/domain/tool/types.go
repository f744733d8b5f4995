// Package tool models the invocable capability set: a name-keyed dispatch
// table of schema-described operations and the uniform result envelope
// every invocation resolves to.
package tool

import (
	"context"
	"encoding/json"
	"fmt"
)

// Definition describes one invocable tool: its name, a natural-language
// description for the model, and a JSON schema for its arguments.
type Definition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Handler executes one tool invocation on behalf of a user. Each handler
// owns its own argument validation.
type Handler func(ctx context.Context, args json.RawMessage, actingUserID string) (any, error)

// Result is the uniform envelope every invocation resolves to. Failures are
// data, not Go errors: a failed invocation reports Success=false with the
// structured error payload.
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// Succeeded builds a successful result.
func Succeeded(data any) Result {
	return Result{Success: true, Data: data}
}

// Failed builds a failed result.
func Failed(err *Error) Result {
	return Result{Success: false, Error: err}
}

// Payload renders the envelope as the JSON string handed back to the model
// as the call's tool result.
func (r Result) Payload() string {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Sprintf(`{"success":false,"error":{"code":%q,"message":"result not serializable"}}`, ErrCodeFailed)
	}
	return string(raw)
}

// Error codes classifying tool invocation failures.
const (
	ErrCodeNotFound    = "TOOL_NOT_FOUND"
	ErrCodeInvalidArgs = "INVALID_ARGS"
	ErrCodeTimeout     = "TOOL_TIMEOUT"
	ErrCodePanic       = "TOOL_PANIC"
	ErrCodeFailed      = "TOOL_FAILED"
)

// Error is the structured failure payload of a single tool invocation.
type Error struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a tool error.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds an underlying cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithDetails adds additional details to the error.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}
