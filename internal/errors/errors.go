package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrConfig           = "CONFIG"
	ErrUsage            = "USAGE"
	ErrAlreadyConnected = "ALREADY_CONNECTED"
	ErrConnect          = "CONNECT"
	ErrNotConnected     = "NOT_CONNECTED"
	ErrLocalTarget      = "LOCAL_TARGET"
	ErrTransfer         = "TRANSFER"
	ErrRemote           = "REMOTE"
	ErrProtocol         = "PROTOCOL"
)

// Error represents a structured error with code, message, suggestion, and optional cause.
// Rendered as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps an existing error with a message, defaulting to ErrRemote code.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrRemote,
		Message: message,
		Cause:   err,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// NewUsage creates a usage error carrying the expected argument synopsis.
func NewUsage(command, usage string) *Error {
	return &Error{
		Code:       ErrUsage,
		Message:    fmt.Sprintf("Usage: %s %s", command, usage),
		Suggestion: "Type 'help' to list commands",
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var fErr *Error
	if errors.As(err, &fErr) {
		return fErr.Code == code
	}
	return false
}

// CodeOf returns the code of the outermost structured Error in err's chain,
// or an empty string if there is none.
func CodeOf(err error) string {
	var fErr *Error
	if errors.As(err, &fErr) {
		return fErr.Code
	}
	return ""
}
