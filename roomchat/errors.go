package roomchat

import (
	"errors"
	"fmt"
)

// ErrorCode represents a categorized error type.
type ErrorCode int

const (
	ErrorUnknown ErrorCode = iota

	// User input rejected before anything is transmitted.
	ErrorValidation

	// Connection, send or abrupt close failures. Non-fatal; the client retries.
	ErrorTransport

	// Image upload failures. Not retried.
	ErrorUpload

	ErrorNotConnected
	ErrorAlreadyConnected
	ErrorInvalidConfig
	ErrorReconnectExhausted
	ErrorTimeout
)

// String returns the string representation of an ErrorCode.
func (e ErrorCode) String() string {
	switch e {
	case ErrorUnknown:
		return "unknown"
	case ErrorValidation:
		return "validation_error"
	case ErrorTransport:
		return "transport_error"
	case ErrorUpload:
		return "upload_error"
	case ErrorNotConnected:
		return "not_connected"
	case ErrorAlreadyConnected:
		return "already_connected"
	case ErrorInvalidConfig:
		return "invalid_config"
	case ErrorReconnectExhausted:
		return "reconnect_exhausted"
	case ErrorTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("unknown_code_%d", e)
	}
}

// ChatError is a structured error with code and context.
type ChatError struct {
	Code    ErrorCode
	Message string
	Wrapped error
}

// Sentinels for errors.Is. Comparison is by code only.
var (
	ErrValidation       = &ChatError{Code: ErrorValidation}
	ErrTransport        = &ChatError{Code: ErrorTransport}
	ErrUpload           = &ChatError{Code: ErrorUpload}
	ErrNotConnected     = &ChatError{Code: ErrorNotConnected}
	ErrAlreadyConnected = &ChatError{Code: ErrorAlreadyConnected}
)

// Error implements the error interface.
func (e *ChatError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s (wrapped: %v)", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Unwrap support.
func (e *ChatError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface for error comparison.
func (e *ChatError) Is(target error) bool {
	t, ok := target.(*ChatError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError creates a new ChatError with the given code and message.
func NewError(code ErrorCode, message string) *ChatError {
	return &ChatError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with a ChatError.
func WrapError(code ErrorCode, message string, err error) *ChatError {
	return &ChatError{
		Code:    code,
		Message: message,
		Wrapped: err,
	}
}

// IsValidationError reports whether err was caused by rejected user input.
func IsValidationError(err error) bool {
	return codeOf(err) == ErrorValidation
}

// IsTransportError checks if an error is a connection-related error.
func IsTransportError(err error) bool {
	switch codeOf(err) {
	case ErrorTransport, ErrorNotConnected, ErrorTimeout, ErrorReconnectExhausted:
		return true
	default:
		return false
	}
}

func codeOf(err error) ErrorCode {
	if err == nil {
		return ErrorUnknown
	}
	var ce *ChatError
	if !errors.As(err, &ce) {
		return ErrorUnknown
	}
	return ce.Code
}
