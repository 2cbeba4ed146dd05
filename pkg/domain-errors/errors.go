// Package errors provides coded domain errors shared by services and
// transport. Services attach a Code describing the business-level failure;
// the HTTP layer translates codes to status lines without inspecting
// free-form messages.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of domain failure. Codes double as the machine
// readable "error" field in JSON error envelopes.
type Code string

const (
	// CodeBadRequest covers missing or malformed input (validation failures).
	CodeBadRequest Code = "bad_request"
	// CodeConflict covers duplicate unique keys (e.g. an existing policyId).
	CodeConflict Code = "conflict"
	// CodeNotFound covers references to records that do not exist or are not
	// in a state where the operation applies.
	CodeNotFound Code = "not_found"
	// CodeUnauthorized covers missing or invalid credentials.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden covers valid credentials with an insufficient role.
	CodeForbidden Code = "forbidden"
	// CodeInternal covers storage and other infrastructure failures. Its
	// message is never echoed to clients.
	CodeInternal Code = "internal_error"
)

// Error is a domain error with a classification code. It supports wrapping so
// infrastructure causes stay attached for logging.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error with a human-readable message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// unclassified errors so unexpected failures never leak details.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to its HTTP status line.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
