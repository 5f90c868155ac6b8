// Package domainerrors defines the coded error type shared by services and
// the HTTP layer. Stores return sentinel errors; services translate them into
// coded errors; transport maps codes to status lines.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies an error class. Codes are stable API surface: they appear
// verbatim in JSON error envelopes.
type Code string

const (
	// CodeBadRequest covers malformed input: bad identifiers, bad dates,
	// undecodable bodies.
	CodeBadRequest Code = "bad_request"
	// CodeValidation covers well-formed input that violates a domain rule:
	// interval overlap, immutable-field change, empty code list on publish.
	CodeValidation Code = "validation_error"
	// CodeNotFound signals an absent series or version.
	CodeNotFound Code = "not_found"
	// CodeConflict signals a duplicate identifier or an illegal state
	// transition on an existing resource.
	CodeConflict Code = "conflict"
	// CodeUpstream signals a persistence or reference-service failure. Safe
	// for the caller to retry.
	CodeUpstream Code = "upstream_failure"
	// CodeInternal is an invariant breach on our side, e.g. a cascade target
	// that should exist but does not.
	CodeInternal Code = "internal_error"
)

// Error carries a code, a human-readable message, and an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a coded error with no cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf builds a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for uncoded
// errors so that unexpected failures never leak details to clients.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// MessageOf extracts the message from a coded error, or an empty string.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}

// ToHTTPStatus maps an error code to its HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
