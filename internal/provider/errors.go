package provider

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a provider failure for programmatic handling.
type ErrorKind string

const (
	KindNoMatchedProvider ErrorKind = "NO_MATCHED_PROVIDER"
	KindProviderNotFound  ErrorKind = "PROVIDER_NOT_FOUND"
	KindInvalidURL        ErrorKind = "INVALID_URL"
	KindNetworkError      ErrorKind = "NETWORK_ERROR"
	KindParseError        ErrorKind = "PARSE_ERROR"
	KindValidation        ErrorKind = "VALIDATION"
)

// Error wraps a provider failure with its classified kind and, where one
// exists, the underlying cause. The kind says what sort of failure this is;
// the underlying error says why it happened.
type Error struct {
	Kind       ErrorKind
	Message    string
	Underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Underlying
}

// Is checks if the error matches the target by kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return errors.Is(e.Underlying, target)
}

// NewError creates a classified provider error.
func NewError(kind ErrorKind, message string, err error) *Error {
	return &Error{
		Kind:       kind,
		Message:    message,
		Underlying: err,
	}
}

// KindOf returns the classified kind of err, or "" when err carries none.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// IsKind reports whether err is classified as the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
