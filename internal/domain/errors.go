package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure the service can surface. Kinds are
// stable wire values: handlers map them to HTTP statuses and clients key
// their behavior off them.
type ErrorKind string

const (
	KindInvalidRequest    ErrorKind = "invalid_request"
	KindUnknownProvider   ErrorKind = "unknown_provider"
	KindUnknownGenre      ErrorKind = "unknown_genre"
	KindProviderUnavail   ErrorKind = "provider_unavailable"
	KindProviderError     ErrorKind = "provider_error"
	KindMalformedResponse ErrorKind = "malformed_provider_response"
	KindGenerationFailed  ErrorKind = "generation_failed"
	KindGenerationTimeout ErrorKind = "generation_timeout"
)

// Error is the structured failure passed up to the HTTP boundary. Detail is
// human-readable; UpstreamStatus/UpstreamBody are set when a provider
// answered with a non-2xx response.
type Error struct {
	Kind           ErrorKind
	Detail         string
	UpstreamStatus int
	UpstreamBody   string
	Err            error
}

func (e *Error) Error() string {
	if e.UpstreamStatus != 0 {
		return fmt.Sprintf("%s: %s (upstream %d)", e.Kind, e.Detail, e.UpstreamStatus)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E builds a plain structured error.
func E(kind ErrorKind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Ef builds a structured error with a formatted detail message.
func Ef(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Upstream builds a provider_error carrying the upstream status and body.
func Upstream(status int, body string) *Error {
	return &Error{
		Kind:           KindProviderError,
		Detail:         fmt.Sprintf("provider returned status %d", status),
		UpstreamStatus: status,
		UpstreamBody:   body,
	}
}

// KindOf extracts the ErrorKind from err, or "" when err is not a *Error.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
