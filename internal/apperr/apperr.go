// Package apperr defines the error kinds the service distinguishes between.
//
// Callers match on a kind for the expected, recoverable conditions (a
// password-protected upload, an exhausted rate limit) and treat every other
// kind as an unexpected failure.
package apperr

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies an error for logging and HTTP translation.
type Kind int

const (
	// KindUnknown is the catch-all for unclassified failures.
	KindUnknown Kind = iota

	// KindPasswordProtected marks a PDF whose encryption could not be
	// bypassed with an empty password. Recoverable, client-facing.
	KindPasswordProtected

	// KindMalformedDocument marks bytes that are not a valid PDF container.
	KindMalformedDocument

	// KindProcessingFailure marks any other extraction failure.
	KindProcessingFailure

	// KindIndexingFailure marks a failed vector index build.
	KindIndexingFailure

	// KindRateLimited marks an upstream rate limit that survived the retry
	// policy. Recoverable, client-facing.
	KindRateLimited

	// KindUpstreamUnavailable marks a connectivity or timeout failure
	// against an upstream service. Not retried.
	KindUpstreamUnavailable

	// KindUpstreamError marks any other upstream failure, carrying the
	// status and detail.
	KindUpstreamError

	// KindDocumentNotFound marks a chat request against an id the registry
	// does not know.
	KindDocumentNotFound

	// KindDocumentNotIndexed marks a registered id with no persisted index.
	// Implies a registry/index inconsistency and is logged as such.
	KindDocumentNotIndexed

	// KindValidation marks a malformed request body or missing field.
	KindValidation
)

// String returns a stable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindPasswordProtected:
		return "password_protected"
	case KindMalformedDocument:
		return "malformed_document"
	case KindProcessingFailure:
		return "processing_failure"
	case KindIndexingFailure:
		return "indexing_failure"
	case KindRateLimited:
		return "rate_limited"
	case KindUpstreamUnavailable:
		return "upstream_unavailable"
	case KindUpstreamError:
		return "upstream_error"
	case KindDocumentNotFound:
		return "document_not_found"
	case KindDocumentNotIndexed:
		return "document_not_indexed"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Error is a classified error with an optional wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error

	// RetryAfter is the upstream-indicated pause before the next attempt.
	// Only meaningful for KindRateLimited; zero means unspecified.
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

// Unwrap exposes the cause for errors.Is / errors.As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error without a cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap creates a classified error around a cause.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the kind from an error chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether the error chain carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// RateLimited creates a rate-limit error with the upstream-indicated pause.
func RateLimited(msg string, retryAfter time.Duration, err error) *Error {
	return &Error{Kind: KindRateLimited, Msg: msg, Err: err, RetryAfter: retryAfter}
}

// RetryAfterOf extracts the upstream-indicated pause from an error chain.
func RetryAfterOf(err error) time.Duration {
	var e *Error
	if errors.As(err, &e) {
		return e.RetryAfter
	}
	return 0
}
