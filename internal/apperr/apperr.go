// Package apperr classifies errors into the kinds the orchestrator loops
// care about. Components wrap causes with a kind; the loops decide per kind
// whether to surface, retry on the next tick, or skip.
package apperr

import (
	"errors"
	"fmt"
)

// Kind identifies a class of failure.
type Kind int

const (
	// KindUnknown is the zero kind for unclassified errors.
	KindUnknown Kind = iota
	// KindValidation is malformed caller input. Surfaced synchronously.
	KindValidation
	// KindNotFound targets a survey or user that does not exist.
	KindNotFound
	// KindTransientTransport is a retryable send failure (timeout etc.).
	KindTransientTransport
	// KindPermanentTransport is an unreachable recipient.
	KindPermanentTransport
	// KindTransientStore is a store failure that heals on the next tick.
	KindTransientStore
	// KindInvariantViolation means another worker won a CAS or uniqueness
	// race. Not an error condition; work is skipped.
	KindInvariantViolation
	// KindFatal means the process cannot continue.
	KindFatal
)

// String returns the kind's log-friendly name.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindTransientTransport:
		return "transient_transport"
	case KindPermanentTransport:
		return "permanent_transport"
	case KindTransientStore:
		return "transient_store"
	case KindInvariantViolation:
		return "invariant_violation"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error is an error with a kind attached. The cause is preserved for %w
// unwrapping.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a kinded error from a message.
func New(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Wrap attaches a kind to an existing error. Returns nil for a nil cause.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// KindOf extracts the kind from an error chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
