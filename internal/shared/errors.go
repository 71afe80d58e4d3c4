// Package shared contains the error taxonomy used across the application.
package shared

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure categories the crontab core distinguishes.
var (
	// ErrNotFound indicates the backing file or a referenced record is
	// absent. Recoverable: for the backing file it often means "nothing
	// configured yet".
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates malformed input to a mutating operation,
	// e.g. a missing required job field or a command referencing a
	// non-approved script.
	ErrValidation = errors.New("validation failed")

	// ErrIO indicates a filesystem read/write/backup failure. Where a
	// rollback point exists it has been applied before the error is
	// surfaced.
	ErrIO = errors.New("io failure")

	// ErrInternal indicates a failure that fits no other category.
	ErrInternal = errors.New("internal error")
)

// Kind classifies an error for mapping to outward-facing responses.
type Kind int

const (
	// KindUnknown represents an unclassified error.
	KindUnknown Kind = iota
	// KindNotFound represents missing-file or missing-record errors.
	KindNotFound
	// KindValidation represents rejected input.
	KindValidation
	// KindIO represents filesystem failures.
	KindIO
	// KindInternal represents internal errors.
	KindInternal
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindValidation:
		return "Validation"
	case KindIO:
		return "IO"
	case KindInternal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// kindPriorities defines the deterministic classification order: specific,
// caller-actionable kinds win over infrastructure kinds when an error chain
// carries several.
var kindPriorities = []struct {
	kind Kind
	err  error
}{
	{KindNotFound, ErrNotFound},
	{KindValidation, ErrValidation},
	{KindIO, ErrIO},
	{KindInternal, ErrInternal},
}

// KindOf returns the Kind of the given error by checking the error chain
// against the known sentinels in priority order. Returns KindUnknown for
// unrecognized errors.
//
// Example:
//
//	switch shared.KindOf(err) {
//	case shared.KindNotFound:
//	    return http.StatusNotFound
//	case shared.KindValidation:
//	    return http.StatusBadRequest
//	default:
//	    return http.StatusInternalServerError
//	}
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	for _, p := range kindPriorities {
		if errors.Is(err, p.err) {
			return p.kind
		}
	}
	return KindUnknown
}

// sentinelOf returns the sentinel error for the given Kind, or nil.
func sentinelOf(kind Kind) error {
	for _, p := range kindPriorities {
		if p.kind == kind {
			return p.err
		}
	}
	return nil
}

// MarkKind wraps an error with the sentinel for the given kind, preserving
// the original error through wrapping. Marking is idempotent: an error that
// already has the kind is returned unchanged. A nil error yields the bare
// sentinel.
//
// Typical use is adapting third-party errors at a boundary:
//
//	if err := os.WriteFile(path, data, 0o600); err != nil {
//	    return shared.MarkKind(err, shared.KindIO)
//	}
func MarkKind(err error, kind Kind) error {
	sentinel := sentinelOf(kind)
	if sentinel == nil {
		return err
	}
	if err == nil {
		return sentinel
	}
	if KindOf(err) == kind {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

// Wrap wraps an error with additional context, formatting as "context: err".
// A nil error or empty context passes through unchanged.
func Wrap(err error, context string) error {
	if err == nil {
		return nil
	}
	if context == "" {
		return err
	}
	return fmt.Errorf("%s: %w", context, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...any) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// IsNotFound reports whether the error is a missing-file or missing-record
// condition.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether the error is rejected input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsIO reports whether the error is a filesystem failure.
func IsIO(err error) bool {
	return errors.Is(err, ErrIO)
}
