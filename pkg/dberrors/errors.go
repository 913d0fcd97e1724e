// Package dberrors implements the three-shape error surface required by
// the operator contract (§6 External Interfaces): TransactionAborted,
// DbError, and IoError. Operators are contractually obligated to
// distinguish TransactionAborted from everything else (§7), so it is its
// own type rather than a DbError reason.
package dberrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Reason enumerates the DbError causes named in §6.
type Reason int

const (
	NotMatchingSchema Reason = iota
	PageFull
	TupleNotOnPage
	PageOutOfRange
	AllPagesDirty
)

func (r Reason) String() string {
	switch r {
	case NotMatchingSchema:
		return "NotMatchingSchema"
	case PageFull:
		return "PageFull"
	case TupleNotOnPage:
		return "TupleNotOnPage"
	case PageOutOfRange:
		return "PageOutOfRange"
	case AllPagesDirty:
		return "AllPagesDirty"
	default:
		return "UnknownReason"
	}
}

// DbError is a recoverable-by-caller storage error: a schema mismatch, a
// full page, a missing tuple, an out-of-range page, or eviction failure.
type DbError struct {
	Reason  Reason
	Detail  string
	wrapped error
}

func NewDbError(reason Reason, detail string) *DbError {
	return &DbError{Reason: reason, Detail: detail}
}

func WrapDbError(reason Reason, detail string, cause error) *DbError {
	return &DbError{Reason: reason, Detail: detail, wrapped: errors.WithStack(cause)}
}

func (e *DbError) Error() string {
	if e.Detail == "" {
		return e.Reason.String()
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

func (e *DbError) Unwrap() error { return e.wrapped }

func (e *DbError) Is(target error) bool {
	other, ok := target.(*DbError)
	return ok && other.Reason == e.Reason
}

// IsReason reports whether err is a *DbError with the given reason.
func IsReason(err error, reason Reason) bool {
	dbErr, ok := err.(*DbError)
	return ok && dbErr.Reason == reason
}

// IoError wraps a failure from the underlying file system, preserving the
// original cause and a stack trace via github.com/pkg/errors.
type IoError struct {
	cause error
}

func WrapIoError(op string, cause error) *IoError {
	return &IoError{cause: errors.Wrapf(cause, "io: %s", op)}
}

func (e *IoError) Error() string { return e.cause.Error() }
func (e *IoError) Unwrap() error { return e.cause }

// TransactionAborted is returned from GetPage when deadlock detection
// kills the calling transaction. The caller must propagate it upward
// without catching it and must call transactionComplete(tx, false) (§7).
type TransactionAborted struct {
	Reason string
}

func NewTransactionAborted(reason string) *TransactionAborted {
	return &TransactionAborted{Reason: reason}
}

func (e *TransactionAborted) Error() string {
	return fmt.Sprintf("transaction aborted: %s", e.Reason)
}
