/*
errors.go - Centralized error types for the payroll engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The HTTP layer maps these onto status codes; nothing below it should
  ever collapse them into a generic failure.

ERROR CATEGORIES:
  1. Not-found errors - Worker, shift, or gateway order unresolved
  2. State errors - Settlement preconditions not met
  3. Authentication errors - Gateway signature mismatch
  4. Concurrency errors - Optimistic-lock conflicts

USAGE:
  Callers classify with errors.Is or the helpers below:

    if payroll.IsNotFound(err) {
        // 404
    }
    if payroll.IsRetryable(err) {
        // safe to re-read and retry
    }

SEE ALSO:
  - gateway/gateway.go: Upstream (gateway transport) errors
  - api/handlers.go: HTTP status mapping
*/
package payroll

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrWorkerNotFound is returned when a worker id does not resolve.
	ErrWorkerNotFound = errors.New("worker not found")

	// ErrShiftNotFound is returned when a shift id does not resolve on the
	// given worker.
	ErrShiftNotFound = errors.New("shift not found")

	// ErrOrderNotFound is returned when a gateway order id is unknown or
	// belongs to a different worker.
	ErrOrderNotFound = errors.New("gateway order not found")

	// ErrNothingDue is returned when settlement is attempted with no unpaid
	// shifts. This is an explicit precondition failure, never a silent
	// success.
	ErrNothingDue = errors.New("no pending salary to pay")

	// ErrSignatureMismatch is returned when the gateway payment signature
	// does not verify. The ledger is never touched in this case.
	ErrSignatureMismatch = errors.New("invalid payment signature")

	// ErrOrderExpired is returned when verification arrives after the
	// order's TTL. A fresh order must be created.
	ErrOrderExpired = errors.New("gateway order expired")

	// ErrOrderSettled is returned when verification is replayed against an
	// order that already settled.
	ErrOrderSettled = errors.New("gateway order already settled")

	// ErrConcurrentModification is returned when optimistic locking detects
	// a conflicting write. Safe to re-read and retry.
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NothingDueError reports the (non-positive) due amount that blocked a
// settlement attempt.
type NothingDueError struct {
	WorkerID WorkerID
	Due      decimal.Decimal
}

func (e *NothingDueError) Error() string {
	return fmt.Sprintf("nothing due for worker %s (due: %s)", e.WorkerID, e.Due)
}

func (e *NothingDueError) Unwrap() error { return ErrNothingDue }

// SignatureError identifies which order failed verification without
// leaking either signature.
type SignatureError struct {
	WorkerID WorkerID
	OrderID  string
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("signature verification failed for order %s (worker %s)", e.OrderID, e.WorkerID)
}

func (e *SignatureError) Unwrap() error { return ErrSignatureMismatch }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrWorkerNotFound) ||
		errors.Is(err, ErrShiftNotFound) ||
		errors.Is(err, ErrOrderNotFound)
}

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}

// IsClientError returns true if the error is terminal for the request and
// caused by client state or input rather than a system failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNothingDue) ||
		errors.Is(err, ErrSignatureMismatch) ||
		errors.Is(err, ErrOrderExpired) ||
		errors.Is(err, ErrOrderSettled)
}
