/*
store.go - Persistence interfaces for workers and gateway orders

PURPOSE:
  Defines the interface between the domain logic and the database.
  Different implementations can use SQLite or in-memory storage.

VERSION CONTRACT:
  GetWorker hands out a snapshot carrying Worker.Version. UpdateWorker
  persists the whole aggregate only if the stored version still equals
  expectedVersion, then increments it. A stale version yields
  ErrConcurrentModification. This is the optimistic half of the
  settlement-serialization discipline; the Settler's per-worker mutex is
  the pessimistic half.

SNAPSHOT SEMANTICS:
  Implementations must return deep copies. Mutating a returned worker has
  no effect until it is written back through UpdateWorker.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite
  - payroll/store/memory.go: In-memory for testing

SEE ALSO:
  - ledger.go: Retries UpdateWorker on version conflicts
  - settlement.go: Uses OrderStore for gateway sessions
*/
package payroll

import "context"

// =============================================================================
// WORKER STORE
// =============================================================================

// WorkerStore persists worker aggregates (worker + embedded ledgers).
type WorkerStore interface {
	// SaveWorker inserts a new worker at version 1.
	SaveWorker(ctx context.Context, w *Worker) error

	// GetWorker returns a deep copy of the worker, or nil if absent.
	GetWorker(ctx context.Context, id WorkerID) (*Worker, error)

	// ListWorkers returns all workers, newest first.
	ListWorkers(ctx context.Context) ([]*Worker, error)

	// UpdateWorker persists the aggregate if the stored version equals
	// expectedVersion, bumping w.Version to expectedVersion+1 on success.
	// Returns ErrConcurrentModification on a stale version and
	// ErrWorkerNotFound if the worker no longer exists.
	UpdateWorker(ctx context.Context, w *Worker, expectedVersion int64) error

	// DeleteWorker removes the worker and its entire ledger.
	// Returns ErrWorkerNotFound if the id does not resolve.
	DeleteWorker(ctx context.Context, id WorkerID) error
}

// =============================================================================
// ORDER STORE
// =============================================================================

// OrderStore persists gateway settlement sessions.
type OrderStore interface {
	// SaveOrder inserts a pending order.
	SaveOrder(ctx context.Context, o GatewayOrder) error

	// GetOrder returns a copy of the order, or nil if absent.
	GetOrder(ctx context.Context, orderID string) (*GatewayOrder, error)

	// SetOrderStatus transitions an order's status.
	SetOrderStatus(ctx context.Context, orderID string, status OrderStatus) error
}

// Store combines everything the settlement protocol needs.
type Store interface {
	WorkerStore
	OrderStore
}
