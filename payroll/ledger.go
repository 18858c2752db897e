/*
ledger.go - Shift ledger mutations

PURPOSE:
  Records worked time and its monetary value against a worker. The amount
  of a shift is fixed here, at entry time, from the worker's current rate;
  later rate changes never reprice existing shifts.

CONCURRENCY:
  Shift adds and deletes on the same worker may interleave with each other,
  so each runs a read-mutate-update loop with an optimistic version check
  and a bounded number of retries. They must NOT interleave with an
  in-flight settlement; the version check guarantees that a settlement that
  committed between our read and write forces a re-read, so no shift flip
  is ever lost.

SEE ALSO:
  - settlement.go: The settlement critical section
  - store.go: The version contract
*/
package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// maxRetries bounds the optimistic-locking loop for shift mutations.
const maxRetries = 3

// Ledger performs shift mutations against a WorkerStore.
type Ledger struct {
	store WorkerStore
}

func NewLedger(store WorkerStore) *Ledger {
	return &Ledger{store: store}
}

// AddShift appends a new unpaid shift. A nil date defaults to now; nil
// hours default to a full shift. Returns the updated worker snapshot.
func (l *Ledger) AddShift(ctx context.Context, workerID WorkerID, date *time.Time, hours *decimal.Decimal) (*Worker, error) {
	shiftDate := time.Now().UTC()
	if date != nil {
		shiftDate = *date
	}
	shiftHours := DefaultShiftHours
	if hours != nil {
		shiftHours = *hours
	}
	if !shiftHours.IsPositive() {
		return nil, fmt.Errorf("hours must be positive, got %s", shiftHours)
	}

	return l.mutate(ctx, workerID, func(w *Worker) error {
		w.Shifts = append(w.Shifts, NewShift(shiftDate, shiftHours, w.ShiftRate))
		return nil
	})
}

// DeleteShift removes exactly one shift by id. Deleting a paid shift is
// allowed (matching the manual-correction workflow) even though it leaves
// the covering payment pointing at a gone shift id.
func (l *Ledger) DeleteShift(ctx context.Context, workerID WorkerID, shiftID ShiftID) (*Worker, error) {
	return l.mutate(ctx, workerID, func(w *Worker) error {
		i := w.FindShift(shiftID)
		if i < 0 {
			return ErrShiftNotFound
		}
		w.Shifts = append(w.Shifts[:i], w.Shifts[i+1:]...)
		return nil
	})
}

// mutate runs the read-mutate-update loop with optimistic locking.
func (l *Ledger) mutate(ctx context.Context, workerID WorkerID, fn func(*Worker) error) (*Worker, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		w, err := l.store.GetWorker(ctx, workerID)
		if err != nil {
			return nil, err
		}
		if w == nil {
			return nil, ErrWorkerNotFound
		}

		if err := fn(w); err != nil {
			return nil, err
		}

		err = l.store.UpdateWorker(ctx, w, w.Version)
		if err == nil {
			return w, nil
		}
		if !errors.Is(err, ErrConcurrentModification) {
			return nil, err
		}
		// Someone else wrote first. Re-read and retry.
		lastErr = err
	}
	return nil, fmt.Errorf("shift mutation for worker %s: %w", workerID, lastErr)
}
