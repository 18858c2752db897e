/*
Package payroll provides the worker payroll ledger and settlement engine.

PURPOSE:
  This package contains the domain model and algorithms for tracking worked
  shifts, the money owed for them, and the settlement of that money into
  recorded payments. A worker owns an embedded ledger of shifts (each with a
  pay amount computed at entry time) and payments (each covering a concrete
  set of shifts).

KEY CONCEPTS IN THIS FILE (types.go):
  - Worker: Aggregate root owning the shift and payment ledgers
  - Shift: One unit of worked time with a stored pay amount and paid flag
  - Payment: A settlement record referencing the shifts it covered
  - WorkerID/ShiftID/PaymentID: Type-safe identifiers

DESIGN PRINCIPLES:
  1. Stored amounts: a shift's amount is computed once from the rate in
     force at entry time and never recomputed. Rate changes are not
     retroactive.
  2. Precision: Uses decimal.Decimal to avoid floating-point errors.
  3. Derived totals: due pay and due hours are pure functions of the
     ledger, recomputed on every read (see calculator.go). Never cached.
  4. Versioning: every persisted mutation bumps Worker.Version. Stores
     reject writes against a stale version (optimistic locking).

USAGE:
  w := payroll.NewWorker("Ravi", "+91-98...", decimal.NewFromInt(750))
  shift := payroll.NewShift(time.Now(), decimal.NewFromInt(8), w.ShiftRate)
  w.Shifts = append(w.Shifts, shift)

SEE ALSO:
  - calculator.go: Derived queries (due pay, due hours)
  - ledger.go: Shift add/delete operations
  - settlement.go: Manual and gateway-mediated settlement
*/
package payroll

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type WorkerID string
type ShiftID string
type PaymentID string

func NewWorkerID() WorkerID   { return WorkerID(uuid.NewString()) }
func NewShiftID() ShiftID     { return ShiftID(uuid.NewString()) }
func NewPaymentID() PaymentID { return PaymentID(uuid.NewString()) }

// =============================================================================
// CONSTANTS
// =============================================================================

// DefaultShiftRate is the pay for a full shift when a worker is created
// without an explicit rate.
var DefaultShiftRate = decimal.NewFromInt(750)

// DefaultShiftHours is the length of a full shift. Shift amounts are
// pro-rated linearly against this base.
var DefaultShiftHours = decimal.NewFromInt(8)

// PaymentMethod records which settlement path produced a payment.
type PaymentMethod string

const (
	PaymentManual  PaymentMethod = "manual"  // direct settlement, no gateway
	PaymentGateway PaymentMethod = "gateway" // order created + signature verified
)

// =============================================================================
// SHIFT - One unit of worked time
// =============================================================================

// Shift is a single ledger entry. Amount is fixed at creation from the
// worker's rate in force at that moment. Once IsPaid flips to true the
// shift is immutable; the only remaining operation is explicit deletion.
type Shift struct {
	ID     ShiftID
	Date   time.Time
	Hours  decimal.Decimal
	Amount decimal.Decimal
	IsPaid bool
}

// NewShift creates an unpaid shift, pro-rating the amount from the given
// full-shift rate.
func NewShift(date time.Time, hours, rate decimal.Decimal) Shift {
	return Shift{
		ID:     NewShiftID(),
		Date:   date,
		Hours:  hours,
		Amount: ShiftAmount(rate, hours),
	}
}

// =============================================================================
// PAYMENT - A settlement record
// =============================================================================

// Payment records one settlement. ShiftIDs lists exactly the shifts this
// payment covered, so the ledger stays auditable even though shifts carry
// no back-reference. Gateway fields are empty for manual settlements.
type Payment struct {
	ID               PaymentID
	Amount           decimal.Decimal
	Date             time.Time
	ShiftIDs         []ShiftID
	Method           PaymentMethod
	GatewayOrderID   string
	GatewayPaymentID string
}

// =============================================================================
// WORKER - Aggregate root
// =============================================================================

// Worker owns its ledgers. Shifts and Payments are kept in insertion order,
// which is entry order, not necessarily date order: date-range queries must
// filter by Shift.Date, never rely on position.
type Worker struct {
	ID        WorkerID
	Name      string
	Contact   string
	ShiftRate decimal.Decimal
	Shifts    []Shift
	Payments  []Payment
	CreatedAt time.Time

	// Version is the optimistic-lock token. Stores increment it on every
	// successful write and reject writes carrying a stale value.
	Version int64
}

// NewWorker creates a worker with an empty ledger. A non-positive rate
// falls back to the default; callers that want rejection instead of
// defaulting validate before calling (the HTTP layer does).
func NewWorker(name, contact string, rate decimal.Decimal) *Worker {
	if !rate.IsPositive() {
		rate = DefaultShiftRate
	}
	return &Worker{
		ID:        NewWorkerID(),
		Name:      name,
		Contact:   contact,
		ShiftRate: rate,
		CreatedAt: time.Now().UTC(),
	}
}

// FindShift returns the index of the shift with the given id, or -1.
func (w *Worker) FindShift(id ShiftID) int {
	for i := range w.Shifts {
		if w.Shifts[i].ID == id {
			return i
		}
	}
	return -1
}

// UnpaidShifts returns the currently unpaid entries, in ledger order.
func (w *Worker) UnpaidShifts() []Shift {
	var unpaid []Shift
	for _, s := range w.Shifts {
		if !s.IsPaid {
			unpaid = append(unpaid, s)
		}
	}
	return unpaid
}

// Clone returns a deep copy. Stores hand out clones so callers can mutate
// freely before writing back with a version check.
func (w *Worker) Clone() *Worker {
	cp := *w
	cp.Shifts = make([]Shift, len(w.Shifts))
	copy(cp.Shifts, w.Shifts)
	cp.Payments = make([]Payment, len(w.Payments))
	for i, p := range w.Payments {
		cp.Payments[i] = p
		cp.Payments[i].ShiftIDs = append([]ShiftID(nil), p.ShiftIDs...)
	}
	return &cp
}

// =============================================================================
// GATEWAY ORDER - Pending settlement session
// =============================================================================

type OrderStatus string

const (
	OrderCreated OrderStatus = "created" // awaiting external authorization
	OrderSettled OrderStatus = "settled" // verified and committed
	OrderExpired OrderStatus = "expired" // TTL elapsed before verification
)

// GatewayOrder tracks one gateway settlement session between order creation
// and verification. Orders expire after a TTL so a stale authorization can
// never settle against a ledger that has moved on.
type GatewayOrder struct {
	OrderID     string
	WorkerID    WorkerID
	AmountMinor int64 // minor currency units, as sent to the gateway
	Receipt     string
	Status      OrderStatus
	CreatedAt   time.Time
	ExpiresAt   time.Time
}
