/*
settlement.go - Manual and gateway-mediated settlement

PURPOSE:
  Converts a worker's unpaid shifts into a recorded Payment and flips them
  to paid. Two mutually exclusive paths:

  Manual:
    Settle() computes the due amount and, if positive, commits the payment
    in one write.

  Gateway:
    CreateOrder() computes the due amount, opens an authorization order
    with the provider (amount in minor units, receipt within the provider
    limit) and persists a pending session with a TTL. No ledger mutation.
    The client authorizes externally. VerifyPayment() then checks the HMAC
    signature, recomputes the due amount from the CURRENT ledger (shifts
    may have been added or deleted since order creation), and commits the
    same mutation as manual settlement.

SERIALIZATION:
  Total paid must always equal total accrued. Two racing settlements on
  the same worker must not both commit. Settlement therefore runs under a
  per-worker mutex, and the final write carries the version read inside
  the critical section, so even an out-of-band writer (a second process)
  trips ErrConcurrentModification instead of double-paying. Settlement
  does not retry on conflict: under the lock a conflict means the ledger
  moved underneath us, and the caller should re-read and decide.

EDGE CASES:
  - Nothing due           -> ErrNothingDue, no mutation
  - Tampered signature    -> ErrSignatureMismatch, no mutation
  - Expired order         -> ErrOrderExpired, order marked expired
  - Replayed verification -> ErrOrderSettled, no mutation

SEE ALSO:
  - gateway/gateway.go: The provider client
  - calculator.go: DuePay, recomputed at every decision point
*/
package payroll

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/autoweave/payroll-engine/gateway"
)

// DefaultOrderTTL bounds the time between order creation and verification.
const DefaultOrderTTL = 30 * time.Minute

// Settler owns the settlement critical section for every worker.
type Settler struct {
	store    Store
	gateway  gateway.Client
	orderTTL time.Duration
	log      *zap.SugaredLogger

	mu    sync.Mutex
	locks map[WorkerID]*sync.Mutex
}

// NewSettler creates a settler. A zero orderTTL falls back to the default.
func NewSettler(store Store, gw gateway.Client, orderTTL time.Duration, log *zap.SugaredLogger) *Settler {
	if orderTTL <= 0 {
		orderTTL = DefaultOrderTTL
	}
	return &Settler{
		store:    store,
		gateway:  gw,
		orderTTL: orderTTL,
		log:      log,
		locks:    make(map[WorkerID]*sync.Mutex),
	}
}

// workerLock returns the mutex guarding settlement for one worker.
// Locks are never removed; the per-worker footprint is one mutex.
func (s *Settler) workerLock(id WorkerID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// =============================================================================
// MANUAL SETTLEMENT
// =============================================================================

// Settle pays out everything currently due, directly. Returns the updated
// worker snapshot.
func (s *Settler) Settle(ctx context.Context, workerID WorkerID) (*Worker, error) {
	lock := s.workerLock(workerID)
	lock.Lock()
	defer lock.Unlock()

	w, err := s.store.GetWorker(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, ErrWorkerNotFound
	}

	if err := s.commitSettlement(ctx, w, PaymentManual, "", ""); err != nil {
		return nil, err
	}
	return w, nil
}

// =============================================================================
// GATEWAY SETTLEMENT
// =============================================================================

// CreateOrder begins gateway settlement: computes the due amount, opens an
// authorization order with the provider, and persists a pending session.
// The ledger is not touched. The returned descriptor is the provider's,
// verbatim.
func (s *Settler) CreateOrder(ctx context.Context, workerID WorkerID) (*gateway.Order, error) {
	w, err := s.store.GetWorker(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, ErrWorkerNotFound
	}

	due := DuePay(w)
	if !due.IsPositive() {
		return nil, &NothingDueError{WorkerID: workerID, Due: due}
	}

	now := time.Now().UTC()
	req := gateway.OrderRequest{
		AmountMinor: due.Mul(minorUnitsPerUnit).Round(0).IntPart(),
		Currency:    gateway.Currency,
		Receipt:     gateway.Receipt(string(workerID), now),
		Notes: map[string]string{
			"worker_id":   string(workerID),
			"worker_name": w.Name,
		},
	}

	order, err := s.gateway.CreateOrder(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create order for worker %s: %w", workerID, err)
	}

	session := GatewayOrder{
		OrderID:     order.ID,
		WorkerID:    workerID,
		AmountMinor: order.AmountMinor,
		Receipt:     req.Receipt,
		Status:      OrderCreated,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.orderTTL),
	}
	if err := s.store.SaveOrder(ctx, session); err != nil {
		return nil, err
	}

	s.log.Infow("gateway order created",
		"worker", workerID, "order", order.ID, "amount_minor", order.AmountMinor)
	return order, nil
}

// VerifyPayment completes gateway settlement. The due amount is recomputed
// here, not reused from order creation: the ledger may have changed in
// between, and the payment must cover exactly what is unpaid now.
func (s *Settler) VerifyPayment(ctx context.Context, workerID WorkerID, orderID, paymentID, signature string) (*Worker, error) {
	lock := s.workerLock(workerID)
	lock.Lock()
	defer lock.Unlock()

	w, err := s.store.GetWorker(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, ErrWorkerNotFound
	}

	session, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.WorkerID != workerID {
		return nil, ErrOrderNotFound
	}

	switch session.Status {
	case OrderSettled:
		return nil, ErrOrderSettled
	case OrderExpired:
		return nil, ErrOrderExpired
	}

	if time.Now().UTC().After(session.ExpiresAt) {
		if err := s.store.SetOrderStatus(ctx, orderID, OrderExpired); err != nil {
			return nil, err
		}
		s.log.Infow("gateway order expired before verification",
			"worker", workerID, "order", orderID)
		return nil, ErrOrderExpired
	}

	// Tampering check first. A mismatch leaves everything untouched.
	if !s.gateway.VerifySignature(orderID, paymentID, signature) {
		s.log.Warnw("payment signature mismatch",
			"worker", workerID, "order", orderID)
		return nil, &SignatureError{WorkerID: workerID, OrderID: orderID}
	}

	if err := s.commitSettlement(ctx, w, PaymentGateway, orderID, paymentID); err != nil {
		return nil, err
	}
	if err := s.store.SetOrderStatus(ctx, orderID, OrderSettled); err != nil {
		return nil, err
	}
	return w, nil
}

// =============================================================================
// COMMIT
// =============================================================================

// minorUnitsPerUnit converts currency units to the provider's minor units.
var minorUnitsPerUnit = decimal.NewFromInt(100)

// commitSettlement appends the payment, flips every unpaid shift, and
// persists in a single version-checked write. Mutates w in place.
func (s *Settler) commitSettlement(ctx context.Context, w *Worker, method PaymentMethod, orderID, paymentID string) error {
	due := DuePay(w)
	if !due.IsPositive() {
		return &NothingDueError{WorkerID: w.ID, Due: due}
	}

	var settled []ShiftID
	for i := range w.Shifts {
		if !w.Shifts[i].IsPaid {
			w.Shifts[i].IsPaid = true
			settled = append(settled, w.Shifts[i].ID)
		}
	}

	w.Payments = append(w.Payments, Payment{
		ID:               NewPaymentID(),
		Amount:           due,
		Date:             time.Now().UTC(),
		ShiftIDs:         settled,
		Method:           method,
		GatewayOrderID:   orderID,
		GatewayPaymentID: paymentID,
	})

	if err := s.store.UpdateWorker(ctx, w, w.Version); err != nil {
		return err
	}

	s.log.Infow("settlement committed",
		"worker", w.ID, "method", method, "amount", due.String(), "shifts", len(settled))
	return nil
}
