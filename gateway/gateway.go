/*
Package gateway is the payment-gateway collaborator used for mediated
settlement.

PURPOSE:
  Wraps the external payment provider behind a small Client interface:
  create an authorization order, and verify the signature the provider
  returns after the client-side authorization step. The payroll engine
  never talks to the provider directly.

PROTOCOL:
  1. CreateOrder(amount in minor units, receipt, notes) -> Order
  2. (outside this system) client authorizes; provider returns
     (orderID, paymentID, signature)
  3. VerifySignature checks signature == hex(HMAC-SHA256(secret,
     orderID + "|" + paymentID))

ERROR SEMANTICS:
  Transport failures and provider rejections both surface as *Error
  wrapping ErrUpstream. These are retryable by the caller. Signature
  mismatch is NOT an upstream error; the payroll layer reports it as
  client tampering.

SEE ALSO:
  - signature.go: HMAC helpers and receipt construction
  - http.go: HTTP implementation of Client
  - mock.go: In-memory implementation for tests
*/
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Currency is the only currency this deployment settles in.
const Currency = "INR"

// ErrUpstream is the sentinel for gateway transport failures and provider
// rejections. Use with errors.Is; callers may retry.
var ErrUpstream = errors.New("payment gateway upstream failure")

// Error carries context about a failed gateway call.
type Error struct {
	Op     string // "create_order"
	Status int    // HTTP status from the provider, 0 for transport errors
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("gateway %s failed with status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("gateway %s failed: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return ErrUpstream }

// OrderRequest is what we send to the provider to open an authorization.
type OrderRequest struct {
	AmountMinor int64             // minor currency units (paise)
	Currency    string
	Receipt     string            // caller-chosen, within MaxReceiptLen
	Notes       map[string]string // free-form metadata echoed back by the provider
}

// Order is the provider's order descriptor, returned verbatim to callers.
type Order struct {
	ID          string    `json:"id"`
	AmountMinor int64     `json:"amount"`
	Currency    string    `json:"currency"`
	Receipt     string    `json:"receipt"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Client is the surface the payroll engine consumes.
type Client interface {
	// CreateOrder opens an authorization order with the provider.
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)

	// VerifySignature reports whether the provider-issued signature matches
	// HMAC-SHA256(secret, orderID + "|" + paymentID).
	VerifySignature(orderID, paymentID, signature string) bool
}
