/*
mock.go - In-memory gateway Client for tests and local development

PURPOSE:
  Issues deterministic orders without any network and signs payments with
  the configured secret, so a full create-order/verify-payment round trip
  can run inside a unit test. Fail can be set to simulate an unreachable
  provider.
*/
package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Mock implements Client in memory.
type Mock struct {
	Secret string
	// Fail, when set, makes CreateOrder return an upstream error.
	Fail bool

	mu     sync.Mutex
	seq    int
	Orders []OrderRequest // every request seen, in order
}

func NewMock(secret string) *Mock {
	return &Mock{Secret: secret}
}

func (m *Mock) CreateOrder(_ context.Context, req OrderRequest) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Fail {
		return nil, &Error{Op: "create_order", Err: fmt.Errorf("mock gateway down")}
	}

	m.seq++
	m.Orders = append(m.Orders, req)
	return &Order{
		ID:          fmt.Sprintf("order_mock_%06d", m.seq),
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
		Receipt:     req.Receipt,
		Status:      "created",
		CreatedAt:   time.Now().UTC(),
	}, nil
}

func (m *Mock) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(m.Secret, orderID, paymentID, signature)
}

// SignPayment produces the signature the real provider would return after
// authorization. Tests use this for the happy path.
func (m *Mock) SignPayment(orderID, paymentID string) string {
	return Sign(m.Secret, orderID, paymentID)
}
