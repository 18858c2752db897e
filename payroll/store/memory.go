// Package store provides payroll Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/autoweave/payroll-engine/payroll"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements payroll.Store entirely in memory. Snapshots in and out
// are deep copies, and UpdateWorker honors the version contract, so the
// same optimistic-locking behavior exercised in production holds in tests.
type Memory struct {
	mu      sync.RWMutex
	workers map[payroll.WorkerID]*payroll.Worker
	orders  map[string]payroll.GatewayOrder
	seq     int64 // insertion counter, for newest-first listing
	order   map[payroll.WorkerID]int64
}

func NewMemory() *Memory {
	return &Memory{
		workers: make(map[payroll.WorkerID]*payroll.Worker),
		orders:  make(map[string]payroll.GatewayOrder),
		order:   make(map[payroll.WorkerID]int64),
	}
}

func (m *Memory) SaveWorker(_ context.Context, w *payroll.Worker) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	w.Version = 1
	m.seq++
	m.order[w.ID] = m.seq
	m.workers[w.ID] = w.Clone()
	return nil
}

func (m *Memory) GetWorker(_ context.Context, id payroll.WorkerID) (*payroll.Worker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w, ok := m.workers[id]
	if !ok {
		return nil, nil
	}
	return w.Clone(), nil
}

func (m *Memory) ListWorkers(_ context.Context) ([]*payroll.Worker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*payroll.Worker, 0, len(m.workers))
	for _, w := range m.workers {
		result = append(result, w.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		return m.order[result[i].ID] > m.order[result[j].ID]
	})
	return result, nil
}

func (m *Memory) UpdateWorker(_ context.Context, w *payroll.Worker, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.workers[w.ID]
	if !ok {
		return payroll.ErrWorkerNotFound
	}
	if current.Version != expectedVersion {
		return payroll.ErrConcurrentModification
	}

	w.Version = expectedVersion + 1
	m.workers[w.ID] = w.Clone()
	return nil
}

func (m *Memory) DeleteWorker(_ context.Context, id payroll.WorkerID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.workers[id]; !ok {
		return payroll.ErrWorkerNotFound
	}
	delete(m.workers, id)
	delete(m.order, id)
	return nil
}

// =============================================================================
// GATEWAY ORDERS
// =============================================================================

func (m *Memory) SaveOrder(_ context.Context, o payroll.GatewayOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.OrderID] = o
	return nil
}

func (m *Memory) GetOrder(_ context.Context, orderID string) (*payroll.GatewayOrder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.orders[orderID]
	if !ok {
		return nil, nil
	}
	cp := o
	return &cp, nil
}

func (m *Memory) SetOrderStatus(_ context.Context, orderID string, status payroll.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[orderID]
	if !ok {
		return payroll.ErrOrderNotFound
	}
	o.Status = status
	m.orders[orderID] = o
	return nil
}
