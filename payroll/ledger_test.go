package payroll_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoweave/payroll-engine/payroll"
	pstore "github.com/autoweave/payroll-engine/payroll/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestLedger(t *testing.T) (*payroll.Ledger, *pstore.Memory, *payroll.Worker) {
	t.Helper()
	store := pstore.NewMemory()
	w := payroll.NewWorker("Ravi", "+91-98765", decimal.NewFromInt(750))
	require.NoError(t, store.SaveWorker(context.Background(), w))
	return payroll.NewLedger(store), store, w
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// =============================================================================
// ADD SHIFT
// =============================================================================

func TestAddShift_Defaults(t *testing.T) {
	// GIVEN: A worker at the default rate
	// WHEN: Adding a shift with no date and no hours
	// THEN: Hours default to 8, amount equals the full rate, shift is unpaid

	ledger, _, w := newTestLedger(t)

	updated, err := ledger.AddShift(context.Background(), w.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, updated.Shifts, 1)

	sh := updated.Shifts[0]
	assert.True(t, sh.Hours.Equal(dec(8)))
	assert.True(t, sh.Amount.Equal(dec(750)))
	assert.False(t, sh.IsPaid)
	assert.WithinDuration(t, time.Now().UTC(), sh.Date, 5*time.Second)
}

func TestAddShift_ProRatedHours(t *testing.T) {
	ledger, _, w := newTestLedger(t)

	hours := dec(6)
	updated, err := ledger.AddShift(context.Background(), w.ID, nil, &hours)
	require.NoError(t, err)
	assert.True(t, updated.Shifts[0].Amount.Equal(dec(563)), "round(750/8*6) == 563")
}

func TestAddShift_ExplicitDate(t *testing.T) {
	ledger, _, w := newTestLedger(t)

	date := time.Date(2026, time.May, 2, 0, 0, 0, 0, time.UTC)
	updated, err := ledger.AddShift(context.Background(), w.ID, &date, nil)
	require.NoError(t, err)
	assert.Equal(t, date, updated.Shifts[0].Date)
}

func TestAddShift_UnknownWorker(t *testing.T) {
	ledger, _, _ := newTestLedger(t)

	_, err := ledger.AddShift(context.Background(), "nope", nil, nil)
	assert.ErrorIs(t, err, payroll.ErrWorkerNotFound)
}

func TestAddShift_PersistsAcrossReads(t *testing.T) {
	ledger, store, w := newTestLedger(t)
	ctx := context.Background()

	_, err := ledger.AddShift(ctx, w.ID, nil, nil)
	require.NoError(t, err)

	reread, err := store.GetWorker(ctx, w.ID)
	require.NoError(t, err)
	assert.Len(t, reread.Shifts, 1)
	assert.Equal(t, int64(2), reread.Version, "mutation bumps the version token")
}

// =============================================================================
// DELETE SHIFT
// =============================================================================

func TestDeleteShift_RemovesExactlyOne(t *testing.T) {
	ledger, _, w := newTestLedger(t)
	ctx := context.Background()

	first, err := ledger.AddShift(ctx, w.ID, nil, nil)
	require.NoError(t, err)
	second, err := ledger.AddShift(ctx, w.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, second.Shifts, 2)

	updated, err := ledger.DeleteShift(ctx, w.ID, first.Shifts[0].ID)
	require.NoError(t, err)
	require.Len(t, updated.Shifts, 1)
	assert.Equal(t, second.Shifts[1].ID, updated.Shifts[0].ID)
}

func TestDeleteShift_UnknownShift(t *testing.T) {
	ledger, _, w := newTestLedger(t)

	_, err := ledger.DeleteShift(context.Background(), w.ID, "nope")
	assert.ErrorIs(t, err, payroll.ErrShiftNotFound)
}

func TestDeleteShift_UnknownWorker(t *testing.T) {
	ledger, _, _ := newTestLedger(t)

	_, err := ledger.DeleteShift(context.Background(), "nope", "irrelevant")
	assert.ErrorIs(t, err, payroll.ErrWorkerNotFound)
}

// =============================================================================
// ORDERING
// =============================================================================

func TestShifts_KeepInsertionOrder(t *testing.T) {
	// Shifts entered out of date order stay in entry order; consumers
	// filter by date, never by position.
	ledger, store, w := newTestLedger(t)
	ctx := context.Background()

	later := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	earlier := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	_, err := ledger.AddShift(ctx, w.ID, &later, nil)
	require.NoError(t, err)
	_, err = ledger.AddShift(ctx, w.ID, &earlier, nil)
	require.NoError(t, err)

	reread, err := store.GetWorker(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, reread.Shifts, 2)
	assert.Equal(t, later, reread.Shifts[0].Date)
	assert.Equal(t, earlier, reread.Shifts[1].Date)
}
