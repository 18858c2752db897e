package payroll_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/autoweave/payroll-engine/payroll"
)

// =============================================================================
// SHIFT AMOUNT PRO-RATION
// =============================================================================

func TestShiftAmount_ProRation(t *testing.T) {
	rate := decimal.NewFromInt(750)

	cases := []struct {
		name  string
		hours int64
		want  int64
	}{
		{"full shift", 8, 750},
		{"half shift", 4, 375},
		{"six hours rounds up", 6, 563}, // 750/8*6 = 562.5
		{"one hour", 1, 94},             // 93.75 rounds half away from zero
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := payroll.ShiftAmount(rate, decimal.NewFromInt(tc.hours))
			assert.True(t, got.Equal(decimal.NewFromInt(tc.want)),
				"ShiftAmount(750, %d) = %s, want %d", tc.hours, got, tc.want)
		})
	}
}

func TestShiftAmount_FixedAtCreation(t *testing.T) {
	// GIVEN: A shift priced at the worker's current rate
	w := payroll.NewWorker("Asha", "+91-900", decimal.NewFromInt(750))
	w.Shifts = append(w.Shifts, payroll.NewShift(time.Now(), decimal.NewFromInt(8), w.ShiftRate))

	// WHEN: The rate later changes
	w.ShiftRate = decimal.NewFromInt(1000)

	// THEN: The stored amount is unaffected
	assert.True(t, w.Shifts[0].Amount.Equal(decimal.NewFromInt(750)),
		"stored amount must not track rate changes")
}

// =============================================================================
// DERIVED TOTALS
// =============================================================================

func TestDuePay_UnpaidOnly(t *testing.T) {
	// GIVEN: A ledger with a mix of paid and unpaid shifts
	w := payroll.NewWorker("Asha", "+91-900", decimal.NewFromInt(750))
	paid := payroll.NewShift(time.Now(), decimal.NewFromInt(8), w.ShiftRate)
	paid.IsPaid = true
	w.Shifts = append(w.Shifts,
		paid,
		payroll.NewShift(time.Now(), decimal.NewFromInt(8), w.ShiftRate),
		payroll.NewShift(time.Now(), decimal.NewFromInt(4), w.ShiftRate),
	)

	// THEN: Due totals cover only the unpaid entries
	assert.True(t, payroll.DuePay(w).Equal(decimal.NewFromInt(1125)), "750 + 375")
	assert.True(t, payroll.DueHours(w).Equal(decimal.NewFromInt(12)), "8 + 4")
}

func TestDuePay_EmptyLedger(t *testing.T) {
	w := payroll.NewWorker("Asha", "+91-900", decimal.NewFromInt(750))
	assert.True(t, payroll.DuePay(w).IsZero())
	assert.True(t, payroll.DueHours(w).IsZero())
}

func TestLastPaymentDate(t *testing.T) {
	w := payroll.NewWorker("Asha", "+91-900", decimal.NewFromInt(750))
	assert.Nil(t, payroll.LastPaymentDate(w), "never paid")

	first := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	second := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	w.Payments = append(w.Payments,
		payroll.Payment{ID: payroll.NewPaymentID(), Amount: decimal.NewFromInt(750), Date: first},
		payroll.Payment{ID: payroll.NewPaymentID(), Amount: decimal.NewFromInt(375), Date: second},
	)

	got := payroll.LastPaymentDate(w)
	assert.NotNil(t, got)
	assert.Equal(t, second, *got, "last appended payment wins")
}

func TestCountShiftsBetween_FiltersByDateNotPosition(t *testing.T) {
	// Shifts entered out of date order: the count must come from dates.
	w := payroll.NewWorker("Asha", "+91-900", decimal.NewFromInt(750))
	mar := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	jan := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, time.February, 20, 0, 0, 0, 0, time.UTC)
	for _, d := range []time.Time{mar, jan, feb} {
		w.Shifts = append(w.Shifts, payroll.NewShift(d, decimal.NewFromInt(8), w.ShiftRate))
	}

	from := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 2, payroll.CountShiftsBetween(w, from, to))
}
