/*
calculator.go - Derived payroll queries

PURPOSE:
  Pure read-side computation over a worker's ledger. Due pay and due hours
  are the sums over unpaid shifts only; they are recomputed on every read
  and never stored on the worker record.

WHY NO CACHE:
  A cached aggregate can go stale the moment the ledger mutates. At the
  scale this system targets (at most thousands of shifts per worker) the
  O(shifts) walk is cheap, so correctness wins. If a cache is ever added it
  must be invalidated synchronously on every ledger mutation.

ROUNDING:
  Shift amounts round half away from zero to whole currency units at entry
  time: 750/8h -> 750, 4h -> 375, 6h -> 563. The stored amount is the
  amount; nothing downstream re-rounds.

SEE ALSO:
  - types.go: Worker/Shift/Payment model
  - settlement.go: Consumes DuePay at settlement time
*/
package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShiftAmount pro-rates the full-shift rate linearly over the worked hours
// and rounds to whole currency units.
func ShiftAmount(rate, hours decimal.Decimal) decimal.Decimal {
	return rate.Div(DefaultShiftHours).Mul(hours).Round(0)
}

// DuePay returns the sum of amounts over unpaid shifts.
func DuePay(w *Worker) decimal.Decimal {
	total := decimal.Zero
	for _, s := range w.Shifts {
		if !s.IsPaid {
			total = total.Add(s.Amount)
		}
	}
	return total
}

// DueHours returns the sum of hours over unpaid shifts.
func DueHours(w *Worker) decimal.Decimal {
	total := decimal.Zero
	for _, s := range w.Shifts {
		if !s.IsPaid {
			total = total.Add(s.Hours)
		}
	}
	return total
}

// LastPaymentDate returns the date of the most recently appended payment,
// or nil when the worker has never been paid. Payments are appended
// chronologically by settlement, so the last element is the latest.
func LastPaymentDate(w *Worker) *time.Time {
	if len(w.Payments) == 0 {
		return nil
	}
	d := w.Payments[len(w.Payments)-1].Date
	return &d
}

// CountShiftsBetween returns how many shifts fall inside [from, to],
// inclusive. Ledger position is entry order, so this always filters by
// date rather than trusting storage order.
func CountShiftsBetween(w *Worker, from, to time.Time) int {
	n := 0
	for _, s := range w.Shifts {
		if !s.Date.Before(from) && !s.Date.After(to) {
			n++
		}
	}
	return n
}
