package core

import "time"

// DeriveStatus is the pure lifecycle function of (amount, paid, due, now).
//
//	paid    when the paid total covers the amount
//	overdue when a due date is set and already past
//	ongoing otherwise
//
// Amounts are integer cents so the covered check is exact; no rounding
// epsilon is needed.
// User-intent overrides (mark as paid, unmark) are not part of this
// function: they are applied as a separate, later status write so the
// override always lands on freshly recomputed state.
func DeriveStatus(amount, paid Money, due *time.Time, now time.Time) DebtStatus {
	if paid.Cents >= amount.Cents {
		return StatusPaid
	}
	if due != nil && due.Before(now) {
		return StatusOverdue
	}
	return StatusOngoing
}
