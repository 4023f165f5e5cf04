package core

import "time"

// Summary is the portfolio-level rollup shown on the dashboard.
type Summary struct {
	TotalDebt          Money
	DebtDueThisMonth   Money
	DebtDueNextMonth   Money
	TotalReceivable    Money
	TotalPaidThisMonth Money
	DueSoon            Money
}

// dueSoonWindow is how far ahead a due date counts as "due soon".
const dueSoonWindow = 7 * 24 * time.Hour

// BuildSummary folds a debt portfolio and the current month's payments into
// the dashboard totals. All month buckets use half-open [start, next)
// intervals so a due date on a month boundary lands in exactly one bucket.
func BuildSummary(debts []Debt, monthPayments []Payment, now time.Time) Summary {
	var s Summary

	thisStart, nextStart := MonthInterval(now)
	nextEnd := nextStart.AddDate(0, 1, 0)
	soonBound := EndOfDay(now.Add(dueSoonWindow))

	for _, d := range debts {
		remaining := d.Remaining()
		switch d.Kind {
		case KindDebt:
			s.TotalDebt = s.TotalDebt.Add(remaining)
		case KindReceivable:
			s.TotalReceivable = s.TotalReceivable.Add(remaining)
		}

		if d.Status == StatusPaid || d.DueDate == nil {
			continue
		}
		due := *d.DueDate

		// Due-soon spans both kinds; the month buckets track debts only.
		if !due.After(soonBound) {
			s.DueSoon = s.DueSoon.Add(remaining)
		}
		if d.Kind != KindDebt {
			continue
		}
		if InInterval(due, thisStart, nextStart) {
			s.DebtDueThisMonth = s.DebtDueThisMonth.Add(remaining)
		} else if InInterval(due, nextStart, nextEnd) {
			s.DebtDueNextMonth = s.DebtDueNextMonth.Add(remaining)
		}
	}

	for _, p := range monthPayments {
		if InInterval(p.Date, thisStart, nextStart) {
			s.TotalPaidThisMonth = s.TotalPaidThisMonth.Add(p.Amount)
		}
	}

	return s
}
