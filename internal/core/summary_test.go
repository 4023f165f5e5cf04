package core

import (
	"testing"
	"time"
)

func dueOn(s string) *time.Time {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return &d
}

func TestBuildSummaryMonthBuckets(t *testing.T) {
	now := time.Date(2024, 2, 10, 8, 0, 0, 0, time.UTC)

	debts := []Debt{
		// Due on the last day of February: this-month bucket only, never
		// double counted into March.
		{Kind: KindDebt, Amount: Money{Cents: 50000}, Status: StatusOngoing, DueDate: dueOn("2024-02-29")},
		// Due on March 1st: next-month bucket.
		{Kind: KindDebt, Amount: Money{Cents: 30000}, Status: StatusOngoing, DueDate: dueOn("2024-03-01")},
		// Due in April: outside both buckets.
		{Kind: KindDebt, Amount: Money{Cents: 20000}, Status: StatusOngoing, DueDate: dueOn("2024-04-10")},
		// No due date: totals only.
		{Kind: KindDebt, Amount: Money{Cents: 10000}, Status: StatusOngoing},
	}

	s := BuildSummary(debts, nil, now)

	if s.TotalDebt.Cents != 110000 {
		t.Fatalf("TotalDebt expected 110000, got %d", s.TotalDebt.Cents)
	}
	if s.DebtDueThisMonth.Cents != 50000 {
		t.Fatalf("DebtDueThisMonth expected 50000, got %d", s.DebtDueThisMonth.Cents)
	}
	if s.DebtDueNextMonth.Cents != 30000 {
		t.Fatalf("DebtDueNextMonth expected 30000, got %d", s.DebtDueNextMonth.Cents)
	}
}

func TestBuildSummaryRemainingNotFace(t *testing.T) {
	now := time.Date(2024, 2, 10, 8, 0, 0, 0, time.UTC)

	debts := []Debt{
		{Kind: KindDebt, Amount: Money{Cents: 100000}, PaidTotal: Money{Cents: 40000}, Status: StatusOngoing, DueDate: dueOn("2024-02-20")},
	}

	s := BuildSummary(debts, nil, now)
	if s.TotalDebt.Cents != 60000 {
		t.Fatalf("TotalDebt expected remaining 60000, got %d", s.TotalDebt.Cents)
	}
	if s.DebtDueThisMonth.Cents != 60000 {
		t.Fatalf("DebtDueThisMonth expected remaining 60000, got %d", s.DebtDueThisMonth.Cents)
	}
}

func TestBuildSummaryDueSoon(t *testing.T) {
	now := time.Date(2024, 2, 10, 8, 0, 0, 0, time.UTC)

	debts := []Debt{
		// Within the seven-day window.
		{Kind: KindDebt, Amount: Money{Cents: 10000}, Status: StatusOngoing, DueDate: dueOn("2024-02-12")},
		// Exactly on the window's last day still counts: the bound is
		// pushed to end of day.
		{Kind: KindDebt, Amount: Money{Cents: 20000}, Status: StatusOngoing, DueDate: dueOn("2024-02-17")},
		// Receivables due soon count too.
		{Kind: KindReceivable, Amount: Money{Cents: 5000}, Status: StatusOngoing, DueDate: dueOn("2024-02-13")},
		// Beyond the window.
		{Kind: KindDebt, Amount: Money{Cents: 40000}, Status: StatusOngoing, DueDate: dueOn("2024-02-18")},
		// Paid debts never surface as due soon.
		{Kind: KindDebt, Amount: Money{Cents: 80000}, PaidTotal: Money{Cents: 80000}, Status: StatusPaid, DueDate: dueOn("2024-02-12")},
	}

	s := BuildSummary(debts, nil, now)
	if s.DueSoon.Cents != 35000 {
		t.Fatalf("DueSoon expected 35000, got %d", s.DueSoon.Cents)
	}
	// Receivables stay out of the debt month buckets.
	if s.DebtDueThisMonth.Cents != 70000 {
		t.Fatalf("DebtDueThisMonth expected 70000, got %d", s.DebtDueThisMonth.Cents)
	}
	if s.TotalReceivable.Cents != 5000 {
		t.Fatalf("TotalReceivable expected 5000, got %d", s.TotalReceivable.Cents)
	}
}

func TestBuildSummaryPaidThisMonth(t *testing.T) {
	now := time.Date(2024, 2, 10, 8, 0, 0, 0, time.UTC)

	pay := func(day string, cents int64) Payment {
		d, _ := ParseDate(day)
		return Payment{Amount: Money{Cents: cents}, Date: d}
	}

	payments := []Payment{
		pay("2024-02-01", 10000),
		pay("2024-02-29", 20000),
		// Outside the month, filtered even if the store over-returns.
		pay("2024-03-01", 40000),
		pay("2024-01-31", 80000),
	}

	s := BuildSummary(nil, payments, now)
	if s.TotalPaidThisMonth.Cents != 30000 {
		t.Fatalf("TotalPaidThisMonth expected 30000, got %d", s.TotalPaidThisMonth.Cents)
	}
}
