package services

import (
	"context"
	"testing"
	"time"

	"dompet/internal/core"
	"dompet/internal/store/memory"
)

const testOwner = "local"

// testNow is the fixed instant every engine test runs at.
var testNow = time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC)

func newTestService(st *memory.Store) *LedgerService {
	s := NewLedgerService(st, nil)
	s.now = func() time.Time { return testNow }
	return s
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := core.ParseDate(s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

// seedDebt creates a single-installment debt and returns it.
func seedDebt(t *testing.T, svc *LedgerService, amountCents int64, due string) core.Debt {
	t.Helper()
	in := core.DebtInput{
		Kind:      core.KindDebt,
		PartyName: "Budi",
		Title:     "Cicilan motor",
		Date:      mustDate(t, "2024-01-15"),
		Amount:    core.Money{Cents: amountCents},
	}
	if due != "" {
		d := mustDate(t, due)
		in.DueDate = &d
	}
	debt, err := svc.CreateDebt(context.Background(), testOwner, in)
	if err != nil {
		t.Fatalf("seed debt: %v", err)
	}
	return debt
}

func seedReceivable(t *testing.T, svc *LedgerService, amountCents int64) core.Debt {
	t.Helper()
	debt, err := svc.CreateDebt(context.Background(), testOwner, core.DebtInput{
		Kind:      core.KindReceivable,
		PartyName: "Sari",
		Title:     "Pinjaman",
		Date:      mustDate(t, "2024-01-15"),
		Amount:    core.Money{Cents: amountCents},
	})
	if err != nil {
		t.Fatalf("seed receivable: %v", err)
	}
	return debt
}
