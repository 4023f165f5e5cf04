package services

import (
	"context"
	"errors"
	"testing"

	"dompet/internal/core"
	"dompet/internal/store/memory"
)

func TestRecalculatePaidTotalIsPaymentSum(t *testing.T) {
	st := memory.New()
	svc := newTestService(st)
	d := seedDebt(t, svc, 100000, "")

	for _, cents := range []int64{10000, 25000} {
		if _, _, err := svc.RecordPayment(context.Background(), testOwner, d.ID, core.PaymentInput{
			Amount: core.Money{Cents: cents},
			Date:   mustDate(t, "2024-02-01"),
		}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	got, err := svc.Recalculate(context.Background(), testOwner, d.ID)
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	if got.PaidTotal.Cents != 35000 {
		t.Fatalf("expected paid total 35000, got %d", got.PaidTotal.Cents)
	}
	if got.Status != core.StatusOngoing {
		t.Fatalf("expected ongoing, got %s", got.Status)
	}
}

func TestRecalculateIdempotent(t *testing.T) {
	svc := newTestService(memory.New())
	d := seedDebt(t, svc, 100000, "")

	if _, _, err := svc.RecordPayment(context.Background(), testOwner, d.ID, core.PaymentInput{
		Amount: core.Money{Cents: 40000},
		Date:   mustDate(t, "2024-02-01"),
	}); err != nil {
		t.Fatalf("record: %v", err)
	}

	first, err := svc.Recalculate(context.Background(), testOwner, d.ID)
	if err != nil {
		t.Fatalf("first replay: %v", err)
	}
	second, err := svc.Recalculate(context.Background(), testOwner, d.ID)
	if err != nil {
		t.Fatalf("second replay: %v", err)
	}
	if first.PaidTotal != second.PaidTotal || first.Status != second.Status {
		t.Fatalf("replay is not idempotent: %+v vs %+v", first, second)
	}
}

func TestRecalculateHealsDriftedAggregate(t *testing.T) {
	st := memory.New()
	svc := newTestService(st)
	d := seedDebt(t, svc, 100000, "")

	if _, _, err := svc.RecordPayment(context.Background(), testOwner, d.ID, core.PaymentInput{
		Amount: core.Money{Cents: 30000},
		Date:   mustDate(t, "2024-02-01"),
	}); err != nil {
		t.Fatalf("record: %v", err)
	}

	// Corrupt the stored aggregate directly; the next replay must restore
	// the sum of the payment history.
	if err := st.UpdateDebtAggregates(context.Background(), d.ID, core.Money{Cents: 999}, core.StatusPaid); err != nil {
		t.Fatalf("corrupt: %v", err)
	}

	got, err := svc.Recalculate(context.Background(), testOwner, d.ID)
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	if got.PaidTotal.Cents != 30000 {
		t.Fatalf("expected healed paid total 30000, got %d", got.PaidTotal.Cents)
	}
	if got.Status != core.StatusOngoing {
		t.Fatalf("expected healed status ongoing, got %s", got.Status)
	}
}

func TestRecalculateDerivesOverdue(t *testing.T) {
	svc := newTestService(memory.New())
	// Due before the fixed test instant.
	d := seedDebt(t, svc, 100000, "2024-02-01")

	got, err := svc.Recalculate(context.Background(), testOwner, d.ID)
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	if got.Status != core.StatusOverdue {
		t.Fatalf("expected overdue, got %s", got.Status)
	}
}

func TestRecalculateListFailure(t *testing.T) {
	st := memory.New()
	svc := newTestService(st)
	d := seedDebt(t, svc, 100000, "")

	boom := errors.New("read failed")
	st.FailOn(memory.OpListPayments, boom)

	if _, err := svc.Recalculate(context.Background(), testOwner, d.ID); !errors.Is(err, boom) {
		t.Fatalf("expected the store error, got %v", err)
	}
}
