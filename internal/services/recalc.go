package services

import (
	"context"
	"fmt"

	"dompet/internal/core"
)

// Recalculate replays a debt's full payment history: it re-reads the debt
// row and all of its payments, sums the amounts into a fresh paid total,
// derives the status from the stored due date, and writes the
// {paid_total, status} pair back in one update.
//
// Full replay instead of incremental counters is deliberate: correctness
// depends only on the payment set, never on mutation order, so a missed or
// duplicated write heals itself on the next recalculation.
func (s *LedgerService) Recalculate(ctx context.Context, ownerID string, debtID int64) (core.Debt, error) {
	d, err := s.store.GetDebt(ctx, ownerID, debtID)
	if err != nil {
		return core.Debt{}, err
	}

	payments, err := s.store.ListPaymentsByDebt(ctx, debtID)
	if err != nil {
		return core.Debt{}, fmt.Errorf("list payments: %w", err)
	}

	var paid core.Money
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}

	status := core.DeriveStatus(d.Amount, paid, d.DueDate, s.now())
	if err := s.store.UpdateDebtAggregates(ctx, debtID, paid, status); err != nil {
		return core.Debt{}, fmt.Errorf("write aggregates: %w", err)
	}

	return s.store.GetDebt(ctx, ownerID, debtID)
}
