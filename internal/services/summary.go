package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"dompet/internal/core"
)

// Summary computes the portfolio rollup for one owner. The two backing
// reads (full portfolio, current month's payments) are independent and run
// concurrently; the bucketing itself is pure math in core.
func (s *LedgerService) Summary(ctx context.Context, ownerID string) (core.Summary, error) {
	now := s.now()
	monthStart, nextStart := core.MonthInterval(now)

	var (
		debts    []core.Debt
		payments []core.Payment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		debts, err = s.store.ListDebts(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("list debts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		payments, err = s.store.ListPaymentsBetween(gctx, ownerID, monthStart, nextStart)
		if err != nil {
			return fmt.Errorf("list month payments: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.Summary{}, err
	}

	return core.BuildSummary(debts, payments, now), nil
}
