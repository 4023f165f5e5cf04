// Package services implements the debt ledger engine: installment series
// creation, the payment commit and reversal protocols, aggregate
// recalculation and the portfolio summary.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dompet/internal/core"
	"dompet/internal/store"
)

// EventPublisher is the side channel for export events. Publishing failures
// never fail the primary operation.
type EventPublisher interface {
	PublishPaymentRecorded(ctx context.Context, paymentID int64) error
	PublishPaymentDeleted(ctx context.Context, paymentID int64) error
}

// LedgerService orchestrates the debt and payment operations against the
// backing store. One instance is shared by the HTTP layer and the workers.
type LedgerService struct {
	store  store.Store
	events EventPublisher

	// now is injectable so status derivation and summary bucketing are
	// testable at fixed instants.
	now func() time.Time
}

func NewLedgerService(st store.Store, events EventPublisher) *LedgerService {
	return &LedgerService{
		store:  st,
		events: events,
		now:    time.Now,
	}
}

// GetDebt returns one debt row for the owner.
func (s *LedgerService) GetDebt(ctx context.Context, ownerID string, id int64) (core.Debt, error) {
	return s.store.GetDebt(ctx, ownerID, id)
}

// ListDebts returns the owner's full portfolio.
func (s *LedgerService) ListDebts(ctx context.Context, ownerID string) ([]core.Debt, error) {
	return s.store.ListDebts(ctx, ownerID)
}

// ListPayments returns the payment history of one debt.
func (s *LedgerService) ListPayments(ctx context.Context, ownerID string, debtID int64) ([]core.Payment, error) {
	if _, err := s.store.GetDebt(ctx, ownerID, debtID); err != nil {
		return nil, err
	}
	return s.store.ListPaymentsByDebt(ctx, debtID)
}

// UpdateDebt applies a partial patch. When the patch carries an explicit
// status it is written through the override channel and recomputation is
// suppressed; otherwise status is recomputed if the amount or due date
// changed.
func (s *LedgerService) UpdateDebt(ctx context.Context, ownerID string, id int64, patch core.DebtUpdate) (core.Debt, error) {
	d, err := s.store.GetDebt(ctx, ownerID, id)
	if err != nil {
		return core.Debt{}, err
	}

	recompute := false
	if patch.PartyName != nil {
		d.PartyName = *patch.PartyName
	}
	if patch.Title != nil {
		d.Title = *patch.Title
	}
	if patch.Date != nil {
		d.Date = *patch.Date
	}
	if patch.ClearDue {
		d.DueDate = nil
		recompute = true
	} else if patch.DueDate != nil {
		d.DueDate = patch.DueDate
		recompute = true
	}
	if patch.Amount != nil {
		if err := patch.Amount.Validate(); err != nil {
			return core.Debt{}, err
		}
		d.Amount = *patch.Amount
		recompute = true
	}
	if patch.RatePercent != nil {
		rate := core.ClampPercent(*patch.RatePercent)
		d.RatePercent = &rate
	}
	if patch.Notes != nil {
		d.Notes = *patch.Notes
	}
	if patch.TenorMonths != nil {
		d.TenorMonths = core.ClampTenor(*patch.TenorMonths)
	}

	if err := s.store.UpdateDebtFields(ctx, d); err != nil {
		return core.Debt{}, fmt.Errorf("update debt: %w", err)
	}

	if patch.Status != nil {
		// Explicit user intent wins over derivation, always written as a
		// separate later update.
		if err := s.store.UpdateDebtStatus(ctx, id, *patch.Status); err != nil {
			return core.Debt{}, fmt.Errorf("override status: %w", err)
		}
		return s.store.GetDebt(ctx, ownerID, id)
	}

	if recompute {
		return s.Recalculate(ctx, ownerID, id)
	}
	return s.store.GetDebt(ctx, ownerID, id)
}

// DeleteDebt removes a debt and cascades its payments.
func (s *LedgerService) DeleteDebt(ctx context.Context, ownerID string, id int64) error {
	if err := s.store.DeleteDebt(ctx, ownerID, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Debt deleted", "debt_id", id, "owner_id", ownerID)
	return nil
}

func (s *LedgerService) publishRecorded(ctx context.Context, paymentID int64) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishPaymentRecorded(ctx, paymentID); err != nil {
		// The payment is committed; export will catch up via the sweep.
		slog.ErrorContext(ctx, "Failed to publish payment event",
			"payment_id", paymentID, "error", err)
	}
}

func (s *LedgerService) publishDeleted(ctx context.Context, paymentID int64) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishPaymentDeleted(ctx, paymentID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish payment delete event",
			"payment_id", paymentID, "error", err)
	}
}
