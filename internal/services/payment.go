package services

import (
	"context"
	"fmt"
	"log/slog"

	"dompet/internal/core"
)

// RecordPayment commits a standalone payment (no cash-ledger mirroring):
// validate, insert the payment row, replay aggregates, then apply the
// mark-as-paid override when requested. Returns the refreshed debt together
// with the created payment.
func (s *LedgerService) RecordPayment(ctx context.Context, ownerID string, debtID int64, in core.PaymentInput) (core.Debt, core.Payment, error) {
	d, err := s.validatePayment(ctx, ownerID, debtID, in)
	if err != nil {
		return core.Debt{}, core.Payment{}, err
	}

	payment := core.Payment{
		DebtID:  d.ID,
		OwnerID: ownerID,
		Amount:  in.Amount,
		Date:    core.StartOfDay(in.Date),
		Notes:   in.Notes,
	}
	id, err := s.store.InsertPayment(ctx, payment)
	if err != nil {
		return core.Debt{}, core.Payment{}, fmt.Errorf("insert payment: %w", err)
	}
	payment.ID = id

	refreshed, err := s.Recalculate(ctx, ownerID, debtID)
	if err != nil {
		// The payment row is committed; the next replay heals aggregates.
		return core.Debt{}, core.Payment{}, fmt.Errorf("recalculate after payment: %w", err)
	}

	refreshed, err = s.applyMarkAsPaid(ctx, ownerID, refreshed, in.MarkAsPaid)
	if err != nil {
		return core.Debt{}, core.Payment{}, err
	}

	slog.InfoContext(ctx, "Payment recorded",
		"debt_id", debtID,
		"payment_id", payment.ID,
		"amount_cents", payment.Amount.Cents,
		"status", refreshed.Status)

	s.publishRecorded(ctx, payment.ID)
	return refreshed, payment, nil
}

// RecordMirroredPayment commits a payment that also creates a cash-ledger
// transaction and adjusts the account balance. The three writes cannot be
// wrapped in a store transaction, so they run as an ordered saga:
//
//	1. insert mirrored transaction
//	2. adjust account balance
//	3. insert payment row (carrying both links)
//	4. replay aggregates and apply the override
//
// A failure at any step unwinds everything applied so far in reverse order
// before the original error is returned, which guarantees no payment ever
// survives with a transaction/account pair that did not fully commit.
func (s *LedgerService) RecordMirroredPayment(ctx context.Context, ownerID string, debtID int64, in core.MirroredPaymentInput) (core.Debt, core.Payment, error) {
	if in.AccountID == 0 {
		return core.Debt{}, core.Payment{}, core.ErrAccountRequired
	}
	d, err := s.validatePayment(ctx, ownerID, debtID, in.PaymentInput)
	if err != nil {
		return core.Debt{}, core.Payment{}, err
	}

	txType := d.Kind.MirrorType()
	if txType == core.TypeExpense && in.CategoryID == nil {
		return core.Debt{}, core.Payment{}, core.ErrCategoryRequired
	}

	// Account existence is checked before the first write so a bad id fails
	// with zero side effects.
	if _, err := s.store.GetAccount(ctx, ownerID, in.AccountID); err != nil {
		return core.Debt{}, core.Payment{}, err
	}

	delta := d.Kind.BalanceDelta(in.Amount)
	date := core.StartOfDay(in.Date)

	var (
		txID      int64
		payment   core.Payment
		refreshed core.Debt
	)

	steps := []sagaStep{
		{
			name: "insert mirrored transaction",
			run: func(ctx context.Context) error {
				id, err := s.store.InsertTransaction(ctx, core.Transaction{
					OwnerID:    ownerID,
					Type:       txType,
					Title:      core.MirrorTitle(d.Kind, d.Title, d.PartyName),
					Amount:     in.Amount,
					Date:       date,
					AccountID:  in.AccountID,
					CategoryID: in.CategoryID,
				})
				txID = id
				return err
			},
			compensate: func(ctx context.Context) error {
				return s.store.DeleteTransaction(ctx, txID)
			},
		},
		{
			name: "adjust account balance",
			run: func(ctx context.Context) error {
				return s.store.AdjustAccountBalance(ctx, in.AccountID, delta)
			},
			compensate: func(ctx context.Context) error {
				return s.store.AdjustAccountBalance(ctx, in.AccountID, -delta)
			},
		},
		{
			name: "insert payment",
			run: func(ctx context.Context) error {
				accountID := in.AccountID
				payment = core.Payment{
					DebtID:        d.ID,
					OwnerID:       ownerID,
					Amount:        in.Amount,
					Date:          date,
					Notes:         in.Notes,
					AccountID:     &accountID,
					TransactionID: &txID,
				}
				id, err := s.store.InsertPayment(ctx, payment)
				payment.ID = id
				return err
			},
			compensate: func(ctx context.Context) error {
				return s.store.DeletePayment(ctx, payment.ID)
			},
		},
		{
			name: "recalculate aggregates",
			run: func(ctx context.Context) error {
				var err error
				refreshed, err = s.Recalculate(ctx, ownerID, debtID)
				if err != nil {
					return err
				}
				refreshed, err = s.applyMarkAsPaid(ctx, ownerID, refreshed, in.MarkAsPaid)
				return err
			},
		},
	}

	if err := runSaga(ctx, steps); err != nil {
		return core.Debt{}, core.Payment{}, fmt.Errorf("mirrored payment: %w", err)
	}

	slog.InfoContext(ctx, "Mirrored payment recorded",
		"debt_id", debtID,
		"payment_id", payment.ID,
		"transaction_id", txID,
		"account_id", in.AccountID,
		"type", txType,
		"amount_cents", in.Amount.Cents)

	s.publishRecorded(ctx, payment.ID)
	return refreshed, payment, nil
}

// RemovePayment deletes a payment and recalculates the owning debt. With
// withRollback, a mirrored payment's transaction is deleted and its balance
// effect inverted; failures of that cleanup are logged and swallowed because
// the payment deletion has already committed and the caller must not be
// blocked by cleanup noise.
func (s *LedgerService) RemovePayment(ctx context.Context, ownerID string, paymentID int64, withRollback bool) (core.Debt, error) {
	p, err := s.store.GetPayment(ctx, ownerID, paymentID)
	if err != nil {
		return core.Debt{}, err
	}

	if err := s.store.DeletePayment(ctx, p.ID); err != nil {
		return core.Debt{}, fmt.Errorf("delete payment: %w", err)
	}

	if withRollback && p.Mirrored() {
		s.rollbackMirror(ctx, ownerID, p)
	}

	refreshed, err := s.Recalculate(ctx, ownerID, p.DebtID)
	if err != nil {
		return core.Debt{}, fmt.Errorf("recalculate after removal: %w", err)
	}

	slog.InfoContext(ctx, "Payment removed",
		"payment_id", p.ID,
		"debt_id", p.DebtID,
		"with_rollback", withRollback)

	s.publishDeleted(ctx, p.ID)
	return refreshed, nil
}

// rollbackMirror undoes a removed payment's cash-ledger side effects. The
// owning debt is re-fetched to determine the balance sign.
func (s *LedgerService) rollbackMirror(ctx context.Context, ownerID string, p core.Payment) {
	d, err := s.store.GetDebt(ctx, ownerID, p.DebtID)
	if err != nil {
		slog.ErrorContext(ctx, "Mirror rollback skipped, owning debt unavailable",
			"payment_id", p.ID, "debt_id", p.DebtID, "error", err)
		return
	}

	if err := s.store.DeleteTransaction(ctx, *p.TransactionID); err != nil {
		slog.ErrorContext(ctx, "Failed to delete mirrored transaction",
			"payment_id", p.ID, "transaction_id", *p.TransactionID, "error", err)
	}

	if err := s.store.AdjustAccountBalance(ctx, *p.AccountID, -d.Kind.BalanceDelta(p.Amount)); err != nil {
		slog.ErrorContext(ctx, "Failed to reverse balance effect",
			"payment_id", p.ID, "account_id", *p.AccountID, "error", err)
	}
}

// validatePayment runs the shared fail-fast checks of both commit entry
// points: positive amount, usable date, debt ownership and the overpay
// guard against remaining-before.
func (s *LedgerService) validatePayment(ctx context.Context, ownerID string, debtID int64, in core.PaymentInput) (core.Debt, error) {
	if err := in.Amount.Validate(); err != nil {
		return core.Debt{}, err
	}
	if in.Date.IsZero() {
		return core.Debt{}, core.ErrInvalidDate
	}
	d, err := s.store.GetDebt(ctx, ownerID, debtID)
	if err != nil {
		return core.Debt{}, err
	}
	if !in.AllowOverpay && in.Amount.Cents > d.Remaining().Cents {
		return core.Debt{}, core.ErrOverpay
	}
	return d, nil
}

// applyMarkAsPaid forces status to paid on user intent, as a separate write
// after recomputation so the override always lands on fresh state.
func (s *LedgerService) applyMarkAsPaid(ctx context.Context, ownerID string, d core.Debt, mark bool) (core.Debt, error) {
	if !mark || d.Status == core.StatusPaid {
		return d, nil
	}
	if err := s.store.UpdateDebtStatus(ctx, d.ID, core.StatusPaid); err != nil {
		return core.Debt{}, fmt.Errorf("mark as paid: %w", err)
	}
	return s.store.GetDebt(ctx, ownerID, d.ID)
}
