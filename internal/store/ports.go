// Package store defines the narrow outbound ports the ledger engine talks
// through. Every method is a single round trip touching one table; the
// backing service exposes no cross-table transaction, so atomicity across
// these calls is the engine's problem (see the payment commit saga).
package store

import (
	"context"
	"time"

	"dompet/internal/core"
)

type (
	// DebtStore persists installment rows.
	DebtStore interface {
		// InsertDebts batch-inserts a generated series. A partial failure
		// leaves already-inserted rows in place; the caller observes the
		// error. Documented gap, not a guarantee.
		InsertDebts(ctx context.Context, debts []core.Debt) ([]int64, error)
		GetDebt(ctx context.Context, ownerID string, id int64) (core.Debt, error)
		ListDebts(ctx context.Context, ownerID string) ([]core.Debt, error)
		// UpdateDebtFields patches editable attributes and bumps updated_at.
		UpdateDebtFields(ctx context.Context, d core.Debt) error
		// UpdateDebtAggregates writes the recomputed {paid_total, status}
		// pair in one update.
		UpdateDebtAggregates(ctx context.Context, id int64, paid core.Money, status core.DebtStatus) error
		// UpdateDebtStatus is the separate override write channel. It is
		// never combined with an aggregate write.
		UpdateDebtStatus(ctx context.Context, id int64, status core.DebtStatus) error
		// DeleteDebt removes the row and cascades its payments.
		DeleteDebt(ctx context.Context, ownerID string, id int64) error
	}

	// PaymentStore persists payments applied against debts.
	PaymentStore interface {
		InsertPayment(ctx context.Context, p core.Payment) (int64, error)
		GetPayment(ctx context.Context, ownerID string, id int64) (core.Payment, error)
		DeletePayment(ctx context.Context, id int64) error
		ListPaymentsByDebt(ctx context.Context, debtID int64) ([]core.Payment, error)
		// ListPaymentsBetween returns payments dated in [from, to).
		ListPaymentsBetween(ctx context.Context, ownerID string, from, to time.Time) ([]core.Payment, error)
		// ListUnexportedPayments feeds the export worker's catch-up sweep.
		ListUnexportedPayments(ctx context.Context, limit int) ([]core.Payment, error)
		MarkPaymentExported(ctx context.Context, id int64) error
	}

	// LedgerStore is the boundary to the externally owned transactions and
	// accounts tables. Create/update/delete only, never joins.
	LedgerStore interface {
		InsertTransaction(ctx context.Context, t core.Transaction) (int64, error)
		DeleteTransaction(ctx context.Context, id int64) error
		GetAccount(ctx context.Context, ownerID string, id int64) (core.Account, error)
		// AdjustAccountBalance applies delta cents by read-modify-write.
		// There is no version check: concurrent adjustments on the same
		// account can lose updates. Accepted race.
		AdjustAccountBalance(ctx context.Context, accountID int64, deltaCents int64) error
	}

	// Store is the full backing surface the engine needs.
	Store interface {
		DebtStore
		PaymentStore
		LedgerStore
	}
)
