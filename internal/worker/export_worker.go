// Package worker exports committed payments to an external sheet. It
// consumes payment events off the queue and also sweeps for rows that were
// committed while the queue or worker was down.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"dompet/internal/amqp"
	"dompet/internal/core"
	"dompet/internal/sheets"
	"dompet/internal/store"
)

type ExportWorker struct {
	store     store.Store
	appender  sheets.PaymentAppender
	batchSize int
}

func NewExportWorker(st store.Store, appender sheets.PaymentAppender, batchSize int) *ExportWorker {
	return &ExportWorker{
		store:     st,
		appender:  appender,
		batchSize: batchSize,
	}
}

// HandlePaymentEvent processes one queue message. Deleted events only need
// an ack: the row is gone, there is nothing to export.
func (w *ExportWorker) HandlePaymentEvent(ctx context.Context, msg *amqp.PaymentEventMessage) error {
	if msg.Event != amqp.EventRecorded {
		slog.InfoContext(ctx, "Ignoring payment event", "event", msg.Event, "payment_id", msg.PaymentID)
		return nil
	}
	return w.exportByID(ctx, msg.PaymentID)
}

// SweepPending exports payments committed while the queue was unavailable.
func (w *ExportWorker) SweepPending(ctx context.Context) error {
	payments, err := w.store.ListUnexportedPayments(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list unexported payments: %w", err)
	}
	if len(payments) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Sweeping pending payment exports", "count", len(payments))

	for _, p := range payments {
		if err := w.export(ctx, p); err != nil {
			slog.ErrorContext(ctx, "Failed to export payment",
				"payment_id", p.ID, "error", err)
			// Keep going; the row stays pending for the next sweep.
		}
	}
	return nil
}

func (w *ExportWorker) exportByID(ctx context.Context, paymentID int64) error {
	payments, err := w.store.ListUnexportedPayments(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list unexported payments: %w", err)
	}
	for _, p := range payments {
		if p.ID == paymentID {
			return w.export(ctx, p)
		}
	}
	// Already exported or deleted meanwhile; nothing to do.
	slog.InfoContext(ctx, "Payment not pending export", "payment_id", paymentID)
	return nil
}

func (w *ExportWorker) export(ctx context.Context, p core.Payment) error {
	d, err := w.store.GetDebt(ctx, p.OwnerID, p.DebtID)
	if err != nil {
		return fmt.Errorf("load owning debt: %w", err)
	}

	row := sheets.ExportRow{
		PaymentID: p.ID,
		DebtTitle: d.Title,
		PartyName: d.PartyName,
		Kind:      string(d.Kind),
		Date:      core.FormatDate(p.Date),
		Amount:    p.Amount.Rupiah(),
		Notes:     p.Notes,
	}
	if err := w.appender.AppendPayment(ctx, row); err != nil {
		return fmt.Errorf("append payment %d: %w", p.ID, err)
	}

	if err := w.store.MarkPaymentExported(ctx, p.ID); err != nil {
		// The append succeeded; a failed mark means the next sweep appends a
		// duplicate row. Logged rather than retried.
		slog.ErrorContext(ctx, "Failed to mark payment exported",
			"payment_id", p.ID, "error", err)
		return nil
	}
	return nil
}
