package services

import (
	"context"
	"fmt"
	"log/slog"

	"dompet/internal/core"
)

// CreateDebt expands a creation request into its installment series and
// batch-inserts the rows: one debt per tenor month, each shifted by its
// month index on both date and due date, sharing every other attribute.
// The row with tenor_sequence 1 is re-read and returned as the
// representative record.
//
// The batch is not all-or-nothing: if the store fails partway through, the
// rows inserted before the failure remain and the caller sees the error.
func (s *LedgerService) CreateDebt(ctx context.Context, ownerID string, in core.DebtInput) (core.Debt, error) {
	if err := in.Validate(); err != nil {
		return core.Debt{}, err
	}

	tenor := core.ClampTenor(in.TenorMonths)
	debts := make([]core.Debt, tenor)
	for i := 0; i < tenor; i++ {
		d := core.Debt{
			OwnerID:       ownerID,
			Kind:          in.Kind,
			PartyName:     in.PartyName,
			Title:         in.Title,
			Date:          core.AddMonths(in.Date, i),
			Amount:        in.Amount,
			RatePercent:   in.RatePercent,
			Status:        core.StatusOngoing,
			Notes:         in.Notes,
			TenorMonths:   tenor,
			TenorSequence: i + 1,
		}
		if in.DueDate != nil {
			due := core.AddMonths(*in.DueDate, i)
			d.DueDate = &due
		}
		debts[i] = d
	}

	ids, err := s.store.InsertDebts(ctx, debts)
	if err != nil {
		return core.Debt{}, fmt.Errorf("insert installment series: %w", err)
	}

	slog.InfoContext(ctx, "Installment series created",
		"owner_id", ownerID,
		"kind", in.Kind,
		"party", in.PartyName,
		"tenor_months", tenor,
		"amount_cents", in.Amount.Cents)

	return s.store.GetDebt(ctx, ownerID, ids[0])
}
