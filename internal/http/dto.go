package http

import (
	"encoding/json"
	"strconv"
	"strings"

	"dompet/internal/core"
)

// jsonAmount accepts a monetary amount as either a JSON number or a string
// with local separator conventions ("1.250.000,50").
type jsonAmount struct {
	raw string
}

func (a *jsonAmount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if len(s) >= 2 && s[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		a.raw = v
		return nil
	}
	a.raw = s
	return nil
}

func (a jsonAmount) Cents() (int64, error) {
	return core.ParseDecimalToCents(a.raw)
}

type createDebtRequest struct {
	Kind        string     `json:"type"`
	PartyName   string     `json:"party_name"`
	Title       string     `json:"title"`
	Date        string     `json:"date"`
	DueDate     string     `json:"due_date,omitempty"`
	Amount      jsonAmount `json:"amount"`
	RatePercent *float64   `json:"rate_percent,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	TenorMonths int        `json:"tenor_months"`
}

type updateDebtRequest struct {
	PartyName   *string     `json:"party_name,omitempty"`
	Title       *string     `json:"title,omitempty"`
	Date        *string     `json:"date,omitempty"`
	DueDate     *string     `json:"due_date,omitempty"`
	Amount      *jsonAmount `json:"amount,omitempty"`
	RatePercent *float64    `json:"rate_percent,omitempty"`
	Notes       *string     `json:"notes,omitempty"`
	TenorMonths *int        `json:"tenor_months,omitempty"`
	Status      *string     `json:"status,omitempty"`
}

type recordPaymentRequest struct {
	Amount       jsonAmount `json:"amount"`
	Date         string     `json:"date"`
	Notes        string     `json:"notes,omitempty"`
	AccountID    int64      `json:"account_id,omitempty"`
	CategoryID   *int64     `json:"category_id,omitempty"`
	MarkAsPaid   bool       `json:"mark_as_paid,omitempty"`
	AllowOverpay bool       `json:"allow_overpay,omitempty"`
}

type debtRecord struct {
	ID            int64    `json:"id"`
	Kind          string   `json:"type"`
	PartyName     string   `json:"party_name"`
	Title         string   `json:"title"`
	Date          string   `json:"date"`
	DueDate       *string  `json:"due_date"`
	Amount        float64  `json:"amount"`
	RatePercent   *float64 `json:"rate_percent"`
	PaidTotal     float64  `json:"paid_total"`
	Remaining     float64  `json:"remaining"`
	Status        string   `json:"status"`
	Notes         string   `json:"notes"`
	TenorMonths   int      `json:"tenor_months"`
	TenorSequence int      `json:"tenor_sequence"`
}

type paymentRecord struct {
	ID            int64   `json:"id"`
	DebtID        int64   `json:"debt_id"`
	Amount        float64 `json:"amount"`
	Date          string  `json:"date"`
	Notes         string  `json:"notes"`
	AccountID     *int64  `json:"account_id"`
	TransactionID *int64  `json:"transaction_id"`
}

type paymentResult struct {
	Debt    debtRecord    `json:"debt"`
	Payment paymentRecord `json:"payment"`
}

type summaryResponse struct {
	TotalDebt          float64 `json:"totalDebt"`
	DebtDueThisMonth   float64 `json:"debtDueThisMonth"`
	DebtDueNextMonth   float64 `json:"debtDueNextMonth"`
	TotalReceivable    float64 `json:"totalReceivable"`
	TotalPaidThisMonth float64 `json:"totalPaidThisMonth"`
	DueSoon            float64 `json:"dueSoon"`
}

func toDebtRecord(d core.Debt) debtRecord {
	rec := debtRecord{
		ID:            d.ID,
		Kind:          string(d.Kind),
		PartyName:     d.PartyName,
		Title:         d.Title,
		Date:          core.FormatDate(d.Date),
		Amount:        d.Amount.Rupiah(),
		RatePercent:   d.RatePercent,
		PaidTotal:     d.PaidTotal.Rupiah(),
		Remaining:     d.Remaining().Rupiah(),
		Status:        string(d.Status),
		Notes:         d.Notes,
		TenorMonths:   d.TenorMonths,
		TenorSequence: d.TenorSequence,
	}
	if d.DueDate != nil {
		due := core.FormatDate(*d.DueDate)
		rec.DueDate = &due
	}
	return rec
}

func toPaymentRecord(p core.Payment) paymentRecord {
	return paymentRecord{
		ID:            p.ID,
		DebtID:        p.DebtID,
		Amount:        p.Amount.Rupiah(),
		Date:          core.FormatDate(p.Date),
		Notes:         p.Notes,
		AccountID:     p.AccountID,
		TransactionID: p.TransactionID,
	}
}

func toSummaryResponse(s core.Summary) summaryResponse {
	return summaryResponse{
		TotalDebt:          s.TotalDebt.Rupiah(),
		DebtDueThisMonth:   s.DebtDueThisMonth.Rupiah(),
		DebtDueNextMonth:   s.DebtDueNextMonth.Rupiah(),
		TotalReceivable:    s.TotalReceivable.Rupiah(),
		TotalPaidThisMonth: s.TotalPaidThisMonth.Rupiah(),
		DueSoon:            s.DueSoon.Rupiah(),
	}
}

func pathID(r interface{ PathValue(string) string }, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}
