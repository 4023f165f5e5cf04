// Package sheets defines the outbound port for payment export and its
// Google Sheets implementation.
package sheets

import "context"

// ExportRow is one payment rendered for the export sheet.
type ExportRow struct {
	PaymentID int64
	DebtTitle string
	PartyName string
	Kind      string
	Date      string
	Amount    float64
	Notes     string
}

// PaymentAppender appends export rows to an external sheet.
type PaymentAppender interface {
	AppendPayment(ctx context.Context, row ExportRow) error
}
