package core

import (
	"strings"
	"time"
)

const (
	// MaxTenorMonths caps how many installments one agreement can be split into.
	MaxTenorMonths = 36
	// MaxTitleLen bounds free-text titles and party names.
	MaxTitleLen = 200
)

type (
	// DebtKind distinguishes money the owner owes from money owed to them.
	DebtKind string

	// DebtStatus is the lifecycle state derived by the status machine.
	DebtStatus string

	// TransactionType is the cash-flow direction of a mirrored transaction.
	TransactionType string
)

const (
	KindDebt       DebtKind = "debt"
	KindReceivable DebtKind = "receivable"

	StatusOngoing DebtStatus = "ongoing"
	StatusPaid    DebtStatus = "paid"
	StatusOverdue DebtStatus = "overdue"

	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// Debt is one installment obligation: a single slice of a possibly
// multi-month series, not the whole agreement.
type Debt struct {
	ID            int64
	OwnerID       string
	Kind          DebtKind
	PartyName     string
	Title         string
	Date          time.Time
	DueDate       *time.Time
	Amount        Money
	RatePercent   *float64
	PaidTotal     Money
	Status        DebtStatus
	Notes         string
	TenorMonths   int
	TenorSequence int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Remaining is the derived outstanding balance, floored at zero.
func (d Debt) Remaining() Money {
	return d.Amount.Sub(d.PaidTotal)
}

// Payment is a single amount applied against one Debt.
type Payment struct {
	ID            int64
	DebtID        int64
	OwnerID       string
	Amount        Money
	Date          time.Time
	Notes         string
	AccountID     *int64
	TransactionID *int64
	CreatedAt     time.Time
}

// Mirrored reports whether the payment carries a linked cash-ledger
// transaction. A payment with exactly one of the two links set is a defect
// state the commit protocol exists to prevent.
func (p Payment) Mirrored() bool {
	return p.AccountID != nil && p.TransactionID != nil
}

// Transaction is a cash-flow record owned by the external transactions
// ledger. The engine creates it as a payment side effect and may later
// delete it; it never reads it back for its own logic.
type Transaction struct {
	ID         int64
	OwnerID    string
	Type       TransactionType
	Title      string
	Amount     Money
	Date       time.Time
	AccountID  int64
	CategoryID *int64
}

// Account is the slice of the externally owned account row the engine
// touches: its balance.
type Account struct {
	ID      int64
	OwnerID string
	Name    string
	Balance Money
}

// DebtInput is the creation request consumed by the installment series
// generator.
type DebtInput struct {
	Kind        DebtKind
	PartyName   string
	Title       string
	Date        time.Time
	DueDate     *time.Time
	Amount      Money
	RatePercent *float64
	Notes       string
	TenorMonths int
}

func (in DebtInput) Validate() error {
	if in.Kind != KindDebt && in.Kind != KindReceivable {
		return ErrInvalidKind
	}
	if strings.TrimSpace(in.PartyName) == "" {
		return ErrEmptyParty
	}
	if len(in.PartyName) > MaxTitleLen || len(in.Title) > MaxTitleLen {
		return ErrInvalidTitle
	}
	if in.Date.IsZero() {
		return ErrInvalidDate
	}
	if err := in.Amount.Validate(); err != nil {
		return err
	}
	if in.RatePercent != nil && (*in.RatePercent < 0 || *in.RatePercent > 100) {
		return ErrInvalidPercent
	}
	return nil
}

// ClampTenor forces the tenor into [1, MaxTenorMonths].
func ClampTenor(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxTenorMonths {
		return MaxTenorMonths
	}
	return n
}

// DebtUpdate is a partial patch. Nil fields are left untouched. Status, when
// set, is an explicit user override and suppresses recomputation.
type DebtUpdate struct {
	PartyName   *string
	Title       *string
	Date        *time.Time
	DueDate     *time.Time
	ClearDue    bool
	Amount      *Money
	RatePercent *float64
	Notes       *string
	TenorMonths *int
	Status      *DebtStatus
}

// PaymentInput is a standalone payment request (no cash-ledger mirroring).
type PaymentInput struct {
	Amount       Money
	Date         time.Time
	Notes        string
	MarkAsPaid   bool
	AllowOverpay bool
}

// MirroredPaymentInput additionally creates a cash-ledger transaction and
// adjusts the account balance.
type MirroredPaymentInput struct {
	PaymentInput
	AccountID  int64
	CategoryID *int64
}

// MirrorType maps the debt kind to the cash-flow direction of its mirror:
// paying off a debt is an expense, collecting a receivable is income.
func (k DebtKind) MirrorType() TransactionType {
	if k == KindReceivable {
		return TypeIncome
	}
	return TypeExpense
}

// BalanceDelta is the signed cents applied to the account balance when a
// payment of amount is mirrored for kind.
func (k DebtKind) BalanceDelta(amount Money) int64 {
	if k.MirrorType() == TypeIncome {
		return amount.Cents
	}
	return -amount.Cents
}

// MirrorTitle generates the transaction title shown in the cash ledger.
func MirrorTitle(kind DebtKind, title, party string) string {
	label := "Pembayaran hutang"
	if kind == KindReceivable {
		label = "Penerimaan piutang"
	}
	name := strings.TrimSpace(title)
	if name == "" {
		name = strings.TrimSpace(party)
	}
	return label + " • " + name
}
