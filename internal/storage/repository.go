// Package storage is the sqlite implementation of the store ports.
//
// Every method issues a single statement against one table. The engine's
// commit protocol assumes exactly that: no cross-table transaction at the
// store boundary. This implementation deliberately does not wrap anything in
// BEGIN/COMMIT across tables, so the saga stays the only atomicity mechanism
// actually exercised.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"dompet/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const debtColumns = `id, owner_id, kind, party_name, title, date, due_date,
	amount_cents, rate_percent, paid_total_cents, status, notes,
	tenor_months, tenor_sequence, created_at, updated_at`

func (r *SQLiteRepository) InsertDebts(ctx context.Context, debts []core.Debt) ([]int64, error) {
	// Row-by-row insert: a failure partway through leaves earlier rows in
	// place, which is the documented behavior of series creation.
	ids := make([]int64, 0, len(debts))
	for _, d := range debts {
		res, err := r.db.ExecContext(ctx, `
			INSERT INTO debts (owner_id, kind, party_name, title, date, due_date,
				amount_cents, rate_percent, paid_total_cents, status, notes,
				tenor_months, tenor_sequence)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?, ?)`,
			d.OwnerID, string(d.Kind), d.PartyName, d.Title,
			core.FormatDate(d.Date), nullableDate(d.DueDate),
			d.Amount.Cents, d.RatePercent, string(core.StatusOngoing),
			d.Notes, d.TenorMonths, d.TenorSequence)
		if err != nil {
			return ids, &core.StoreError{Op: "insert debt", Err: err}
		}
		id, err := res.LastInsertId()
		if err != nil {
			return ids, &core.StoreError{Op: "insert debt", Err: err}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *SQLiteRepository) GetDebt(ctx context.Context, ownerID string, id int64) (core.Debt, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+debtColumns+` FROM debts WHERE id = ? AND owner_id = ?`, id, ownerID)
	d, err := scanDebt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Debt{}, &core.NotFoundError{Entity: "debt", ID: id}
	}
	if err != nil {
		return core.Debt{}, &core.StoreError{Op: "get debt", Err: err}
	}
	return d, nil
}

func (r *SQLiteRepository) ListDebts(ctx context.Context, ownerID string) ([]core.Debt, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+debtColumns+` FROM debts WHERE owner_id = ? ORDER BY date, tenor_sequence, id`, ownerID)
	if err != nil {
		return nil, &core.StoreError{Op: "list debts", Err: err}
	}
	defer rows.Close()

	var out []core.Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, &core.StoreError{Op: "scan debt", Err: err}
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.StoreError{Op: "list debts", Err: err}
	}
	return out, nil
}

func (r *SQLiteRepository) UpdateDebtFields(ctx context.Context, d core.Debt) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE debts SET party_name = ?, title = ?, date = ?, due_date = ?,
			amount_cents = ?, rate_percent = ?, notes = ?, tenor_months = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		d.PartyName, d.Title, core.FormatDate(d.Date), nullableDate(d.DueDate),
		d.Amount.Cents, d.RatePercent, d.Notes, d.TenorMonths, d.ID)
	if err != nil {
		return &core.StoreError{Op: "update debt", Err: err}
	}
	return requireRow(res, "debt", d.ID)
}

func (r *SQLiteRepository) UpdateDebtAggregates(ctx context.Context, id int64, paid core.Money, status core.DebtStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE debts SET paid_total_cents = ?, status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		paid.Cents, string(status), id)
	if err != nil {
		return &core.StoreError{Op: "update debt aggregates", Err: err}
	}
	return requireRow(res, "debt", id)
}

func (r *SQLiteRepository) UpdateDebtStatus(ctx context.Context, id int64, status core.DebtStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE debts SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		string(status), id)
	if err != nil {
		return &core.StoreError{Op: "update debt status", Err: err}
	}
	return requireRow(res, "debt", id)
}

func (r *SQLiteRepository) DeleteDebt(ctx context.Context, ownerID string, id int64) error {
	// Payments cascade via the foreign key; sqlite still needs the explicit
	// delete because foreign_keys defaults to off on modernc connections.
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM debt_payments WHERE debt_id = ?`, id); err != nil {
		return &core.StoreError{Op: "delete debt payments", Err: err}
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM debts WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return &core.StoreError{Op: "delete debt", Err: err}
	}
	return requireRow(res, "debt", id)
}

func (r *SQLiteRepository) InsertPayment(ctx context.Context, p core.Payment) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO debt_payments (debt_id, owner_id, amount_cents, date, notes, account_id, transaction_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.DebtID, p.OwnerID, p.Amount.Cents, core.FormatDate(p.Date), p.Notes,
		p.AccountID, p.TransactionID)
	if err != nil {
		return 0, &core.StoreError{Op: "insert payment", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, &core.StoreError{Op: "insert payment", Err: err}
	}
	return id, nil
}

func (r *SQLiteRepository) GetPayment(ctx context.Context, ownerID string, id int64) (core.Payment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, debt_id, owner_id, amount_cents, date, notes, account_id, transaction_id, created_at
		FROM debt_payments WHERE id = ? AND owner_id = ?`, id, ownerID)
	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Payment{}, &core.NotFoundError{Entity: "payment", ID: id}
	}
	if err != nil {
		return core.Payment{}, &core.StoreError{Op: "get payment", Err: err}
	}
	return p, nil
}

func (r *SQLiteRepository) DeletePayment(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM debt_payments WHERE id = ?`, id)
	if err != nil {
		return &core.StoreError{Op: "delete payment", Err: err}
	}
	return requireRow(res, "payment", id)
}

func (r *SQLiteRepository) ListPaymentsByDebt(ctx context.Context, debtID int64) ([]core.Payment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, debt_id, owner_id, amount_cents, date, notes, account_id, transaction_id, created_at
		FROM debt_payments WHERE debt_id = ? ORDER BY date, id`, debtID)
	if err != nil {
		return nil, &core.StoreError{Op: "list payments by debt", Err: err}
	}
	defer rows.Close()
	return collectPayments(rows)
}

func (r *SQLiteRepository) ListPaymentsBetween(ctx context.Context, ownerID string, from, to time.Time) ([]core.Payment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, debt_id, owner_id, amount_cents, date, notes, account_id, transaction_id, created_at
		FROM debt_payments WHERE owner_id = ? AND date >= ? AND date < ?
		ORDER BY date, id`,
		ownerID, core.FormatDate(from), core.FormatDate(to))
	if err != nil {
		return nil, &core.StoreError{Op: "list payments between", Err: err}
	}
	defer rows.Close()
	return collectPayments(rows)
}

func (r *SQLiteRepository) ListUnexportedPayments(ctx context.Context, limit int) ([]core.Payment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, debt_id, owner_id, amount_cents, date, notes, account_id, transaction_id, created_at
		FROM debt_payments WHERE export_status = 'pending' ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, &core.StoreError{Op: "list unexported payments", Err: err}
	}
	defer rows.Close()
	return collectPayments(rows)
}

func (r *SQLiteRepository) MarkPaymentExported(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE debt_payments SET export_status = 'exported' WHERE id = ?`, id)
	if err != nil {
		return &core.StoreError{Op: "mark payment exported", Err: err}
	}
	slog.InfoContext(ctx, "Payment marked as exported", "id", id)
	return nil
}

func (r *SQLiteRepository) InsertTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (owner_id, type, title, amount_cents, date, account_id, category_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.OwnerID, string(t.Type), t.Title, t.Amount.Cents,
		core.FormatDate(t.Date), t.AccountID, t.CategoryID)
	if err != nil {
		return 0, &core.StoreError{Op: "insert transaction", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, &core.StoreError{Op: "insert transaction", Err: err}
	}
	return id, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return &core.StoreError{Op: "delete transaction", Err: err}
	}
	return requireRow(res, "transaction", id)
}

func (r *SQLiteRepository) GetAccount(ctx context.Context, ownerID string, id int64) (core.Account, error) {
	var a core.Account
	err := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, balance_cents FROM accounts
		WHERE id = ? AND owner_id = ?`, id, ownerID).
		Scan(&a.ID, &a.OwnerID, &a.Name, &a.Balance.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, &core.NotFoundError{Entity: "account", ID: id}
	}
	if err != nil {
		return core.Account{}, &core.StoreError{Op: "get account", Err: err}
	}
	return a, nil
}

// AdjustAccountBalance does a read-modify-write with no version check.
// Concurrent adjustments on one account can lose updates; accepted race.
func (r *SQLiteRepository) AdjustAccountBalance(ctx context.Context, accountID int64, deltaCents int64) error {
	var balance int64
	err := r.db.QueryRowContext(ctx,
		`SELECT balance_cents FROM accounts WHERE id = ?`, accountID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return &core.NotFoundError{Entity: "account", ID: accountID}
	}
	if err != nil {
		return &core.StoreError{Op: "read account balance", Err: err}
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE accounts SET balance_cents = ? WHERE id = ?`, balance+deltaCents, accountID)
	if err != nil {
		return &core.StoreError{Op: "write account balance", Err: err}
	}
	return nil
}

// InsertAccount seeds an account row. Accounts are owned by the wider app;
// the engine only needs this for bootstrapping and tests.
func (r *SQLiteRepository) InsertAccount(ctx context.Context, a core.Account) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (owner_id, name, balance_cents) VALUES (?, ?, ?)`,
		a.OwnerID, a.Name, a.Balance.Cents)
	if err != nil {
		return 0, &core.StoreError{Op: "insert account", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, &core.StoreError{Op: "insert account", Err: err}
	}
	return id, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDebt(s scanner) (core.Debt, error) {
	var (
		d                  core.Debt
		kind               string
		status             string
		date               string
		due                sql.NullString
		rate               sql.NullFloat64
		createdAt, updated string
	)
	err := s.Scan(&d.ID, &d.OwnerID, &kind, &d.PartyName, &d.Title, &date, &due,
		&d.Amount.Cents, &rate, &d.PaidTotal.Cents, &status, &d.Notes,
		&d.TenorMonths, &d.TenorSequence, &createdAt, &updated)
	if err != nil {
		return core.Debt{}, err
	}
	d.CreatedAt = parseTimestamp(createdAt)
	d.UpdatedAt = parseTimestamp(updated)
	d.Kind = core.DebtKind(kind)
	d.Status = core.DebtStatus(status)
	if d.Date, err = core.ParseDate(date); err != nil {
		return core.Debt{}, fmt.Errorf("debt %d date: %w", d.ID, err)
	}
	if due.Valid {
		t, err := core.ParseDate(due.String)
		if err != nil {
			return core.Debt{}, fmt.Errorf("debt %d due date: %w", d.ID, err)
		}
		d.DueDate = &t
	}
	if rate.Valid {
		d.RatePercent = &rate.Float64
	}
	return d, nil
}

func scanPayment(s scanner) (core.Payment, error) {
	var (
		p         core.Payment
		date      string
		acc       sql.NullInt64
		tx        sql.NullInt64
		createdAt string
	)
	err := s.Scan(&p.ID, &p.DebtID, &p.OwnerID, &p.Amount.Cents, &date, &p.Notes,
		&acc, &tx, &createdAt)
	if err != nil {
		return core.Payment{}, err
	}
	p.CreatedAt = parseTimestamp(createdAt)
	if p.Date, err = core.ParseDate(date); err != nil {
		return core.Payment{}, fmt.Errorf("payment %d date: %w", p.ID, err)
	}
	if acc.Valid {
		p.AccountID = &acc.Int64
	}
	if tx.Valid {
		p.TransactionID = &tx.Int64
	}
	return p, nil
}

func collectPayments(rows *sql.Rows) ([]core.Payment, error) {
	var out []core.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, &core.StoreError{Op: "scan payment", Err: err}
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.StoreError{Op: "iterate payments", Err: err}
	}
	return out, nil
}

// parseTimestamp reads sqlite's CURRENT_TIMESTAMP text form, falling back
// to RFC 3339. Timestamps are informational; an unparseable one maps to the
// zero time rather than failing the read.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func nullableDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return core.FormatDate(*t)
}

func requireRow(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return &core.StoreError{Op: "rows affected", Err: err}
	}
	if n == 0 {
		return &core.NotFoundError{Entity: entity, ID: id}
	}
	return nil
}
