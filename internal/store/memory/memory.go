// Package memory is a mutex-guarded in-memory backing store. It backs
// DATA_BACKEND=memory and the engine tests, and supports per-operation
// fault injection so the compensation paths can be exercised.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"dompet/internal/core"
)

// Operation names accepted by FailOn.
const (
	OpInsertDebts       = "insert_debts"
	OpGetDebt           = "get_debt"
	OpUpdateDebt        = "update_debt"
	OpUpdateAggregates  = "update_aggregates"
	OpUpdateStatus      = "update_status"
	OpDeleteDebt        = "delete_debt"
	OpInsertPayment     = "insert_payment"
	OpDeletePayment     = "delete_payment"
	OpListPayments      = "list_payments"
	OpInsertTransaction = "insert_transaction"
	OpDeleteTransaction = "delete_transaction"
	OpAdjustBalance     = "adjust_balance"
)

type Store struct {
	mu sync.Mutex

	debts        map[int64]core.Debt
	payments     map[int64]core.Payment
	transactions map[int64]core.Transaction
	accounts     map[int64]core.Account
	exported     map[int64]bool

	nextDebtID    int64
	nextPaymentID int64
	nextTxID      int64

	faults map[string]error
}

func New() *Store {
	return &Store{
		debts:        map[int64]core.Debt{},
		payments:     map[int64]core.Payment{},
		transactions: map[int64]core.Transaction{},
		accounts:     map[int64]core.Account{},
		exported:     map[int64]bool{},
		faults:       map[string]error{},
	}
}

// FailOn makes every subsequent call of op return err until cleared with a
// nil err.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.faults, op)
		return
	}
	s.faults[op] = err
}

func (s *Store) fault(op string) error {
	return s.faults[op]
}

// SeedAccount registers an account row for mirrored-payment tests.
func (s *Store) SeedAccount(a core.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.ID] = a
}

func (s *Store) InsertDebts(_ context.Context, debts []core.Debt) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(debts))
	for _, d := range debts {
		// An injected fault fails the batch after the first row, which
		// reproduces the partial-insert gap of the real backing service.
		if err := s.fault(OpInsertDebts); err != nil && len(ids) > 0 {
			return ids, err
		}
		s.nextDebtID++
		d.ID = s.nextDebtID
		now := time.Now().UTC()
		d.CreatedAt, d.UpdatedAt = now, now
		s.debts[d.ID] = d
		ids = append(ids, d.ID)
	}
	return ids, nil
}

func (s *Store) GetDebt(_ context.Context, ownerID string, id int64) (core.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault(OpGetDebt); err != nil {
		return core.Debt{}, err
	}
	d, ok := s.debts[id]
	if !ok || d.OwnerID != ownerID {
		return core.Debt{}, &core.NotFoundError{Entity: "debt", ID: id}
	}
	return d, nil
}

func (s *Store) ListDebts(_ context.Context, ownerID string) ([]core.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Debt
	for _, d := range s.debts {
		if d.OwnerID == ownerID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateDebtFields(_ context.Context, d core.Debt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault(OpUpdateDebt); err != nil {
		return err
	}
	cur, ok := s.debts[d.ID]
	if !ok {
		return &core.NotFoundError{Entity: "debt", ID: d.ID}
	}
	d.PaidTotal = cur.PaidTotal
	d.Status = cur.Status
	d.CreatedAt = cur.CreatedAt
	d.UpdatedAt = time.Now().UTC()
	s.debts[d.ID] = d
	return nil
}

func (s *Store) UpdateDebtAggregates(_ context.Context, id int64, paid core.Money, status core.DebtStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault(OpUpdateAggregates); err != nil {
		return err
	}
	d, ok := s.debts[id]
	if !ok {
		return &core.NotFoundError{Entity: "debt", ID: id}
	}
	d.PaidTotal = paid
	d.Status = status
	d.UpdatedAt = time.Now().UTC()
	s.debts[id] = d
	return nil
}

func (s *Store) UpdateDebtStatus(_ context.Context, id int64, status core.DebtStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault(OpUpdateStatus); err != nil {
		return err
	}
	d, ok := s.debts[id]
	if !ok {
		return &core.NotFoundError{Entity: "debt", ID: id}
	}
	d.Status = status
	d.UpdatedAt = time.Now().UTC()
	s.debts[id] = d
	return nil
}

func (s *Store) DeleteDebt(_ context.Context, ownerID string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault(OpDeleteDebt); err != nil {
		return err
	}
	d, ok := s.debts[id]
	if !ok || d.OwnerID != ownerID {
		return &core.NotFoundError{Entity: "debt", ID: id}
	}
	delete(s.debts, id)
	for pid, p := range s.payments {
		if p.DebtID == id {
			delete(s.payments, pid)
		}
	}
	return nil
}

func (s *Store) InsertPayment(_ context.Context, p core.Payment) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault(OpInsertPayment); err != nil {
		return 0, err
	}
	s.nextPaymentID++
	p.ID = s.nextPaymentID
	p.CreatedAt = time.Now().UTC()
	s.payments[p.ID] = p
	return p.ID, nil
}

func (s *Store) GetPayment(_ context.Context, ownerID string, id int64) (core.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[id]
	if !ok || p.OwnerID != ownerID {
		return core.Payment{}, &core.NotFoundError{Entity: "payment", ID: id}
	}
	return p, nil
}

func (s *Store) DeletePayment(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault(OpDeletePayment); err != nil {
		return err
	}
	if _, ok := s.payments[id]; !ok {
		return &core.NotFoundError{Entity: "payment", ID: id}
	}
	delete(s.payments, id)
	return nil
}

func (s *Store) ListPaymentsByDebt(_ context.Context, debtID int64) ([]core.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault(OpListPayments); err != nil {
		return nil, err
	}
	var out []core.Payment
	for _, p := range s.payments {
		if p.DebtID == debtID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ListPaymentsBetween(_ context.Context, ownerID string, from, to time.Time) ([]core.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Payment
	for _, p := range s.payments {
		if p.OwnerID == ownerID && core.InInterval(p.Date, from, to) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ListUnexportedPayments(_ context.Context, limit int) ([]core.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Payment
	for _, p := range s.payments {
		if !s.exported[p.ID] {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) MarkPaymentExported(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exported[id] = true
	return nil
}

func (s *Store) InsertTransaction(_ context.Context, t core.Transaction) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault(OpInsertTransaction); err != nil {
		return 0, err
	}
	s.nextTxID++
	t.ID = s.nextTxID
	s.transactions[t.ID] = t
	return t.ID, nil
}

func (s *Store) DeleteTransaction(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault(OpDeleteTransaction); err != nil {
		return err
	}
	if _, ok := s.transactions[id]; !ok {
		return &core.NotFoundError{Entity: "transaction", ID: id}
	}
	delete(s.transactions, id)
	return nil
}

func (s *Store) GetAccount(_ context.Context, ownerID string, id int64) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok || a.OwnerID != ownerID {
		return core.Account{}, &core.NotFoundError{Entity: "account", ID: id}
	}
	return a, nil
}

func (s *Store) AdjustAccountBalance(_ context.Context, accountID int64, deltaCents int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault(OpAdjustBalance); err != nil {
		return err
	}
	a, ok := s.accounts[accountID]
	if !ok {
		return &core.NotFoundError{Entity: "account", ID: accountID}
	}
	a.Balance.Cents += deltaCents
	s.accounts[accountID] = a
	return nil
}

// TransactionCount reports how many mirrored transactions exist; used by
// compensation tests to assert absence.
func (s *Store) TransactionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transactions)
}

// AccountBalance reads a balance directly, bypassing owner checks.
func (s *Store) AccountBalance(id int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts[id].Balance.Cents
}

// PaymentCount reports how many payment rows exist.
func (s *Store) PaymentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payments)
}
