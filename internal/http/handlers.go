package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"dompet/internal/core"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if cached, ok := s.summaryCache.Get(owner); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	summary, err := s.ledger.Summary(r.Context(), owner)
	if err != nil {
		writeError(w, r, "summary", err)
		return
	}

	resp := toSummaryResponse(summary)
	s.summaryCache.Set(owner, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListDebts(w http.ResponseWriter, r *http.Request) {
	debts, err := s.ledger.ListDebts(r.Context(), ownerID(r))
	if err != nil {
		writeError(w, r, "list debts", err)
		return
	}

	records := make([]debtRecord, len(debts))
	for i, d := range debts {
		records[i] = toDebtRecord(d)
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleCreateDebt(w http.ResponseWriter, r *http.Request) {
	var req createDebtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "create debt", errBadPayload)
		return
	}

	in, err := req.toInput()
	if err != nil {
		writeError(w, r, "create debt", err)
		return
	}

	owner := ownerID(r)
	debt, err := s.ledger.CreateDebt(r.Context(), owner, in)
	if err != nil {
		writeError(w, r, "create debt", err)
		return
	}

	s.invalidateSummary(owner)
	writeJSON(w, http.StatusCreated, toDebtRecord(debt))
}

func (req createDebtRequest) toInput() (core.DebtInput, error) {
	amount, err := req.Amount.Cents()
	if err != nil {
		return core.DebtInput{}, err
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.DebtInput{}, err
	}

	in := core.DebtInput{
		Kind:        core.DebtKind(req.Kind),
		PartyName:   strings.TrimSpace(req.PartyName),
		Title:       strings.TrimSpace(req.Title),
		Date:        date,
		Amount:      core.Money{Cents: amount},
		Notes:       req.Notes,
		TenorMonths: req.TenorMonths,
	}
	if req.DueDate != "" {
		due, err := core.ParseDate(req.DueDate)
		if err != nil {
			return core.DebtInput{}, err
		}
		in.DueDate = &due
	}
	if req.RatePercent != nil {
		rate := core.ClampPercent(*req.RatePercent)
		in.RatePercent = &rate
	}
	return in, nil
}

func (s *Server) handleGetDebt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, "get debt", &core.NotFoundError{Entity: "debt"})
		return
	}

	debt, err := s.ledger.GetDebt(r.Context(), ownerID(r), id)
	if err != nil {
		writeError(w, r, "get debt", err)
		return
	}
	writeJSON(w, http.StatusOK, toDebtRecord(debt))
}

func (s *Server) handleUpdateDebt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, "update debt", &core.NotFoundError{Entity: "debt"})
		return
	}

	var req updateDebtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "update debt", errBadPayload)
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		writeError(w, r, "update debt", err)
		return
	}

	owner := ownerID(r)
	debt, err := s.ledger.UpdateDebt(r.Context(), owner, id, patch)
	if err != nil {
		writeError(w, r, "update debt", err)
		return
	}

	s.invalidateSummary(owner)
	writeJSON(w, http.StatusOK, toDebtRecord(debt))
}

func (req updateDebtRequest) toPatch() (core.DebtUpdate, error) {
	var patch core.DebtUpdate
	patch.PartyName = req.PartyName
	patch.Title = req.Title
	patch.Notes = req.Notes
	patch.RatePercent = req.RatePercent
	patch.TenorMonths = req.TenorMonths

	if req.Date != nil {
		date, err := core.ParseDate(*req.Date)
		if err != nil {
			return core.DebtUpdate{}, err
		}
		patch.Date = &date
	}
	if req.DueDate != nil {
		if strings.TrimSpace(*req.DueDate) == "" {
			patch.ClearDue = true
		} else {
			due, err := core.ParseDate(*req.DueDate)
			if err != nil {
				return core.DebtUpdate{}, err
			}
			patch.DueDate = &due
		}
	}
	if req.Amount != nil {
		cents, err := req.Amount.Cents()
		if err != nil {
			return core.DebtUpdate{}, err
		}
		patch.Amount = &core.Money{Cents: cents}
	}
	if req.Status != nil {
		status := core.DebtStatus(*req.Status)
		switch status {
		case core.StatusOngoing, core.StatusPaid, core.StatusOverdue:
			patch.Status = &status
		default:
			return core.DebtUpdate{}, core.ErrInvalidKind
		}
	}
	return patch, nil
}

func (s *Server) handleDeleteDebt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, "delete debt", &core.NotFoundError{Entity: "debt"})
		return
	}

	owner := ownerID(r)
	if err := s.ledger.DeleteDebt(r.Context(), owner, id); err != nil {
		writeError(w, r, "delete debt", err)
		return
	}

	s.invalidateSummary(owner)
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, "list payments", &core.NotFoundError{Entity: "debt"})
		return
	}

	payments, err := s.ledger.ListPayments(r.Context(), ownerID(r), id)
	if err != nil {
		writeError(w, r, "list payments", err)
		return
	}

	records := make([]paymentRecord, len(payments))
	for i, p := range payments {
		records[i] = toPaymentRecord(p)
	}
	writeJSON(w, http.StatusOK, records)
}

// handleRecordPayment serves both commit entry points: a payload carrying an
// account_id takes the mirrored path, anything else is standalone.
func (s *Server) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, "record payment", &core.NotFoundError{Entity: "debt"})
		return
	}

	var req recordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "record payment", errBadPayload)
		return
	}

	cents, err := req.Amount.Cents()
	if err != nil {
		writeError(w, r, "record payment", err)
		return
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeError(w, r, "record payment", err)
		return
	}

	in := core.PaymentInput{
		Amount:       core.Money{Cents: cents},
		Date:         date,
		Notes:        req.Notes,
		MarkAsPaid:   req.MarkAsPaid,
		AllowOverpay: req.AllowOverpay,
	}

	owner := ownerID(r)
	var (
		debt    core.Debt
		payment core.Payment
	)
	if req.AccountID != 0 {
		debt, payment, err = s.ledger.RecordMirroredPayment(r.Context(), owner, id, core.MirroredPaymentInput{
			PaymentInput: in,
			AccountID:    req.AccountID,
			CategoryID:   req.CategoryID,
		})
	} else {
		debt, payment, err = s.ledger.RecordPayment(r.Context(), owner, id, in)
	}
	if err != nil {
		writeError(w, r, "record payment", err)
		return
	}

	s.invalidateSummary(owner)
	writeJSON(w, http.StatusCreated, paymentResult{
		Debt:    toDebtRecord(debt),
		Payment: toPaymentRecord(payment),
	})
}

func (s *Server) handleRemovePayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, "remove payment", &core.NotFoundError{Entity: "payment"})
		return
	}

	withRollback := r.URL.Query().Get("rollback") == "true"
	owner := ownerID(r)

	debt, err := s.ledger.RemovePayment(r.Context(), owner, id, withRollback)
	if err != nil {
		writeError(w, r, "remove payment", err)
		return
	}

	s.invalidateSummary(owner)
	writeJSON(w, http.StatusOK, toDebtRecord(debt))
}
