package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dompet/internal/core"
	"dompet/internal/services"
	"dompet/internal/store/memory"
)

func newTestServer() (*Server, *memory.Store) {
	st := memory.New()
	return NewServer(":0", services.NewLedgerService(st, nil)), st
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Reader
	if body != "" {
		rdr = bytes.NewReader([]byte(body))
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
}

func createTestDebt(t *testing.T, srv *Server, amount string) debtRecord {
	t.Helper()
	body := fmt.Sprintf(`{"type":"debt","party_name":"Budi","title":"Cicilan motor","date":"2024-01-15","amount":%q}`, amount)
	rec := doJSON(t, srv, http.MethodPost, "/api/debts", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create debt: status %d, body %s", rec.Code, rec.Body.String())
	}
	var d debtRecord
	decodeBody(t, rec, &d)
	return d
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer()
	rec := doJSON(t, srv, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCreateDebt(t *testing.T) {
	srv, _ := newTestServer()

	d := createTestDebt(t, srv, "1.250.000")
	if d.ID == 0 {
		t.Fatal("expected an id")
	}
	if d.Amount != 1250000 {
		t.Fatalf("expected amount 1250000, got %v", d.Amount)
	}
	if d.Status != "ongoing" {
		t.Fatalf("expected ongoing, got %s", d.Status)
	}
	if d.Remaining != 1250000 {
		t.Fatalf("expected remaining 1250000, got %v", d.Remaining)
	}
}

func TestCreateDebtBadPayload(t *testing.T) {
	srv, _ := newTestServer()

	rec := doJSON(t, srv, http.MethodPost, "/api/debts", "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp errorResponse
	decodeBody(t, rec, &resp)
	if resp.Error != "permintaan tidak valid" {
		t.Fatalf("unexpected message %q", resp.Error)
	}
}

func TestCreateDebtValidationMessage(t *testing.T) {
	srv, _ := newTestServer()

	body := `{"type":"debt","party_name":"  ","date":"2024-01-15","amount":"100"}`
	rec := doJSON(t, srv, http.MethodPost, "/api/debts", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp errorResponse
	decodeBody(t, rec, &resp)
	if resp.Error != "nama pihak wajib diisi" {
		t.Fatalf("unexpected message %q", resp.Error)
	}
}

func TestCreateDebtSeries(t *testing.T) {
	srv, _ := newTestServer()

	body := `{"type":"debt","party_name":"Budi","title":"Cicilan","date":"2024-01-15","due_date":"2024-02-01","amount":"500.000","tenor_months":3}`
	rec := doJSON(t, srv, http.MethodPost, "/api/debts", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/debts", "")
	var debts []debtRecord
	decodeBody(t, rec, &debts)
	if len(debts) != 3 {
		t.Fatalf("expected 3 installments, got %d", len(debts))
	}
	if debts[1].Date != "2024-02-15" || debts[1].TenorSequence != 2 {
		t.Fatalf("unexpected second installment: %+v", debts[1])
	}
	if debts[2].DueDate == nil || *debts[2].DueDate != "2024-04-01" {
		t.Fatalf("unexpected third due date: %+v", debts[2].DueDate)
	}
}

func TestGetDebtNotFound(t *testing.T) {
	srv, _ := newTestServer()

	rec := doJSON(t, srv, http.MethodGet, "/api/debts/42", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var resp errorResponse
	decodeBody(t, rec, &resp)
	if resp.Error != "data tidak ditemukan" {
		t.Fatalf("unexpected message %q", resp.Error)
	}
}

func TestUpdateDebt(t *testing.T) {
	srv, _ := newTestServer()
	d := createTestDebt(t, srv, "100.000")

	rec := doJSON(t, srv, http.MethodPatch, fmt.Sprintf("/api/debts/%d", d.ID), `{"notes":"dibayar via transfer","status":"paid"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got debtRecord
	decodeBody(t, rec, &got)
	if got.Notes != "dibayar via transfer" {
		t.Fatalf("notes not updated: %q", got.Notes)
	}
	if got.Status != "paid" {
		t.Fatalf("status override not applied: %s", got.Status)
	}

	rec = doJSON(t, srv, http.MethodPatch, fmt.Sprintf("/api/debts/%d", d.ID), `{"status":"bogus"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad status expected 400, got %d", rec.Code)
	}
}

func TestDeleteDebt(t *testing.T) {
	srv, _ := newTestServer()
	d := createTestDebt(t, srv, "100.000")

	rec := doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/debts/%d", d.ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/debts/%d", d.ID), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestRecordPayment(t *testing.T) {
	srv, _ := newTestServer()
	d := createTestDebt(t, srv, "100.000")

	rec := doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/debts/%d/payments", d.ID), `{"amount":"40.000","date":"2024-02-05"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var res paymentResult
	decodeBody(t, rec, &res)
	if res.Payment.ID == 0 {
		t.Fatal("expected payment id")
	}
	if res.Debt.PaidTotal != 40000 {
		t.Fatalf("expected paid total 40000, got %v", res.Debt.PaidTotal)
	}
	if res.Debt.Remaining != 60000 {
		t.Fatalf("expected remaining 60000, got %v", res.Debt.Remaining)
	}
	if res.Payment.AccountID != nil {
		t.Fatal("standalone payment must not carry an account link")
	}
}

func TestRecordPaymentOverpay(t *testing.T) {
	srv, _ := newTestServer()
	d := createTestDebt(t, srv, "100.000")

	rec := doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/debts/%d/payments", d.ID), `{"amount":"100.000,01","date":"2024-02-05"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp errorResponse
	decodeBody(t, rec, &resp)
	if resp.Error != "pembayaran melebihi sisa hutang" {
		t.Fatalf("unexpected message %q", resp.Error)
	}

	rec = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/debts/%d/payments", d.ID), `{"amount":"100.000,01","date":"2024-02-05","allow_overpay":true}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("allow_overpay expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var res paymentResult
	decodeBody(t, rec, &res)
	if res.Debt.Remaining != 0 {
		t.Fatalf("expected remaining 0, got %v", res.Debt.Remaining)
	}
	if res.Debt.Status != "paid" {
		t.Fatalf("expected paid, got %s", res.Debt.Status)
	}
}

func TestRecordMirroredPayment(t *testing.T) {
	srv, st := newTestServer()
	st.SeedAccount(core.Account{ID: 7, OwnerID: "local", Name: "BCA", Balance: core.Money{Cents: 50000000}})
	d := createTestDebt(t, srv, "100.000")

	rec := doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/debts/%d/payments", d.ID), `{"amount":"25.000","date":"2024-02-05","account_id":7,"category_id":3}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var res paymentResult
	decodeBody(t, rec, &res)
	if res.Payment.AccountID == nil || res.Payment.TransactionID == nil {
		t.Fatalf("mirrored payment must carry both links: %+v", res.Payment)
	}
	if got := st.AccountBalance(7); got != 47500000 {
		t.Fatalf("expected balance 47500000, got %d", got)
	}

	// Expense mirror without a category is rejected.
	rec = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/debts/%d/payments", d.ID), `{"amount":"25.000","date":"2024-02-05","account_id":7}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp errorResponse
	decodeBody(t, rec, &resp)
	if resp.Error != "kategori wajib dipilih" {
		t.Fatalf("unexpected message %q", resp.Error)
	}
}

func TestRemovePayment(t *testing.T) {
	srv, st := newTestServer()
	st.SeedAccount(core.Account{ID: 7, OwnerID: "local", Balance: core.Money{Cents: 50000000}})
	d := createTestDebt(t, srv, "100.000")

	rec := doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/debts/%d/payments", d.ID), `{"amount":"25.000","date":"2024-02-05","account_id":7,"category_id":3}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("record: %d", rec.Code)
	}
	var res paymentResult
	decodeBody(t, rec, &res)

	rec = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/payments/%d?rollback=true", res.Payment.ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got debtRecord
	decodeBody(t, rec, &got)
	if got.PaidTotal != 0 {
		t.Fatalf("expected paid total 0, got %v", got.PaidTotal)
	}
	if bal := st.AccountBalance(7); bal != 50000000 {
		t.Fatalf("rollback should restore balance, got %d", bal)
	}
	if st.TransactionCount() != 0 {
		t.Fatalf("rollback should delete transaction, got %d", st.TransactionCount())
	}
}

func TestListPayments(t *testing.T) {
	srv, _ := newTestServer()
	d := createTestDebt(t, srv, "100.000")

	for _, amt := range []string{"10.000", "20.000"} {
		rec := doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/debts/%d/payments", d.ID), fmt.Sprintf(`{"amount":%q,"date":"2024-02-05"}`, amt))
		if rec.Code != http.StatusCreated {
			t.Fatalf("record: %d", rec.Code)
		}
	}

	rec := doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/debts/%d/payments", d.ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payments []paymentRecord
	decodeBody(t, rec, &payments)
	if len(payments) != 2 {
		t.Fatalf("expected 2 payments, got %d", len(payments))
	}
}

func TestSummaryCacheInvalidation(t *testing.T) {
	srv, _ := newTestServer()
	d := createTestDebt(t, srv, "100.000")

	rec := doJSON(t, srv, http.MethodGet, "/api/summary", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("summary: %d", rec.Code)
	}
	var s summaryResponse
	decodeBody(t, rec, &s)
	if s.TotalDebt != 100000 {
		t.Fatalf("expected TotalDebt 100000, got %v", s.TotalDebt)
	}

	// A payment must invalidate the cached summary.
	rec = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/debts/%d/payments", d.ID), `{"amount":"40.000","date":"2024-02-05"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("record: %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/summary", "")
	decodeBody(t, rec, &s)
	if s.TotalDebt != 60000 {
		t.Fatalf("expected TotalDebt 60000 after payment, got %v", s.TotalDebt)
	}
}

func TestOwnerHeaderScoping(t *testing.T) {
	srv, _ := newTestServer()
	createTestDebt(t, srv, "100.000")

	req := httptest.NewRequest(http.MethodGet, "/api/debts", strings.NewReader(""))
	req.Header.Set("X-User-ID", "someone-else")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	var debts []debtRecord
	decodeBody(t, rec, &debts)
	if len(debts) != 0 {
		t.Fatalf("foreign owner must see nothing, got %d", len(debts))
	}
}
