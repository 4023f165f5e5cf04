package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"dompet/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

// errBadPayload marks a request body that could not be decoded at all.
var errBadPayload = errors.New("malformed request body")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError translates an engine error into the short user message shown
// by the UI, keeping full detail in the log only.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := http.StatusInternalServerError
	msg := failureMessage(op)

	switch {
	case errors.Is(err, errBadPayload):
		status = http.StatusBadRequest
		msg = "permintaan tidak valid"
	case core.IsValidation(err):
		status = http.StatusBadRequest
		msg = userMessage(err)
	case core.IsNotFound(err):
		status = http.StatusNotFound
		msg = "data tidak ditemukan"
	}

	slog.ErrorContext(r.Context(), "Request failed",
		"op", op,
		"status", status,
		"error", err)

	writeJSON(w, status, errorResponse{Error: msg})
}

// failureMessage is the per-operation message category for backing-store
// failures.
func failureMessage(op string) string {
	switch op {
	case "create debt":
		return "gagal menambahkan hutang"
	case "update debt":
		return "gagal mengubah hutang"
	case "delete debt":
		return "gagal menghapus hutang"
	case "record payment":
		return "gagal menambahkan pembayaran"
	case "remove payment":
		return "gagal menghapus pembayaran"
	default:
		return "terjadi kesalahan, coba lagi"
	}
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		return "nominal tidak valid"
	case errors.Is(err, core.ErrInvalidPercent):
		return "persentase bunga tidak valid"
	case errors.Is(err, core.ErrInvalidDate):
		return "tanggal tidak valid"
	case errors.Is(err, core.ErrInvalidKind):
		return "jenis hutang tidak valid"
	case errors.Is(err, core.ErrEmptyParty):
		return "nama pihak wajib diisi"
	case errors.Is(err, core.ErrInvalidTitle):
		return "judul terlalu panjang"
	case errors.Is(err, core.ErrOverpay):
		return "pembayaran melebihi sisa hutang"
	case errors.Is(err, core.ErrAccountRequired):
		return "akun wajib dipilih"
	case errors.Is(err, core.ErrCategoryRequired):
		return "kategori wajib dipilih"
	default:
		return "permintaan tidak valid"
	}
}
